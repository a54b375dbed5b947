package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the catalogue schema.
//
// Foreign keys cascade from POLICY to its ASSET and POLICY_HAS_RULE rows and
// from RULE to its RULE_HAS_ACTION/ASSIGNOR/ASSIGNEE rows. RULE itself is never
// cascade-deleted by a policy deletion: rules outlive the policies that stop
// using them and are removed only by an explicit DeleteRule.
const Schema = `
-- Policies (licences)
CREATE TABLE IF NOT EXISTS POLICY (
    URI             TEXT    NOT NULL    PRIMARY KEY,
    TYPE            TEXT,
    LABEL           TEXT,
    JURISDICTION    TEXT,
    LEGAL_CODE      TEXT,
    HAS_VERSION     TEXT,
    LANGUAGE        TEXT,
    SEE_ALSO        TEXT,
    SAME_AS         TEXT,
    COMMENT         TEXT,
    LOGO            TEXT,
    CREATED         INTEGER NOT NULL,
    STATUS          TEXT,
    CREATOR         TEXT
);

-- Assets covered by a policy. An asset belongs to exactly one policy and
-- is removed with it.
CREATE TABLE IF NOT EXISTS ASSET (
    URI         TEXT    NOT NULL    PRIMARY KEY,
    POLICY_URI  TEXT    NOT NULL,
    FOREIGN KEY (POLICY_URI) REFERENCES POLICY (URI) ON DELETE CASCADE
);

-- Permitted rule types (fixed vocabulary, seeded from the registry)
CREATE TABLE IF NOT EXISTS RULE_TYPE (
    URI     TEXT    NOT NULL    PRIMARY KEY,
    LABEL   TEXT    NOT NULL
);

-- Rules (permissions, duties, prohibitions)
CREATE TABLE IF NOT EXISTS RULE (
    URI     TEXT    NOT NULL    PRIMARY KEY,
    TYPE    TEXT    NOT NULL,
    LABEL   TEXT,
    FOREIGN KEY (TYPE) REFERENCES RULE_TYPE (URI)
);

CREATE TABLE IF NOT EXISTS POLICY_HAS_RULE (
    POLICY_URI  TEXT    NOT NULL,
    RULE_URI    TEXT    NOT NULL,
    FOREIGN KEY (POLICY_URI) REFERENCES POLICY (URI) ON DELETE CASCADE,
    FOREIGN KEY (RULE_URI) REFERENCES RULE (URI),
    PRIMARY KEY (POLICY_URI, RULE_URI)
);

-- Permitted actions (fixed vocabulary, seeded from the registry)
CREATE TABLE IF NOT EXISTS ACTION (
    URI         TEXT    NOT NULL    PRIMARY KEY,
    LABEL       TEXT    NOT NULL    UNIQUE,
    DEFINITION  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS RULE_HAS_ACTION (
    RULE_URI    TEXT    NOT NULL,
    ACTION_URI  TEXT    NOT NULL,
    FOREIGN KEY (RULE_URI) REFERENCES RULE (URI) ON DELETE CASCADE,
    FOREIGN KEY (ACTION_URI) REFERENCES ACTION (URI),
    PRIMARY KEY (RULE_URI, ACTION_URI)
);

-- Parties (assignors and assignees)
CREATE TABLE IF NOT EXISTS PARTY (
    URI     TEXT    NOT NULL    PRIMARY KEY,
    LABEL   TEXT,
    COMMENT TEXT
);

CREATE TABLE IF NOT EXISTS ASSIGNOR (
    PARTY_URI   TEXT    NOT NULL,
    RULE_URI    TEXT    NOT NULL,
    FOREIGN KEY (RULE_URI) REFERENCES RULE (URI) ON DELETE CASCADE,
    FOREIGN KEY (PARTY_URI) REFERENCES PARTY (URI),
    PRIMARY KEY (PARTY_URI, RULE_URI)
);

CREATE TABLE IF NOT EXISTS ASSIGNEE (
    PARTY_URI   TEXT    NOT NULL,
    RULE_URI    TEXT    NOT NULL,
    FOREIGN KEY (RULE_URI) REFERENCES RULE (URI) ON DELETE CASCADE,
    FOREIGN KEY (PARTY_URI) REFERENCES PARTY (URI),
    PRIMARY KEY (PARTY_URI, RULE_URI)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for join lookups
CREATE INDEX IF NOT EXISTS idx_asset_policy ON ASSET(POLICY_URI);
CREATE INDEX IF NOT EXISTS idx_policy_has_rule_rule ON POLICY_HAS_RULE(RULE_URI);
CREATE INDEX IF NOT EXISTS idx_rule_has_action_action ON RULE_HAS_ACTION(ACTION_URI);
CREATE INDEX IF NOT EXISTS idx_assignor_rule ON ASSIGNOR(RULE_URI);
CREATE INDEX IF NOT EXISTS idx_assignee_rule ON ASSIGNEE(RULE_URI);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
