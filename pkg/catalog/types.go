package catalog

import "time"

// Entity names the kind of catalogue entity an error or record refers to.
type Entity string

const (
	EntityPolicy   Entity = "policy"
	EntityRule     Entity = "rule"
	EntityAction   Entity = "action"
	EntityParty    Entity = "party"
	EntityAsset    Entity = "asset"
	EntityRuleType Entity = "rule type"
)

// PolicyRecord is a stored policy with its attributes and the URIs of the
// rules currently linked to it. Rule URIs are returned in link order; callers
// that need the full rule graph fetch each rule individually.
type PolicyRecord struct {
	URI          string
	Type         string
	Label        string
	Jurisdiction string
	LegalCode    string
	HasVersion   string
	Language     string
	SeeAlso      string
	SameAs       string
	Comment      string
	Logo         string
	Created      time.Time
	Status       string
	Creator      string

	// RuleURIs lists the rules linked to this policy via POLICY_HAS_RULE.
	RuleURIs []string
}

// RuleRecord is a stored rule with its resolved type label, linked actions,
// and linked assignor/assignee party URIs.
type RuleRecord struct {
	URI       string
	TypeURI   string
	TypeLabel string
	Label     string
	Actions   []ActionRecord
	Assignors []string
	Assignees []string
}

// ActionRecord is one entry of the fixed action vocabulary.
type ActionRecord struct {
	URI        string `yaml:"uri"`
	Label      string `yaml:"label"`
	Definition string `yaml:"definition"`
}

// PartyRecord is a stored party. Parties are referenced by rules as
// assignors or assignees and persist independently of them.
type PartyRecord struct {
	URI     string
	Label   string
	Comment string
}

// RuleTypeRecord is one entry of the fixed rule-type vocabulary,
// e.g. http://www.w3.org/ns/odrl/2/permission -> "Permission".
type RuleTypeRecord struct {
	URI   string `yaml:"uri"`
	Label string `yaml:"label"`
}
