package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"licentia-hq/licentia/pkg/catalog"
)

//
// Shared existence helpers
//

func policyExists(ctx context.Context, q dbtx, uri string) (bool, error) {
	return rowExists(ctx, q, `SELECT COUNT(1) FROM POLICY WHERE URI = ?`, uri)
}

func ruleExists(ctx context.Context, q dbtx, uri string) (bool, error) {
	return rowExists(ctx, q, `SELECT COUNT(1) FROM RULE WHERE URI = ?`, uri)
}

func partyExists(ctx context.Context, q dbtx, uri string) (bool, error) {
	return rowExists(ctx, q, `SELECT COUNT(1) FROM PARTY WHERE URI = ?`, uri)
}

func actionExists(ctx context.Context, q dbtx, uri string) (bool, error) {
	return rowExists(ctx, q, `SELECT COUNT(1) FROM ACTION WHERE URI = ?`, uri)
}

func assetExists(ctx context.Context, q dbtx, uri string) (bool, error) {
	return rowExists(ctx, q, `SELECT COUNT(1) FROM ASSET WHERE URI = ?`, uri)
}

func policyHasRule(ctx context.Context, q dbtx, policyURI, ruleURI string) (bool, error) {
	return rowExists(ctx, q,
		`SELECT COUNT(1) FROM POLICY_HAS_RULE WHERE POLICY_URI = ? AND RULE_URI = ?`,
		policyURI, ruleURI)
}

func ruleHasAction(ctx context.Context, q dbtx, ruleURI, actionURI string) (bool, error) {
	return rowExists(ctx, q,
		`SELECT COUNT(1) FROM RULE_HAS_ACTION WHERE RULE_URI = ? AND ACTION_URI = ?`,
		ruleURI, actionURI)
}

func rowExists(ctx context.Context, q dbtx, query string, args ...any) (bool, error) {
	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed existence check: %w", err)
	}
	return count > 0, nil
}

//
// Store read operations. All pure reads against the pool, no side effects.
//

// PolicyExists reports whether a policy with the given URI exists.
func (s *Store) PolicyExists(ctx context.Context, uri string) (bool, error) {
	return policyExists(ctx, s.db, uri)
}

// RuleExists reports whether a rule with the given URI exists.
func (s *Store) RuleExists(ctx context.Context, uri string) (bool, error) {
	return ruleExists(ctx, s.db, uri)
}

// PartyExists reports whether a party with the given URI exists.
func (s *Store) PartyExists(ctx context.Context, uri string) (bool, error) {
	return partyExists(ctx, s.db, uri)
}

// ActionExists reports whether an action with the given URI exists in the
// seeded vocabulary table.
func (s *Store) ActionExists(ctx context.Context, uri string) (bool, error) {
	return actionExists(ctx, s.db, uri)
}

// AssetExists reports whether an asset with the given URI exists.
func (s *Store) AssetExists(ctx context.Context, uri string) (bool, error) {
	return assetExists(ctx, s.db, uri)
}

// PolicyHasRule reports whether the policy currently links the rule.
func (s *Store) PolicyHasRule(ctx context.Context, policyURI, ruleURI string) (bool, error) {
	return policyHasRule(ctx, s.db, policyURI, ruleURI)
}

// GetPolicy returns a policy's attributes plus the URIs of its linked
// rules. It does not resolve the rules themselves; callers fetch each rule
// with GetRule, keeping this call flat regardless of join depth.
func (s *Store) GetPolicy(ctx context.Context, uri string) (catalog.PolicyRecord, error) {
	var (
		p       catalog.PolicyRecord
		created int64

		typ, label, jurisdiction, legalCode, hasVersion, language sql.NullString
		seeAlso, sameAs, comment, logo, status, creator           sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT URI, TYPE, LABEL, JURISDICTION, LEGAL_CODE, HAS_VERSION, LANGUAGE,
		       SEE_ALSO, SAME_AS, COMMENT, LOGO, CREATED, STATUS, CREATOR
		FROM POLICY WHERE URI = ?`, uri).Scan(
		&p.URI, &typ, &label, &jurisdiction, &legalCode, &hasVersion, &language,
		&seeAlso, &sameAs, &comment, &logo, &created, &status, &creator,
	)
	if err == sql.ErrNoRows {
		return catalog.PolicyRecord{}, catalog.NewNotFoundError(catalog.EntityPolicy, uri)
	}
	if err != nil {
		return catalog.PolicyRecord{}, fmt.Errorf("failed to load policy: %w", err)
	}

	p.Type = typ.String
	p.Label = label.String
	p.Jurisdiction = jurisdiction.String
	p.LegalCode = legalCode.String
	p.HasVersion = hasVersion.String
	p.Language = language.String
	p.SeeAlso = seeAlso.String
	p.SameAs = sameAs.String
	p.Comment = comment.String
	p.Logo = logo.String
	p.Status = status.String
	p.Creator = creator.String
	p.Created = time.Unix(created, 0).UTC()

	p.RuleURIs, err = s.scanURIs(ctx,
		`SELECT RULE_URI FROM POLICY_HAS_RULE WHERE POLICY_URI = ? ORDER BY ROWID`, uri)
	if err != nil {
		return catalog.PolicyRecord{}, err
	}
	return p, nil
}

// GetRule returns a rule with its resolved type label, linked action
// records, and linked assignor/assignee party URIs.
func (s *Store) GetRule(ctx context.Context, uri string) (catalog.RuleRecord, error) {
	var (
		r     catalog.RuleRecord
		label sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT R.URI, R.TYPE, R.LABEL, T.LABEL
		FROM RULE R JOIN RULE_TYPE T ON R.TYPE = T.URI
		WHERE R.URI = ?`, uri).Scan(&r.URI, &r.TypeURI, &label, &r.TypeLabel)
	if err == sql.ErrNoRows {
		return catalog.RuleRecord{}, catalog.NewNotFoundError(catalog.EntityRule, uri)
	}
	if err != nil {
		return catalog.RuleRecord{}, fmt.Errorf("failed to load rule: %w", err)
	}
	r.Label = label.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT A.URI, A.LABEL, A.DEFINITION
		FROM ACTION A JOIN RULE_HAS_ACTION R_A ON R_A.ACTION_URI = A.URI
		WHERE R_A.RULE_URI = ?
		ORDER BY R_A.ROWID`, uri)
	if err != nil {
		return catalog.RuleRecord{}, fmt.Errorf("failed to load rule actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a catalog.ActionRecord
		if err := rows.Scan(&a.URI, &a.Label, &a.Definition); err != nil {
			return catalog.RuleRecord{}, fmt.Errorf("failed to scan action: %w", err)
		}
		r.Actions = append(r.Actions, a)
	}
	if err := rows.Err(); err != nil {
		return catalog.RuleRecord{}, fmt.Errorf("failed to load rule actions: %w", err)
	}

	r.Assignors, err = s.scanURIs(ctx,
		`SELECT PARTY_URI FROM ASSIGNOR WHERE RULE_URI = ? ORDER BY ROWID`, uri)
	if err != nil {
		return catalog.RuleRecord{}, err
	}
	r.Assignees, err = s.scanURIs(ctx,
		`SELECT PARTY_URI FROM ASSIGNEE WHERE RULE_URI = ? ORDER BY ROWID`, uri)
	if err != nil {
		return catalog.RuleRecord{}, err
	}
	return r, nil
}

// GetParty returns a stored party.
func (s *Store) GetParty(ctx context.Context, uri string) (catalog.PartyRecord, error) {
	var (
		p              catalog.PartyRecord
		label, comment sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT URI, LABEL, COMMENT FROM PARTY WHERE URI = ?`, uri).
		Scan(&p.URI, &label, &comment)
	if err == sql.ErrNoRows {
		return catalog.PartyRecord{}, catalog.NewNotFoundError(catalog.EntityParty, uri)
	}
	if err != nil {
		return catalog.PartyRecord{}, fmt.Errorf("failed to load party: %w", err)
	}
	p.Label = label.String
	p.Comment = comment.String
	return p, nil
}

// GetAllPolicies returns every policy URI in catalogue listing order
// (creation order). This order is the tie-break the match engine relies on.
func (s *Store) GetAllPolicies(ctx context.Context) ([]string, error) {
	return s.scanURIs(ctx, `SELECT URI FROM POLICY ORDER BY ROWID`)
}

// GetAllRules returns every rule URI in creation order.
func (s *Store) GetAllRules(ctx context.Context) ([]string, error) {
	return s.scanURIs(ctx, `SELECT URI FROM RULE ORDER BY ROWID`)
}

// GetAllParties returns every party URI in creation order.
func (s *Store) GetAllParties(ctx context.Context) ([]string, error) {
	return s.scanURIs(ctx, `SELECT URI FROM PARTY ORDER BY ROWID`)
}

// GetAllAssets returns every asset URI in creation order.
func (s *Store) GetAllAssets(ctx context.Context) ([]string, error) {
	return s.scanURIs(ctx, `SELECT URI FROM ASSET ORDER BY ROWID`)
}

// GetAssetsForPolicy returns the URIs of all assets assigned to the policy.
func (s *Store) GetAssetsForPolicy(ctx context.Context, policyURI string) ([]string, error) {
	return s.scanURIs(ctx,
		`SELECT URI FROM ASSET WHERE POLICY_URI = ? ORDER BY ROWID`, policyURI)
}

// GetAllActions returns the seeded action vocabulary.
func (s *Store) GetAllActions(ctx context.Context) ([]catalog.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT URI, LABEL, DEFINITION FROM ACTION ORDER BY LABEL`)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	defer rows.Close()

	var actions []catalog.ActionRecord
	for rows.Next() {
		var a catalog.ActionRecord
		if err := rows.Scan(&a.URI, &a.Label, &a.Definition); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	return actions, nil
}

// GetPoliciesForRule returns the URIs of all policies linking the rule.
func (s *Store) GetPoliciesForRule(ctx context.Context, ruleURI string) ([]string, error) {
	return s.scanURIs(ctx,
		`SELECT POLICY_URI FROM POLICY_HAS_RULE WHERE RULE_URI = ? ORDER BY ROWID`, ruleURI)
}

// GetPoliciesUsingAction returns the URIs of all policies with at least one
// rule granting, requiring, or forbidding the action.
func (s *Store) GetPoliciesUsingAction(ctx context.Context, actionURI string) ([]string, error) {
	return s.scanURIs(ctx, `
		SELECT P_R.POLICY_URI
		FROM POLICY_HAS_RULE P_R JOIN RULE_HAS_ACTION R_A ON P_R.RULE_URI = R_A.RULE_URI
		WHERE R_A.ACTION_URI = ?
		GROUP BY P_R.POLICY_URI
		ORDER BY MIN(P_R.ROWID)`, actionURI)
}

// GetRulesForParty returns the URIs of all rules naming the party as
// assignor or assignee.
func (s *Store) GetRulesForParty(ctx context.Context, partyURI string) ([]string, error) {
	return s.scanURIs(ctx, `
		SELECT RULE_URI FROM ASSIGNOR WHERE PARTY_URI = ?
		UNION
		SELECT RULE_URI FROM ASSIGNEE WHERE PARTY_URI = ?`, partyURI, partyURI)
}

// scanURIs runs a single-column query and collects the values.
func (s *Store) scanURIs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		uris = append(uris, uri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return uris, nil
}
