package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"licentia-hq/licentia/pkg/catalog"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx. The
// operation implementations run over it so the same code serves both the
// single-operation Store methods and an explicit write bracket.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is an explicit write transaction over the catalogue. No operation on a
// Tx commits by itself; the caller ends the bracket with Commit or Rollback.
// The policy assembler uses one Tx per assembly so a failure at any step
// leaves no partial rows behind.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// Commit makes all pending writes durable.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards all pending writes. Calling Rollback after a successful
// Commit is a no-op, so it is safe to defer.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

//
// Policies
//

func (s *Store) CreatePolicy(ctx context.Context, uri string) error {
	return s.withTx(ctx, "create_policy", func(tx *Tx) error {
		return tx.CreatePolicy(ctx, uri)
	})
}

// CreatePolicy stores a new policy. It fails with a DuplicateError if a
// policy with that URI already exists.
func (t *Tx) CreatePolicy(ctx context.Context, uri string) error {
	exists, err := policyExists(ctx, t.tx, uri)
	if err != nil {
		return err
	}
	if exists {
		return catalog.NewDuplicateError(catalog.EntityPolicy, uri)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO POLICY (URI, CREATED) VALUES (?, ?)`,
		uri, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	return nil
}

func (s *Store) SetPolicyAttribute(ctx context.Context, uri string, attr catalog.Attribute, value string) error {
	return s.withTx(ctx, "set_policy_attribute", func(tx *Tx) error {
		return tx.SetPolicyAttribute(ctx, uri, attr, value)
	})
}

// SetPolicyAttribute sets one of the whitelisted policy attributes. The
// attribute is validated before the policy lookup, so an invalid attribute
// fails the same way whether or not the policy exists.
func (t *Tx) SetPolicyAttribute(ctx context.Context, uri string, attr catalog.Attribute, value string) error {
	if !attr.Valid() {
		return catalog.NewInvalidAttributeError(attr.String())
	}
	exists, err := policyExists(ctx, t.tx, uri)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityPolicy, uri)
	}
	// The column name comes from the closed Attribute enum, never from
	// caller input.
	query := fmt.Sprintf(`UPDATE POLICY SET %s = ? WHERE URI = ?`, attr.Column())
	if _, err := t.tx.ExecContext(ctx, query, value, uri); err != nil {
		return fmt.Errorf("failed to set policy attribute %s: %w", attr, err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, uri string) error {
	return s.withTx(ctx, "delete_policy", func(tx *Tx) error {
		return tx.DeletePolicy(ctx, uri)
	})
}

// DeletePolicy removes a policy and, by cascade, its POLICY_HAS_RULE rows.
// Rules linked to the policy are left in place. Deleting an absent policy is
// a no-op.
func (t *Tx) DeletePolicy(ctx context.Context, uri string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM POLICY WHERE URI = ?`, uri); err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return nil
}

//
// Assets
//

func (s *Store) AddAsset(ctx context.Context, assetURI, policyURI string) error {
	return s.withTx(ctx, "add_asset", func(tx *Tx) error {
		return tx.AddAsset(ctx, assetURI, policyURI)
	})
}

// AddAsset assigns an asset to an existing policy. Asset URIs are unique
// across the catalogue; an asset belongs to exactly one policy and is
// cascade-deleted with it.
func (t *Tx) AddAsset(ctx context.Context, assetURI, policyURI string) error {
	exists, err := policyExists(ctx, t.tx, policyURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityPolicy, policyURI)
	}
	exists, err = assetExists(ctx, t.tx, assetURI)
	if err != nil {
		return err
	}
	if exists {
		return catalog.NewDuplicateError(catalog.EntityAsset, assetURI)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO ASSET (URI, POLICY_URI) VALUES (?, ?)`,
		assetURI, policyURI)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

func (s *Store) RemoveAsset(ctx context.Context, assetURI string) error {
	return s.withTx(ctx, "remove_asset", func(tx *Tx) error {
		return tx.RemoveAsset(ctx, assetURI)
	})
}

// RemoveAsset removes an asset from its policy. Removing an absent asset is
// a no-op.
func (t *Tx) RemoveAsset(ctx context.Context, assetURI string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM ASSET WHERE URI = ?`, assetURI); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

//
// Rules
//

func (s *Store) CreateRule(ctx context.Context, uri, typeURI, label string) error {
	return s.withTx(ctx, "create_rule", func(tx *Tx) error {
		return tx.CreateRule(ctx, uri, typeURI, label)
	})
}

// CreateRule stores a new rule after validating its type against the
// registry vocabulary.
func (t *Tx) CreateRule(ctx context.Context, uri, typeURI, label string) error {
	exists, err := ruleExists(ctx, t.tx, uri)
	if err != nil {
		return err
	}
	if exists {
		return catalog.NewDuplicateError(catalog.EntityRule, uri)
	}
	if !t.store.reg.RuleTypeExists(typeURI) {
		return catalog.NewInvalidRuleTypeError(typeURI)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO RULE (URI, TYPE, LABEL) VALUES (?, ?, ?)`,
		uri, typeURI, label)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, uri string) error {
	return s.withTx(ctx, "delete_rule", func(tx *Tx) error {
		return tx.DeleteRule(ctx, uri)
	})
}

// DeleteRule removes a rule and, by cascade, its action and party links. It
// refuses with an InUseError while any policy still references the rule;
// callers unlink it from every policy first.
func (t *Tx) DeleteRule(ctx context.Context, uri string) error {
	var linked int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM POLICY_HAS_RULE WHERE RULE_URI = ?`, uri).Scan(&linked)
	if err != nil {
		return fmt.Errorf("failed to count policy links: %w", err)
	}
	if linked > 0 {
		return catalog.NewInUseError(catalog.EntityRule, uri,
			fmt.Sprintf("still linked to %d policies", linked))
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM RULE WHERE URI = ?`, uri); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func (s *Store) AddRuleToPolicy(ctx context.Context, ruleURI, policyURI string) error {
	return s.withTx(ctx, "add_rule_to_policy", func(tx *Tx) error {
		return tx.AddRuleToPolicy(ctx, ruleURI, policyURI)
	})
}

// AddRuleToPolicy links an existing rule to an existing policy. Rules are
// reusable: the same rule may be linked to any number of policies.
func (t *Tx) AddRuleToPolicy(ctx context.Context, ruleURI, policyURI string) error {
	exists, err := ruleExists(ctx, t.tx, ruleURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityRule, ruleURI)
	}
	exists, err = policyExists(ctx, t.tx, policyURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityPolicy, policyURI)
	}
	linked, err := policyHasRule(ctx, t.tx, policyURI, ruleURI)
	if err != nil {
		return err
	}
	if linked {
		return catalog.NewAlreadyLinkedError(catalog.EntityRule, ruleURI, catalog.EntityPolicy, policyURI)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO POLICY_HAS_RULE (POLICY_URI, RULE_URI) VALUES (?, ?)`,
		policyURI, ruleURI)
	if err != nil {
		return fmt.Errorf("failed to link rule to policy: %w", err)
	}
	return nil
}

func (s *Store) RemoveRuleFromPolicy(ctx context.Context, ruleURI, policyURI string) error {
	return s.withTx(ctx, "remove_rule_from_policy", func(tx *Tx) error {
		return tx.RemoveRuleFromPolicy(ctx, ruleURI, policyURI)
	})
}

// RemoveRuleFromPolicy unlinks a rule from a policy. The rule itself still
// exists until explicitly deleted.
func (t *Tx) RemoveRuleFromPolicy(ctx context.Context, ruleURI, policyURI string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM POLICY_HAS_RULE WHERE POLICY_URI = ? AND RULE_URI = ?`,
		policyURI, ruleURI)
	if err != nil {
		return fmt.Errorf("failed to unlink rule from policy: %w", err)
	}
	return nil
}

//
// Rule actions
//

func (s *Store) AddActionToRule(ctx context.Context, actionURI, ruleURI string) error {
	return s.withTx(ctx, "add_action_to_rule", func(tx *Tx) error {
		return tx.AddActionToRule(ctx, actionURI, ruleURI)
	})
}

// AddActionToRule links a vocabulary action to a rule.
func (t *Tx) AddActionToRule(ctx context.Context, actionURI, ruleURI string) error {
	exists, err := ruleExists(ctx, t.tx, ruleURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityRule, ruleURI)
	}
	exists, err = actionExists(ctx, t.tx, actionURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityAction, actionURI)
	}
	linked, err := ruleHasAction(ctx, t.tx, ruleURI, actionURI)
	if err != nil {
		return err
	}
	if linked {
		return catalog.NewAlreadyLinkedError(catalog.EntityAction, actionURI, catalog.EntityRule, ruleURI)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO RULE_HAS_ACTION (RULE_URI, ACTION_URI) VALUES (?, ?)`,
		ruleURI, actionURI)
	if err != nil {
		return fmt.Errorf("failed to link action to rule: %w", err)
	}
	return nil
}

func (s *Store) RemoveActionFromRule(ctx context.Context, actionURI, ruleURI string) error {
	return s.withTx(ctx, "remove_action_from_rule", func(tx *Tx) error {
		return tx.RemoveActionFromRule(ctx, actionURI, ruleURI)
	})
}

// RemoveActionFromRule unlinks an action from a rule.
func (t *Tx) RemoveActionFromRule(ctx context.Context, actionURI, ruleURI string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM RULE_HAS_ACTION WHERE RULE_URI = ? AND ACTION_URI = ?`,
		ruleURI, actionURI)
	if err != nil {
		return fmt.Errorf("failed to unlink action from rule: %w", err)
	}
	return nil
}

//
// Rule parties
//

func (s *Store) AddAssignorToRule(ctx context.Context, partyURI, ruleURI string) error {
	return s.withTx(ctx, "add_assignor_to_rule", func(tx *Tx) error {
		return tx.AddAssignorToRule(ctx, partyURI, ruleURI)
	})
}

// AddAssignorToRule links a party to a rule as its assignor (grantor).
func (t *Tx) AddAssignorToRule(ctx context.Context, partyURI, ruleURI string) error {
	return t.addPartyLink(ctx, "ASSIGNOR", partyURI, ruleURI)
}

func (s *Store) RemoveAssignorFromRule(ctx context.Context, partyURI, ruleURI string) error {
	return s.withTx(ctx, "remove_assignor_from_rule", func(tx *Tx) error {
		return tx.RemoveAssignorFromRule(ctx, partyURI, ruleURI)
	})
}

// RemoveAssignorFromRule unlinks a party from a rule as assignor. The party
// itself persists.
func (t *Tx) RemoveAssignorFromRule(ctx context.Context, partyURI, ruleURI string) error {
	return t.removePartyLink(ctx, "ASSIGNOR", partyURI, ruleURI)
}

func (s *Store) AddAssigneeToRule(ctx context.Context, partyURI, ruleURI string) error {
	return s.withTx(ctx, "add_assignee_to_rule", func(tx *Tx) error {
		return tx.AddAssigneeToRule(ctx, partyURI, ruleURI)
	})
}

// AddAssigneeToRule links a party to a rule as its assignee (grantee).
func (t *Tx) AddAssigneeToRule(ctx context.Context, partyURI, ruleURI string) error {
	return t.addPartyLink(ctx, "ASSIGNEE", partyURI, ruleURI)
}

func (s *Store) RemoveAssigneeFromRule(ctx context.Context, partyURI, ruleURI string) error {
	return s.withTx(ctx, "remove_assignee_from_rule", func(tx *Tx) error {
		return tx.RemoveAssigneeFromRule(ctx, partyURI, ruleURI)
	})
}

// RemoveAssigneeFromRule unlinks a party from a rule as assignee.
func (t *Tx) RemoveAssigneeFromRule(ctx context.Context, partyURI, ruleURI string) error {
	return t.removePartyLink(ctx, "ASSIGNEE", partyURI, ruleURI)
}

// addPartyLink inserts an ASSIGNOR or ASSIGNEE row. The table name is one of
// the two fixed literals, never caller input.
func (t *Tx) addPartyLink(ctx context.Context, table, partyURI, ruleURI string) error {
	exists, err := partyExists(ctx, t.tx, partyURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityParty, partyURI)
	}
	exists, err = ruleExists(ctx, t.tx, ruleURI)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.NewNotFoundError(catalog.EntityRule, ruleURI)
	}

	var linked int
	err = t.tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE PARTY_URI = ? AND RULE_URI = ?`, table),
		partyURI, ruleURI).Scan(&linked)
	if err != nil {
		return fmt.Errorf("failed to check party link: %w", err)
	}
	if linked > 0 {
		return catalog.NewAlreadyLinkedError(catalog.EntityParty, partyURI, catalog.EntityRule, ruleURI)
	}

	_, err = t.tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (PARTY_URI, RULE_URI) VALUES (?, ?)`, table),
		partyURI, ruleURI)
	if err != nil {
		return fmt.Errorf("failed to link party to rule: %w", err)
	}
	return nil
}

func (t *Tx) removePartyLink(ctx context.Context, table, partyURI, ruleURI string) error {
	_, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE PARTY_URI = ? AND RULE_URI = ?`, table),
		partyURI, ruleURI)
	if err != nil {
		return fmt.Errorf("failed to unlink party from rule: %w", err)
	}
	return nil
}

//
// Parties
//

func (s *Store) CreateParty(ctx context.Context, uri, label, comment string) error {
	return s.withTx(ctx, "create_party", func(tx *Tx) error {
		return tx.CreateParty(ctx, uri, label, comment)
	})
}

// CreateParty stores a new party.
func (t *Tx) CreateParty(ctx context.Context, uri, label, comment string) error {
	exists, err := partyExists(ctx, t.tx, uri)
	if err != nil {
		return err
	}
	if exists {
		return catalog.NewDuplicateError(catalog.EntityParty, uri)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO PARTY (URI, LABEL, COMMENT) VALUES (?, ?, ?)`,
		uri, label, comment)
	if err != nil {
		return fmt.Errorf("failed to insert party: %w", err)
	}
	return nil
}

func (s *Store) DeleteParty(ctx context.Context, uri string) error {
	return s.withTx(ctx, "delete_party", func(tx *Tx) error {
		return tx.DeleteParty(ctx, uri)
	})
}

// DeleteParty removes a party. It refuses with an InUseError while any rule
// still names the party as assignor or assignee.
func (t *Tx) DeleteParty(ctx context.Context, uri string) error {
	var linked int
	err := t.tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(1) FROM ASSIGNOR WHERE PARTY_URI = ?)
		     + (SELECT COUNT(1) FROM ASSIGNEE WHERE PARTY_URI = ?)`,
		uri, uri).Scan(&linked)
	if err != nil {
		return fmt.Errorf("failed to count party links: %w", err)
	}
	if linked > 0 {
		return catalog.NewInUseError(catalog.EntityParty, uri,
			fmt.Sprintf("still referenced by %d rule links", linked))
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM PARTY WHERE URI = ?`, uri); err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return nil
}

//
// Existence checks available inside a write bracket, so the assembler sees
// its own uncommitted rows.
//

// PolicyExists reports whether a policy with the given URI exists.
func (t *Tx) PolicyExists(ctx context.Context, uri string) (bool, error) {
	return policyExists(ctx, t.tx, uri)
}

// RuleExists reports whether a rule with the given URI exists.
func (t *Tx) RuleExists(ctx context.Context, uri string) (bool, error) {
	return ruleExists(ctx, t.tx, uri)
}

// PartyExists reports whether a party with the given URI exists.
func (t *Tx) PartyExists(ctx context.Context, uri string) (bool, error) {
	return partyExists(ctx, t.tx, uri)
}

// AssetExists reports whether an asset with the given URI exists.
func (t *Tx) AssetExists(ctx context.Context, uri string) (bool, error) {
	return assetExists(ctx, t.tx, uri)
}
