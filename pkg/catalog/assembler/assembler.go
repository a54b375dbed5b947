package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"licentia-hq/licentia/pkg/catalog"
	"licentia-hq/licentia/pkg/catalog/registry"
	"licentia-hq/licentia/pkg/catalog/store"
)

// Assembler builds complete policies - attributes, rules, actions, parties,
// and all their links - as single atomic units. Any failure at any step
// rolls the whole transaction back, so a policy either exists in full or
// not at all.
type Assembler struct {
	store   *store.Store
	reg     *registry.Registry
	baseURI string
	logger  *slog.Logger
}

// New creates an Assembler writing through the given store. Rule URIs are
// minted under baseURI for specs that do not carry one.
func New(st *store.Store, baseURI string) *Assembler {
	return &Assembler{
		store:   st,
		reg:     st.Registry(),
		baseURI: strings.TrimSuffix(baseURI, "/"),
		logger:  slog.Default().With("component", "catalog.assembler"),
	}
}

// CreatePolicyWithRules creates a policy, applies its attributes, and
// creates and links every described rule with its actions and parties, all
// in one transaction. Attribute names are matched case-insensitively
// against the settable policy attributes; rule types and actions may be
// given by URI or label. Unknown parties are created on the fly.
//
// On any failure the transaction is rolled back and a ValidationError
// wrapping the first underlying cause is returned; no partial policy, rule,
// or link rows persist.
func (a *Assembler) CreatePolicyWithRules(ctx context.Context, uri string, attributes map[string]string, rules []catalog.RuleSpec) error {
	if !catalog.IsValidURI(uri) {
		return catalog.NewValidationError(uri, "validate uri",
			fmt.Errorf("not a valid URI: %s", uri))
	}

	tx, err := a.store.BeginWrite(ctx)
	if err != nil {
		return catalog.NewValidationError(uri, "begin", err)
	}
	defer tx.Rollback()

	if err := tx.CreatePolicy(ctx, uri); err != nil {
		return catalog.NewValidationError(uri, "create policy", err)
	}

	for name, value := range attributes {
		attr, err := catalog.ParseAttribute(name)
		if err != nil {
			return catalog.NewValidationError(uri, "parse attribute", err)
		}
		if err := tx.SetPolicyAttribute(ctx, uri, attr, value); err != nil {
			return catalog.NewValidationError(uri, "set attribute", err)
		}
	}

	for i, spec := range rules {
		if err := a.assembleRule(ctx, tx, uri, spec); err != nil {
			return catalog.NewValidationError(uri, fmt.Sprintf("rule %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return catalog.NewValidationError(uri, "commit", err)
	}

	a.logger.Info("policy created",
		"uri", uri,
		"rules", len(rules),
	)
	return nil
}

// assembleRule creates one rule inside the bracket: resolve its type, mint
// a URI if the spec has none, link every action, then every party, then the
// rule itself to the policy.
func (a *Assembler) assembleRule(ctx context.Context, tx *store.Tx, policyURI string, spec catalog.RuleSpec) error {
	ruleType, err := a.reg.ResolveRuleType(spec.Type)
	if err != nil {
		return err
	}

	ruleURI := spec.URI
	if ruleURI == "" {
		ruleURI = a.mintRuleURI()
	}

	if err := tx.CreateRule(ctx, ruleURI, ruleType.URI, spec.Label); err != nil {
		return err
	}

	for _, id := range spec.Actions {
		action, err := a.reg.ResolveAction(id)
		if err != nil {
			return err
		}
		if err := tx.AddActionToRule(ctx, action.URI, ruleURI); err != nil {
			return err
		}
	}

	for _, party := range spec.Assignors {
		if err := a.ensureParty(ctx, tx, party); err != nil {
			return err
		}
		if err := tx.AddAssignorToRule(ctx, party.URI, ruleURI); err != nil {
			return err
		}
	}
	for _, party := range spec.Assignees {
		if err := a.ensureParty(ctx, tx, party); err != nil {
			return err
		}
		if err := tx.AddAssigneeToRule(ctx, party.URI, ruleURI); err != nil {
			return err
		}
	}

	return tx.AddRuleToPolicy(ctx, ruleURI, policyURI)
}

// ensureParty creates the described party unless it already exists.
func (a *Assembler) ensureParty(ctx context.Context, tx *store.Tx, party catalog.PartySpec) error {
	if party.URI == "" {
		return fmt.Errorf("party descriptor has no URI")
	}
	exists, err := tx.PartyExists(ctx, party.URI)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return tx.CreateParty(ctx, party.URI, party.Label, party.Comment)
}

// mintRuleURI returns a fresh rule URI under the assembler's base URI.
func (a *Assembler) mintRuleURI() string {
	return fmt.Sprintf("%s/rule/%s", a.baseURI, uuid.NewString())
}
