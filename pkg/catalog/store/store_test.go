package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"licentia-hq/licentia/pkg/catalog"
	"licentia-hq/licentia/pkg/catalog/registry"
)

const (
	permissionType  = "http://www.w3.org/ns/odrl/2/permission"
	prohibitionType = "http://www.w3.org/ns/odrl/2/prohibition"
	dutyType        = "http://www.w3.org/ns/odrl/2/duty"

	readAction       = "http://www.w3.org/ns/odrl/2/read"
	distributeAction = "http://creativecommons.org/ns#Distribution"
)

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	st, err := New(&Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		Driver:      "sqlite",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}, reg, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	return st, func() { st.Close() }
}

// TestStore_CreateAndGetPolicy tests the basic policy round trip.
func TestStore_CreateAndGetPolicy(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	uri := "http://example.com/licence/1"

	before := time.Now().Add(-time.Second)
	if err := st.CreatePolicy(ctx, uri); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}

	policy, err := st.GetPolicy(ctx, uri)
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if policy.URI != uri {
		t.Errorf("Expected URI %s, got %s", uri, policy.URI)
	}
	if policy.Created.Before(before) || policy.Created.After(time.Now().Add(time.Second)) {
		t.Errorf("Created timestamp %v not near now", policy.Created)
	}
	if len(policy.RuleURIs) != 0 {
		t.Errorf("Expected no rules on a fresh policy, got %d", len(policy.RuleURIs))
	}
}

// TestStore_CreatePolicyDuplicate tests that duplicate URIs are rejected.
func TestStore_CreatePolicyDuplicate(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	uri := "http://example.com/licence/1"

	if err := st.CreatePolicy(ctx, uri); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}

	err := st.CreatePolicy(ctx, uri)
	var dup *catalog.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}
	if dup.Entity != catalog.EntityPolicy {
		t.Errorf("Expected policy entity, got %s", dup.Entity)
	}
}

// TestStore_SetPolicyAttribute tests attribute updates and the whitelist.
func TestStore_SetPolicyAttribute(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	uri := "http://example.com/licence/1"
	if err := st.CreatePolicy(ctx, uri); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}

	if err := st.SetPolicyAttribute(ctx, uri, catalog.AttrLabel, "Test Licence"); err != nil {
		t.Fatalf("SetPolicyAttribute failed: %v", err)
	}
	if err := st.SetPolicyAttribute(ctx, uri, catalog.AttrComment, "a comment"); err != nil {
		t.Fatalf("SetPolicyAttribute failed: %v", err)
	}

	policy, err := st.GetPolicy(ctx, uri)
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if policy.Label != "Test Licence" {
		t.Errorf("Expected label %q, got %q", "Test Licence", policy.Label)
	}
	if policy.Comment != "a comment" {
		t.Errorf("Expected comment %q, got %q", "a comment", policy.Comment)
	}

	// Invalid attribute fails before the policy lookup.
	var invalid *catalog.InvalidAttributeError
	err = st.SetPolicyAttribute(ctx, "http://example.com/licence/absent", catalog.Attribute(0), "x")
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidAttributeError, got %v", err)
	}

	// Valid attribute on an absent policy is a NotFoundError.
	var notFound *catalog.NotFoundError
	err = st.SetPolicyAttribute(ctx, "http://example.com/licence/absent", catalog.AttrLabel, "x")
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

// TestStore_DeletePolicy tests deletion, idempotency, and the cascade over
// asset and rule-link rows.
func TestStore_DeletePolicy(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"
	ruleURI := "http://example.com/rule/1"
	assetURI := "http://example.com/asset/1"

	if err := st.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); err != nil {
		t.Fatalf("AddRuleToPolicy failed: %v", err)
	}
	if err := st.AddAsset(ctx, assetURI, policyURI); err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}

	if err := st.DeletePolicy(ctx, policyURI); err != nil {
		t.Fatalf("DeletePolicy failed: %v", err)
	}

	// Assets belong to their policy and cascade away with it.
	exists, err := st.AssetExists(ctx, assetURI)
	if err != nil {
		t.Fatalf("AssetExists failed: %v", err)
	}
	if exists {
		t.Error("Expected asset to cascade away with its policy")
	}

	exists, err = st.PolicyExists(ctx, policyURI)
	if err != nil {
		t.Fatalf("PolicyExists failed: %v", err)
	}
	if exists {
		t.Error("Expected policy to be gone")
	}

	// The POLICY_HAS_RULE row cascades away; the rule survives.
	linked, err := st.PolicyHasRule(ctx, policyURI, ruleURI)
	if err != nil {
		t.Fatalf("PolicyHasRule failed: %v", err)
	}
	if linked {
		t.Error("Expected policy-rule link to cascade away")
	}
	exists, err = st.RuleExists(ctx, ruleURI)
	if err != nil {
		t.Fatalf("RuleExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected rule to survive policy deletion")
	}

	// Deleting again is a no-op.
	if err := st.DeletePolicy(ctx, policyURI); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

// TestStore_CreateRule tests rule creation and type validation.
func TestStore_CreateRule(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()

	if err := st.CreateRule(ctx, "http://example.com/rule/1", permissionType, "read only"); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	rule, err := st.GetRule(ctx, "http://example.com/rule/1")
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if rule.TypeURI != permissionType {
		t.Errorf("Expected type %s, got %s", permissionType, rule.TypeURI)
	}
	if rule.TypeLabel != "Permission" {
		t.Errorf("Expected type label Permission, got %s", rule.TypeLabel)
	}
	if rule.Label != "read only" {
		t.Errorf("Expected label %q, got %q", "read only", rule.Label)
	}

	var invalid *catalog.InvalidRuleTypeError
	err = st.CreateRule(ctx, "http://example.com/rule/2", "http://example.com/not-a-type", "")
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidRuleTypeError, got %v", err)
	}

	var dup *catalog.DuplicateError
	err = st.CreateRule(ctx, "http://example.com/rule/1", permissionType, "")
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}
}

// TestStore_DeleteRule tests the in-use guard and the action-link cascade.
func TestStore_DeleteRule(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"
	ruleURI := "http://example.com/rule/1"

	if err := st.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if err := st.AddActionToRule(ctx, readAction, ruleURI); err != nil {
		t.Fatalf("AddActionToRule failed: %v", err)
	}
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); err != nil {
		t.Fatalf("AddRuleToPolicy failed: %v", err)
	}

	// Deletion refused while any policy still references the rule.
	var inUse *catalog.InUseError
	err := st.DeleteRule(ctx, ruleURI)
	if !errors.As(err, &inUse) {
		t.Fatalf("Expected InUseError, got %v", err)
	}

	if err := st.RemoveRuleFromPolicy(ctx, ruleURI, policyURI); err != nil {
		t.Fatalf("RemoveRuleFromPolicy failed: %v", err)
	}
	if err := st.DeleteRule(ctx, ruleURI); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}

	exists, err := st.RuleExists(ctx, ruleURI)
	if err != nil {
		t.Fatalf("RuleExists failed: %v", err)
	}
	if exists {
		t.Error("Expected rule to be gone")
	}
}

// TestStore_RulePolicyLinks tests linking rules to policies.
func TestStore_RulePolicyLinks(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"
	ruleURI := "http://example.com/rule/1"

	// Both ends must exist.
	var notFound *catalog.NotFoundError
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for absent rule, got %v", err)
	}
	if err := st.CreateRule(ctx, ruleURI, dutyType, ""); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for absent policy, got %v", err)
	}

	if err := st.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); err != nil {
		t.Fatalf("AddRuleToPolicy failed: %v", err)
	}

	var already *catalog.AlreadyLinkedError
	if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); !errors.As(err, &already) {
		t.Fatalf("Expected AlreadyLinkedError, got %v", err)
	}

	policy, err := st.GetPolicy(ctx, policyURI)
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if len(policy.RuleURIs) != 1 || policy.RuleURIs[0] != ruleURI {
		t.Errorf("Expected rule URIs [%s], got %v", ruleURI, policy.RuleURIs)
	}

	// A rule is reusable across policies.
	otherPolicy := "http://example.com/licence/2"
	if err := st.CreatePolicy(ctx, otherPolicy); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.AddRuleToPolicy(ctx, ruleURI, otherPolicy); err != nil {
		t.Fatalf("AddRuleToPolicy to second policy failed: %v", err)
	}

	policies, err := st.GetPoliciesForRule(ctx, ruleURI)
	if err != nil {
		t.Fatalf("GetPoliciesForRule failed: %v", err)
	}
	if len(policies) != 2 {
		t.Errorf("Expected 2 policies for rule, got %d", len(policies))
	}
}

// TestStore_RuleActions tests linking vocabulary actions to rules.
func TestStore_RuleActions(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ruleURI := "http://example.com/rule/1"

	if err := st.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if err := st.AddActionToRule(ctx, readAction, ruleURI); err != nil {
		t.Fatalf("AddActionToRule failed: %v", err)
	}
	if err := st.AddActionToRule(ctx, distributeAction, ruleURI); err != nil {
		t.Fatalf("AddActionToRule failed: %v", err)
	}

	// Only vocabulary actions are linkable.
	var notFound *catalog.NotFoundError
	err := st.AddActionToRule(ctx, "http://example.com/action/custom", ruleURI)
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for unknown action, got %v", err)
	}

	var already *catalog.AlreadyLinkedError
	if err := st.AddActionToRule(ctx, readAction, ruleURI); !errors.As(err, &already) {
		t.Fatalf("Expected AlreadyLinkedError, got %v", err)
	}

	rule, err := st.GetRule(ctx, ruleURI)
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if len(rule.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(rule.Actions))
	}

	if err := st.RemoveActionFromRule(ctx, readAction, ruleURI); err != nil {
		t.Fatalf("RemoveActionFromRule failed: %v", err)
	}
	rule, err = st.GetRule(ctx, ruleURI)
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if len(rule.Actions) != 1 || rule.Actions[0].URI != distributeAction {
		t.Errorf("Expected only %s to remain, got %v", distributeAction, rule.Actions)
	}
}

// TestStore_Parties tests party CRUD, rule links, and the in-use guard.
func TestStore_Parties(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	partyURI := "http://example.com/party/csiro"
	ruleURI := "http://example.com/rule/1"

	if err := st.CreateParty(ctx, partyURI, "CSIRO", "research agency"); err != nil {
		t.Fatalf("CreateParty failed: %v", err)
	}

	party, err := st.GetParty(ctx, partyURI)
	if err != nil {
		t.Fatalf("GetParty failed: %v", err)
	}
	if party.Label != "CSIRO" || party.Comment != "research agency" {
		t.Errorf("Unexpected party record: %+v", party)
	}

	var dup *catalog.DuplicateError
	if err := st.CreateParty(ctx, partyURI, "", ""); !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}

	if err := st.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if err := st.AddAssignorToRule(ctx, partyURI, ruleURI); err != nil {
		t.Fatalf("AddAssignorToRule failed: %v", err)
	}
	if err := st.AddAssigneeToRule(ctx, partyURI, ruleURI); err != nil {
		t.Fatalf("AddAssigneeToRule failed: %v", err)
	}

	rule, err := st.GetRule(ctx, ruleURI)
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if len(rule.Assignors) != 1 || rule.Assignors[0] != partyURI {
		t.Errorf("Expected assignors [%s], got %v", partyURI, rule.Assignors)
	}
	if len(rule.Assignees) != 1 || rule.Assignees[0] != partyURI {
		t.Errorf("Expected assignees [%s], got %v", partyURI, rule.Assignees)
	}

	rules, err := st.GetRulesForParty(ctx, partyURI)
	if err != nil {
		t.Fatalf("GetRulesForParty failed: %v", err)
	}
	if len(rules) != 1 || rules[0] != ruleURI {
		t.Errorf("Expected rules [%s], got %v", ruleURI, rules)
	}

	// Deletion refused while any rule still names the party.
	var inUse *catalog.InUseError
	if err := st.DeleteParty(ctx, partyURI); !errors.As(err, &inUse) {
		t.Fatalf("Expected InUseError, got %v", err)
	}

	if err := st.RemoveAssignorFromRule(ctx, partyURI, ruleURI); err != nil {
		t.Fatalf("RemoveAssignorFromRule failed: %v", err)
	}
	if err := st.RemoveAssigneeFromRule(ctx, partyURI, ruleURI); err != nil {
		t.Fatalf("RemoveAssigneeFromRule failed: %v", err)
	}
	if err := st.DeleteParty(ctx, partyURI); err != nil {
		t.Fatalf("DeleteParty failed: %v", err)
	}
}

// TestStore_Assets tests asset assignment, uniqueness, and removal.
func TestStore_Assets(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"
	assetURI := "http://example.com/asset/dataset-1"

	// The policy must exist before assets can be assigned to it.
	var notFound *catalog.NotFoundError
	if err := st.AddAsset(ctx, assetURI, policyURI); !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for absent policy, got %v", err)
	}

	if err := st.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.AddAsset(ctx, assetURI, policyURI); err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}

	exists, err := st.AssetExists(ctx, assetURI)
	if err != nil {
		t.Fatalf("AssetExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected asset to exist")
	}

	// Asset URIs are unique across the catalogue, even against another
	// policy.
	var dup *catalog.DuplicateError
	if err := st.AddAsset(ctx, assetURI, policyURI); !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}
	otherPolicy := "http://example.com/licence/2"
	if err := st.CreatePolicy(ctx, otherPolicy); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.AddAsset(ctx, assetURI, otherPolicy); !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError for second policy, got %v", err)
	}

	if err := st.AddAsset(ctx, "http://example.com/asset/dataset-2", policyURI); err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}

	assets, err := st.GetAllAssets(ctx)
	if err != nil {
		t.Fatalf("GetAllAssets failed: %v", err)
	}
	if len(assets) != 2 || assets[0] != assetURI {
		t.Errorf("Expected assets in creation order, got %v", assets)
	}

	assets, err = st.GetAssetsForPolicy(ctx, policyURI)
	if err != nil {
		t.Fatalf("GetAssetsForPolicy failed: %v", err)
	}
	if len(assets) != 2 {
		t.Errorf("Expected 2 assets for policy, got %d", len(assets))
	}
	assets, err = st.GetAssetsForPolicy(ctx, otherPolicy)
	if err != nil {
		t.Fatalf("GetAssetsForPolicy failed: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("Expected no assets for other policy, got %v", assets)
	}

	// Removal detaches the asset; removing again is a no-op.
	if err := st.RemoveAsset(ctx, assetURI); err != nil {
		t.Fatalf("RemoveAsset failed: %v", err)
	}
	exists, err = st.AssetExists(ctx, assetURI)
	if err != nil {
		t.Fatalf("AssetExists failed: %v", err)
	}
	if exists {
		t.Error("Expected asset to be gone")
	}
	if err := st.RemoveAsset(ctx, assetURI); err != nil {
		t.Errorf("Expected idempotent remove, got %v", err)
	}
}

// TestStore_GetPoliciesUsingAction tests the action-to-policy query.
func TestStore_GetPoliciesUsingAction(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()

	for i, uri := range []string{"http://example.com/licence/1", "http://example.com/licence/2"} {
		if err := st.CreatePolicy(ctx, uri); err != nil {
			t.Fatalf("CreatePolicy failed: %v", err)
		}
		ruleURI := "http://example.com/rule/" + string(rune('a'+i))
		if err := st.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
			t.Fatalf("CreateRule failed: %v", err)
		}
		if err := st.AddActionToRule(ctx, readAction, ruleURI); err != nil {
			t.Fatalf("AddActionToRule failed: %v", err)
		}
		if err := st.AddRuleToPolicy(ctx, ruleURI, uri); err != nil {
			t.Fatalf("AddRuleToPolicy failed: %v", err)
		}
	}

	policies, err := st.GetPoliciesUsingAction(ctx, readAction)
	if err != nil {
		t.Fatalf("GetPoliciesUsingAction failed: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(policies))
	}
	if policies[0] != "http://example.com/licence/1" {
		t.Errorf("Expected catalogue order, got %v", policies)
	}

	policies, err = st.GetPoliciesUsingAction(ctx, distributeAction)
	if err != nil {
		t.Fatalf("GetPoliciesUsingAction failed: %v", err)
	}
	if len(policies) != 0 {
		t.Errorf("Expected no policies, got %v", policies)
	}
}

// TestStore_VocabularySeeding tests that the vocabulary tables are seeded
// from the registry at startup.
func TestStore_VocabularySeeding(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()

	actions, err := st.GetAllActions(ctx)
	if err != nil {
		t.Fatalf("GetAllActions failed: %v", err)
	}
	if len(actions) != len(st.Registry().Actions()) {
		t.Errorf("Expected %d actions, got %d", len(st.Registry().Actions()), len(actions))
	}

	exists, err := st.ActionExists(ctx, readAction)
	if err != nil {
		t.Fatalf("ActionExists failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected action %s to be seeded", readAction)
	}
}

// TestStore_WriteBracketRollback tests that nothing inside an explicit
// bracket commits implicitly.
func TestStore_WriteBracketRollback(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"
	ruleURI := "http://example.com/rule/1"

	tx, err := st.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := tx.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy in bracket failed: %v", err)
	}
	if err := tx.CreateRule(ctx, ruleURI, permissionType, ""); err != nil {
		t.Fatalf("CreateRule in bracket failed: %v", err)
	}
	if err := tx.AddRuleToPolicy(ctx, ruleURI, policyURI); err != nil {
		t.Fatalf("AddRuleToPolicy in bracket failed: %v", err)
	}

	// The bracket sees its own pending rows.
	exists, err := tx.PolicyExists(ctx, policyURI)
	if err != nil {
		t.Fatalf("PolicyExists in bracket failed: %v", err)
	}
	if !exists {
		t.Error("Expected pending policy to be visible inside the bracket")
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	exists, err = st.PolicyExists(ctx, policyURI)
	if err != nil {
		t.Fatalf("PolicyExists failed: %v", err)
	}
	if exists {
		t.Error("Expected rollback to discard the policy")
	}
	exists, err = st.RuleExists(ctx, ruleURI)
	if err != nil {
		t.Fatalf("RuleExists failed: %v", err)
	}
	if exists {
		t.Error("Expected rollback to discard the rule")
	}
}

// TestStore_WriteBracketCommit tests that a committed bracket makes every
// pending write durable at once.
func TestStore_WriteBracketCommit(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	policyURI := "http://example.com/licence/1"

	tx, err := st.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	defer tx.Rollback()

	if err := tx.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy in bracket failed: %v", err)
	}
	if err := tx.SetPolicyAttribute(ctx, policyURI, catalog.AttrLabel, "Bracketed"); err != nil {
		t.Fatalf("SetPolicyAttribute in bracket failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	policy, err := st.GetPolicy(ctx, policyURI)
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if policy.Label != "Bracketed" {
		t.Errorf("Expected label Bracketed, got %q", policy.Label)
	}
}

// TestStore_GetAllPoliciesOrder tests that listing preserves creation order.
func TestStore_GetAllPoliciesOrder(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	uris := []string{
		"http://example.com/licence/c",
		"http://example.com/licence/a",
		"http://example.com/licence/b",
	}
	for _, uri := range uris {
		if err := st.CreatePolicy(ctx, uri); err != nil {
			t.Fatalf("CreatePolicy failed: %v", err)
		}
	}

	got, err := st.GetAllPolicies(ctx)
	if err != nil {
		t.Fatalf("GetAllPolicies failed: %v", err)
	}
	if len(got) != len(uris) {
		t.Fatalf("Expected %d policies, got %d", len(uris), len(got))
	}
	for i := range uris {
		if got[i] != uris[i] {
			t.Errorf("Expected %s at position %d, got %s", uris[i], i, got[i])
		}
	}
}

// TestStore_GetPolicyNotFound tests the missing-policy error path.
func TestStore_GetPolicyNotFound(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	var notFound *catalog.NotFoundError
	_, err := st.GetPolicy(context.Background(), "http://example.com/licence/absent")
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

// TestStore_ForeignKeysEnforced tests that foreign key enforcement is on
// for the connection, carried by the DSN rather than only a session pragma.
func TestStore_ForeignKeysEnforced(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()

	var enabled int
	if err := st.db.QueryRowContext(ctx, "PRAGMA foreign_keys;").Scan(&enabled); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("Expected foreign_keys = 1, got %d", enabled)
	}

	// An orphan join row is rejected at the SQL layer, not just by the
	// operation-level existence checks.
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO POLICY_HAS_RULE (POLICY_URI, RULE_URI) VALUES (?, ?)`,
		"http://example.com/licence/none", "http://example.com/rule/none")
	if err == nil {
		t.Error("Expected foreign key violation for orphan link row")
	}
}

// TestStore_MaintenanceOps tests checkpoint and vacuum on a live store.
func TestStore_MaintenanceOps(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := st.CreatePolicy(ctx, "http://example.com/licence/1"); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	if err := st.Checkpoint(ctx); err != nil {
		t.Errorf("Checkpoint failed: %v", err)
	}
	if err := st.Vacuum(ctx); err != nil {
		t.Errorf("Vacuum failed: %v", err)
	}
}
