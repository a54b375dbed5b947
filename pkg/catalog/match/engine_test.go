package match

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"licentia-hq/licentia/pkg/catalog/registry"
	"licentia-hq/licentia/pkg/catalog/store"
)

const (
	permissionType = "http://www.w3.org/ns/odrl/2/permission"
	dutyType       = "http://www.w3.org/ns/odrl/2/duty"

	readAction       = "http://www.w3.org/ns/odrl/2/read"
	distributeAction = "http://www.w3.org/ns/odrl/2/distribute"
	attributionDuty  = "http://creativecommons.org/ns#Attribution"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, func()) {
	t.Helper()

	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	st, err := store.New(&store.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		Driver:      "sqlite",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}, reg, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	return New(st, nil), st, func() { st.Close() }
}

// addPolicy stores a policy whose rules are given as type URI -> action URIs,
// one rule per entry, in the given order.
func addPolicy(t *testing.T, st *store.Store, policyURI string, rules []ruleDef) {
	t.Helper()
	ctx := context.Background()

	if err := st.CreatePolicy(ctx, policyURI); err != nil {
		t.Fatalf("CreatePolicy failed: %v", err)
	}
	for i, def := range rules {
		ruleURI := fmt.Sprintf("%s/rule/%d", policyURI, i)
		if err := st.CreateRule(ctx, ruleURI, def.typeURI, ""); err != nil {
			t.Fatalf("CreateRule failed: %v", err)
		}
		for _, action := range def.actions {
			if err := st.AddActionToRule(ctx, action, ruleURI); err != nil {
				t.Fatalf("AddActionToRule failed: %v", err)
			}
		}
		if err := st.AddRuleToPolicy(ctx, ruleURI, policyURI); err != nil {
			t.Fatalf("AddRuleToPolicy failed: %v", err)
		}
	}
}

type ruleDef struct {
	typeURI string
	actions []string
}

// TestEngine_FilterPolicies tests ranking: an exact policy ranks first, one
// with an extra rule ranks after it, and one missing the desired rule is
// dropped entirely.
func TestEngine_FilterPolicies(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	// A grants exactly the desired rule.
	addPolicy(t, st, "http://example.com/licence/a", []ruleDef{
		{permissionType, []string{readAction}},
	})
	// B grants it plus an unrequested distribute permission.
	addPolicy(t, st, "http://example.com/licence/b", []ruleDef{
		{permissionType, []string{readAction}},
		{permissionType, []string{distributeAction}},
	})
	// C grants only distribute: no overlap with the desired read.
	addPolicy(t, st, "http://example.com/licence/c", []ruleDef{
		{permissionType, []string{distributeAction}},
	})

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}

	matches, err := engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Policy.URI != "http://example.com/licence/a" || matches[0].Rank != 0 {
		t.Errorf("Expected a at rank 0 first, got %s at rank %d", matches[0].Policy.URI, matches[0].Rank)
	}
	if matches[1].Policy.URI != "http://example.com/licence/b" || matches[1].Rank != 1 {
		t.Errorf("Expected b at rank 1 second, got %s at rank %d", matches[1].Policy.URI, matches[1].Rank)
	}
}

// TestEngine_DropsPolicyMissingAnyDesiredRule tests the all-or-nothing
// cutoff: satisfying most of the desired rules is not enough.
func TestEngine_DropsPolicyMissingAnyDesiredRule(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	// Satisfies the permission but not the duty.
	addPolicy(t, st, "http://example.com/licence/partial", []ruleDef{
		{permissionType, []string{readAction}},
	})
	// Satisfies both.
	addPolicy(t, st, "http://example.com/licence/full", []ruleDef{
		{permissionType, []string{readAction}},
		{dutyType, []string{attributionDuty}},
	})

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
		{TypeURI: dutyType, ActionURIs: []string{attributionDuty}},
	}

	matches, err := engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected only the full policy, got %d matches", len(matches))
	}
	if matches[0].Policy.URI != "http://example.com/licence/full" {
		t.Errorf("Expected full policy, got %s", matches[0].Policy.URI)
	}
	if matches[0].Rank != 0 {
		t.Errorf("Expected rank 0, got %d", matches[0].Rank)
	}
}

// TestEngine_SameTypeRequired tests that a rule of a different type never
// satisfies a desired rule, even with overlapping actions.
func TestEngine_SameTypeRequired(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	// Prohibits read instead of permitting it.
	addPolicy(t, st, "http://example.com/licence/wrong-type", []ruleDef{
		{"http://www.w3.org/ns/odrl/2/prohibition", []string{readAction}},
	})

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}

	matches, err := engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}

// TestEngine_EmptyDesiredSet tests that an empty query matches every policy
// at rank 0 in catalogue order.
func TestEngine_EmptyDesiredSet(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	addPolicy(t, st, "http://example.com/licence/1", []ruleDef{
		{permissionType, []string{readAction}},
	})
	addPolicy(t, st, "http://example.com/licence/2", nil)

	matches, err := engine.FilterPolicies(ctx, nil, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for i, m := range matches {
		if m.Rank != 0 {
			t.Errorf("Expected rank 0, got %d", m.Rank)
		}
		want := fmt.Sprintf("http://example.com/licence/%d", i+1)
		if m.Policy.URI != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, m.Policy.URI)
		}
	}
}

// TestEngine_PolicyWithoutRules tests that a rule-less policy only matches
// an empty desired set.
func TestEngine_PolicyWithoutRules(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	addPolicy(t, st, "http://example.com/licence/empty", nil)

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}
	matches, err := engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected a rule-less policy to be dropped, got %d matches", len(matches))
	}
}

// TestEngine_MaxResults tests the result bound and the default.
func TestEngine_MaxResults(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		addPolicy(t, st, fmt.Sprintf("http://example.com/licence/%02d", i), []ruleDef{
			{permissionType, []string{readAction}},
		})
	}

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}

	matches, err := engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 10 {
		t.Errorf("Expected 10 matches, got %d", len(matches))
	}
	// Equal ranks keep catalogue order.
	if matches[0].Policy.URI != "http://example.com/licence/00" {
		t.Errorf("Expected catalogue order, got %s first", matches[0].Policy.URI)
	}

	// maxResults <= 0 falls back to the default.
	matches, err = engine.FilterPolicies(ctx, desired, 0)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != DefaultMaxResults {
		t.Errorf("Expected %d matches, got %d", DefaultMaxResults, len(matches))
	}
}

// TestEngine_SearchExact tests that the strict form drops policies with any
// extra rule.
func TestEngine_SearchExact(t *testing.T) {
	engine, st, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	addPolicy(t, st, "http://example.com/licence/exact", []ruleDef{
		{permissionType, []string{readAction}},
	})
	addPolicy(t, st, "http://example.com/licence/extra", []ruleDef{
		{permissionType, []string{readAction}},
		{dutyType, []string{attributionDuty}},
	})

	desired := []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}

	matches, err := engine.SearchExact(ctx, desired, 10)
	if err != nil {
		t.Fatalf("SearchExact failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 exact match, got %d", len(matches))
	}
	if matches[0].Policy.URI != "http://example.com/licence/exact" {
		t.Errorf("Expected the exact policy, got %s", matches[0].Policy.URI)
	}

	// The looser filter returns both.
	matches, err = engine.FilterPolicies(ctx, desired, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 filtered matches, got %d", len(matches))
	}
}

// TestEngine_EmptyCatalog tests that no results is a valid outcome, not an
// error.
func TestEngine_EmptyCatalog(t *testing.T) {
	engine, _, cleanup := newTestEngine(t)
	defer cleanup()

	matches, err := engine.FilterPolicies(context.Background(), []DesiredRule{
		{TypeURI: permissionType, ActionURIs: []string{readAction}},
	}, 10)
	if err != nil {
		t.Fatalf("FilterPolicies failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}
