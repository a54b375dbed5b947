package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"licentia-hq/licentia/pkg/catalog"
	"licentia-hq/licentia/pkg/catalog/store"
	"licentia-hq/licentia/pkg/telemetry/metrics"
)

// DefaultMaxResults bounds the result list when the caller does not.
const DefaultMaxResults = 10

// DesiredRule is one rule the caller wants a policy to guarantee: a rule
// type plus the actions it must cover.
type DesiredRule struct {
	// TypeURI is the required rule type (permission, prohibition, duty).
	TypeURI string

	// ActionURIs are the action URIs the caller wants. A stored rule
	// satisfies the desired rule when it has the same type and at least one
	// overlapping action.
	ActionURIs []string
}

// Match is one ranked result: a policy, its fully resolved rules, and its
// rank. Rank counts the policy's extraneous rules - rules granting
// something the caller never asked for - so rank 0 is the closest,
// least-permissive match.
type Match struct {
	Policy catalog.PolicyRecord
	Rules  []catalog.RuleRecord
	Rank   int
}

// Engine scores the catalogue against a desired rule set. It only reads;
// an empty result list is a valid outcome, never an error.
type Engine struct {
	store   *store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a match engine reading from the given store. The metrics
// argument may be nil.
func New(st *store.Store, m *metrics.Metrics) *Engine {
	return &Engine{
		store:   st,
		metrics: m,
		logger:  slog.Default().With("component", "catalog.match"),
	}
}

// FilterPolicies ranks every stored policy against the desired rules.
//
// A policy missing any desired rule - one for which no policy rule of the
// same type shares any action - is dropped entirely: a policy that fails to
// grant something explicitly requested is never a usable match, whatever
// its score. Surviving policies are ranked by their count of extra rules,
// ascending, ties kept in catalogue listing order, and the list is
// truncated to maxResults (DefaultMaxResults when maxResults <= 0).
//
// An empty desired set matches every policy at rank 0.
func (e *Engine) FilterPolicies(ctx context.Context, desired []DesiredRule, maxResults int) ([]Match, error) {
	return e.run(ctx, "filter", desired, maxResults, false)
}

// SearchExact is the strict form of FilterPolicies: it returns only
// policies that satisfy every desired rule and grant nothing beyond them
// (rank 0).
func (e *Engine) SearchExact(ctx context.Context, desired []DesiredRule, maxResults int) ([]Match, error) {
	return e.run(ctx, "exact", desired, maxResults, true)
}

func (e *Engine) run(ctx context.Context, mode string, desired []DesiredRule, maxResults int, exact bool) ([]Match, error) {
	start := time.Now()
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	candidates, catalogSize, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, c := range candidates {
		extra, missing := score(c.Rules, desired)
		if missing {
			continue
		}
		if exact && extra > 0 {
			continue
		}
		matches = append(matches, Match{Policy: c.Policy, Rules: c.Rules, Rank: extra})
	}

	// Ascending by rank; SliceStable keeps ties in catalogue listing order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	e.metrics.RecordMatch(mode, time.Since(start), catalogSize, len(matches))
	e.logger.Debug("match query completed",
		"mode", mode,
		"desired_rules", len(desired),
		"catalog_size", catalogSize,
		"results", len(matches),
	)
	return matches, nil
}

// loadCatalog resolves every stored policy with its full rule graph, in
// catalogue listing order.
func (e *Engine) loadCatalog(ctx context.Context) ([]Match, int, error) {
	uris, err := e.store.GetAllPolicies(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list policies: %w", err)
	}

	candidates := make([]Match, 0, len(uris))
	for _, uri := range uris {
		policy, err := e.store.GetPolicy(ctx, uri)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load policy %s: %w", uri, err)
		}
		rules := make([]catalog.RuleRecord, 0, len(policy.RuleURIs))
		for _, ruleURI := range policy.RuleURIs {
			rule, err := e.store.GetRule(ctx, ruleURI)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to load rule %s: %w", ruleURI, err)
			}
			rules = append(rules, rule)
		}
		candidates = append(candidates, Match{Policy: policy, Rules: rules})
	}
	return candidates, len(uris), nil
}

// score compares a policy's rules with the desired set. It returns the
// count of extra rules (policy rules no desired rule asked for) and whether
// any desired rule is missing (no policy rule of the same type shares any
// action). With an empty desired set nothing can be missing and nothing
// counts as extra.
func score(rules []catalog.RuleRecord, desired []DesiredRule) (extra int, missing bool) {
	if len(desired) == 0 {
		return 0, false
	}

	for _, rule := range rules {
		if !satisfiesAny(rule, desired) {
			extra++
		}
	}

	for _, want := range desired {
		found := false
		for _, rule := range rules {
			if satisfies(rule, want) {
				found = true
				break
			}
		}
		if !found {
			return extra, true
		}
	}
	return extra, false
}

func satisfiesAny(rule catalog.RuleRecord, desired []DesiredRule) bool {
	for _, want := range desired {
		if satisfies(rule, want) {
			return true
		}
	}
	return false
}

// satisfies reports whether the stored rule covers the desired rule: same
// type, at least one overlapping action.
func satisfies(rule catalog.RuleRecord, want DesiredRule) bool {
	if rule.TypeURI != want.TypeURI {
		return false
	}
	for _, action := range rule.Actions {
		for _, wantURI := range want.ActionURIs {
			if action.URI == wantURI {
				return true
			}
		}
	}
	return false
}
