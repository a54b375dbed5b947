package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"licentia-hq/licentia/pkg/catalog"
	"licentia-hq/licentia/pkg/catalog/match"
	"licentia-hq/licentia/pkg/catalog/registry"
)

var (
	matchFile  string
	matchExact bool
	matchMax   int
)

// matchRequest is the on-disk shape of a match query: a list of desired
// rules, each a rule type plus the actions it must cover. Types and actions
// may be given by URI or vocabulary label.
type matchRequest struct {
	Rules []struct {
		Type    string   `yaml:"type"`
		Actions []string `yaml:"actions"`
	} `yaml:"rules"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank catalogued policies against a desired rule set",
	Long: `Reads a YAML request file describing the rules a policy must grant and
ranks the catalogue against it. Policies missing any requested rule are
dropped; the rest are ordered by how many extra rules they carry, fewest
first. With --exact only policies granting exactly the requested rules
are returned.

Request file example:

    rules:
      - type: Permission
        actions: [Read, Distribute]
      - type: Duty
        actions: [Attribution]
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		desired, err := loadMatchRequest(st.Registry(), matchFile)
		if err != nil {
			return err
		}

		maxResults := matchMax
		if maxResults <= 0 {
			maxResults = cfg.Catalog.MaxResults
		}

		engine := match.New(st, nil)
		ctx := cmd.Context()

		var results []match.Match
		if matchExact {
			results, err = engine.SearchExact(ctx, desired, maxResults)
		} else {
			results, err = engine.FilterPolicies(ctx, desired, maxResults)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "no matching policies")
			return nil
		}
		for i, m := range results {
			fmt.Fprintf(out, "%d. %s", i+1, m.Policy.URI)
			if m.Policy.Label != "" {
				fmt.Fprintf(out, " (%s)", m.Policy.Label)
			}
			fmt.Fprintf(out, "  extra rules: %d\n", m.Rank)
			for _, rule := range m.Rules {
				labels := make([]string, 0, len(rule.Actions))
				for _, a := range rule.Actions {
					labels = append(labels, a.Label)
				}
				fmt.Fprintf(out, "   %s: %v\n", rule.TypeLabel, labels)
			}
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchFile, "file", "f", "request.yaml", "match request file")
	matchCmd.Flags().BoolVar(&matchExact, "exact", false, "return only exact matches (no extra rules)")
	matchCmd.Flags().IntVar(&matchMax, "max", 0, "maximum results (defaults to the configured limit)")
	rootCmd.AddCommand(matchCmd)
}

// loadMatchRequest parses the request file and resolves every rule type and
// action reference against the vocabulary.
func loadMatchRequest(reg *registry.Registry, path string) ([]match.DesiredRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match request: %w", err)
	}

	var req matchRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse match request: %w", err)
	}
	if len(req.Rules) == 0 {
		return nil, fmt.Errorf("match request has no rules")
	}

	desired := make([]match.DesiredRule, 0, len(req.Rules))
	for i, r := range req.Rules {
		ruleType, err := reg.ResolveRuleType(catalog.ParseIdentifier(r.Type))
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		want := match.DesiredRule{TypeURI: ruleType.URI}
		for _, a := range r.Actions {
			action, err := reg.ResolveAction(catalog.ParseIdentifier(a))
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			want.ActionURIs = append(want.ActionURIs, action.URI)
		}
		desired = append(desired, want)
	}
	return desired, nil
}
