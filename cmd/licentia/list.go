package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the policies in the catalogue",
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

		ctx := cmd.Context()
		uris, err := st.GetAllPolicies(ctx)
		if err != nil {
			return err
		}
		if len(uris) == 0 {
			fmt.Println("catalogue is empty")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "URI\tLABEL\tRULES")
		for _, uri := range uris {
			policy, err := st.GetPolicy(ctx, uri)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", policy.URI, policy.Label, len(policy.RuleURIs))
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <policy-uri>",
	Short: "Show one policy with its rules, actions, and parties",
	Args:  cobra.ExactArgs(1),
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

		ctx := cmd.Context()
		policy, err := st.GetPolicy(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "URI:     %s\n", policy.URI)
		printAttr(out, "Label", policy.Label)
		printAttr(out, "Type", policy.Type)
		printAttr(out, "Status", policy.Status)
		printAttr(out, "Creator", policy.Creator)
		printAttr(out, "Legal code", policy.LegalCode)
		printAttr(out, "See also", policy.SeeAlso)
		printAttr(out, "Same as", policy.SameAs)
		printAttr(out, "Jurisdiction", policy.Jurisdiction)
		printAttr(out, "Version", policy.HasVersion)
		printAttr(out, "Language", policy.Language)
		printAttr(out, "Logo", policy.Logo)
		printAttr(out, "Comment", policy.Comment)
		fmt.Fprintf(out, "Created: %s\n", policy.Created.Format("2006-01-02 15:04:05"))

		for _, ruleURI := range policy.RuleURIs {
			rule, err := st.GetRule(ctx, ruleURI)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s rule %s\n", rule.TypeLabel, rule.URI)
			for _, action := range rule.Actions {
				fmt.Fprintf(out, "  action: %s (%s)\n", action.Label, action.URI)
			}
			for _, p := range rule.Assignors {
				fmt.Fprintf(out, "  assignor: %s\n", p)
			}
			for _, p := range rule.Assignees {
				fmt.Fprintf(out, "  assignee: %s\n", p)
			}
		}
		return nil
	},
}

func printAttr(out io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", name, value)
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd)
}
