package main

import (
	"context"
	"fmt"
	"strings"

	"licentia-hq/licentia/pkg/catalog"
	"licentia-hq/licentia/pkg/catalog/assembler"
	"licentia-hq/licentia/pkg/catalog/store"
)

// seedLicence describes one bundled licence. The policy URI is minted
// under the configured base URI from Slug; rule URIs are minted by the
// assembler.
type seedLicence struct {
	Slug       string
	Attributes map[string]string
	Rules      []seedRule
}

type seedRule struct {
	Type    string
	Actions []string
}

const (
	ccLicenseType   = "http://creativecommons.org/ns#License"
	statusSubmitted = "http://dd.eionet.europa.eu/vocabulary/datadictionary/status/submitted"
)

// bundledLicences holds the licences loaded by `licentia db seed`.
var bundledLicences = []seedLicence{
	{
		Slug: "disco",
		Attributes: map[string]string{
			"type":   ccLicenseType,
			"status": statusSubmitted,
			"label":  "Discovery Read Only License",
			"comment": "This license only allows for one thing: the assignee may read the " +
				"asset for which this license is assigned. The intent is for the assignee " +
				"to be able to assess the asset for purposes such as evaluation for future " +
				"use but nothing more: no on-publishing, no distribution.",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Read"}},
		},
	},
	{
		Slug: "cc-by-4.0",
		Attributes: map[string]string{
			"type":       ccLicenseType,
			"status":     statusSubmitted,
			"label":      "Creative Commons CC-BY 4.0",
			"legal_code": "https://creativecommons.org/licenses/by/4.0/legalcode",
			"see_also":   "https://creativecommons.org/licenses/by/4.0/",
			"creator":    "https://creativecommons.org",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce", "Derivative Works"}},
			{Type: "Duty", Actions: []string{"Attribution", "Notice"}},
		},
	},
	{
		Slug: "cc-by-nd-4.0",
		Attributes: map[string]string{
			"type":       ccLicenseType,
			"status":     statusSubmitted,
			"label":      "Creative Commons CC-BY-ND 4.0",
			"legal_code": "https://creativecommons.org/licenses/by-nd/4.0/legalcode",
			"see_also":   "https://creativecommons.org/licenses/by-nd/4.0/",
			"creator":    "https://creativecommons.org",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce"}},
			{Type: "Duty", Actions: []string{"Attribution", "Notice", "Derivative Works"}},
		},
	},
	{
		Slug: "cc-by-nc-nd-4.0",
		Attributes: map[string]string{
			"type":       ccLicenseType,
			"status":     statusSubmitted,
			"label":      "Creative Commons CC-BY-NC-ND 4.0",
			"legal_code": "https://creativecommons.org/licenses/by-nc-nd/4.0/legalcode",
			"see_also":   "https://creativecommons.org/licenses/by-nc-nd/4.0/",
			"creator":    "https://creativecommons.org",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduction"}},
			{Type: "Duty", Actions: []string{"Attribution", "Notice"}},
			{Type: "Prohibition", Actions: []string{"Commercial Use", "Derivative Works"}},
		},
	},
	{
		Slug: "cc-by-sa-4.0",
		Attributes: map[string]string{
			"type":       ccLicenseType,
			"status":     statusSubmitted,
			"label":      "Creative Commons CC-BY-SA 4.0",
			"legal_code": "https://creativecommons.org/licenses/by-sa/4.0/legalcode",
			"see_also":   "http://creativecommons.org/licenses/by-sa/4.0/",
			"creator":    "https://creativecommons.org",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce", "Derivative Works"}},
			{Type: "Duty", Actions: []string{"Attribution", "Share Alike", "Notice"}},
		},
	},
	{
		Slug: "cc-zero-1.0",
		Attributes: map[string]string{
			"type":        ccLicenseType,
			"status":      statusSubmitted,
			"label":       "Creative Commons CC0",
			"legal_code":  "https://creativecommons.org/publicdomain/zero/1.0/legalcode",
			"see_also":    "http://creativecommons.org/publicdomain/zero/1.0/",
			"creator":     "https://creativecommons.org",
			"has_version": "1.0",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce", "Derivative Works"}},
		},
	},
	{
		Slug: "gpl-3.0",
		Attributes: map[string]string{
			"type":        ccLicenseType,
			"status":      statusSubmitted,
			"label":       "GNU General Public License v3.0",
			"legal_code":  "http://gnu.org/licenses/gpl-3.0.html",
			"see_also":    "http://gnu.org/licenses/gpl-3.0.html",
			"creator":     "http://fsf.org/",
			"has_version": "1.0",
			"language":    "http://www.lexvo.org/page/iso639-3/eng",
			"logo":        "http://www.gnu.org/graphics/gplv3-127x51.png",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce", "Derive"}},
			{Type: "Duty", Actions: []string{"Notice", "Source Code"}},
		},
	},
	{
		Slug: "mit",
		Attributes: map[string]string{
			"type":       ccLicenseType,
			"status":     statusSubmitted,
			"label":      "MIT License",
			"legal_code": "http://opensource.org/licenses/MIT",
			"language":   "http://www.lexvo.org/page/iso639-3/eng",
		},
		Rules: []seedRule{
			{Type: "Permission", Actions: []string{"Distribute", "Reproduce", "Derive", "Sell"}},
		},
	},
}

// seedLicences loads every bundled licence not already present, returning
// how many were created and how many were skipped.
func seedLicences(ctx context.Context, st *store.Store, baseURI string) (created, skipped int, err error) {
	asm := assembler.New(st, baseURI)
	base := strings.TrimSuffix(baseURI, "/")

	for _, lic := range bundledLicences {
		uri := fmt.Sprintf("%s/licence/%s", base, lic.Slug)

		exists, err := st.PolicyExists(ctx, uri)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		specs := make([]catalog.RuleSpec, 0, len(lic.Rules))
		for _, r := range lic.Rules {
			actions := make([]catalog.Identifier, 0, len(r.Actions))
			for _, a := range r.Actions {
				actions = append(actions, catalog.ByLabel(a))
			}
			specs = append(specs, catalog.RuleSpec{
				Type:    catalog.ByLabel(r.Type),
				Actions: actions,
			})
		}

		if err := asm.CreatePolicyWithRules(ctx, uri, lic.Attributes, specs); err != nil {
			return created, skipped, fmt.Errorf("failed to seed %s: %w", lic.Slug, err)
		}
		created++
	}
	return created, skipped, nil
}
