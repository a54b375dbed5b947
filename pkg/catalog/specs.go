package catalog

// RuleSpec describes one rule of a policy being assembled. The type and the
// actions are tagged identifiers: upstream input may name vocabulary entries
// by URI or by human label, and the assembler resolves both forms against
// the registry.
type RuleSpec struct {
	// URI of the rule to create. When empty the assembler mints one under
	// its base URI.
	URI string `yaml:"uri"`

	// Type of the rule, by URI or label (e.g. "Permission").
	Type Identifier `yaml:"-"`

	// Label is an optional human-readable rule label.
	Label string `yaml:"label"`

	// Actions the rule grants, requires, or forbids, each by URI or label.
	Actions []Identifier `yaml:"-"`

	// Assignors and Assignees are optional party descriptors. Unknown
	// parties are created on the fly.
	Assignors []PartySpec `yaml:"assignors"`
	Assignees []PartySpec `yaml:"assignees"`
}

// PartySpec describes a party referenced by a rule being assembled. Only
// the URI is required; label and comment are stored when the party does not
// exist yet and ignored when it does.
type PartySpec struct {
	URI     string `yaml:"uri"`
	Label   string `yaml:"label"`
	Comment string `yaml:"comment"`
}
