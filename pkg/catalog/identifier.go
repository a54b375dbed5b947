package catalog

import "regexp"

// IdentifierKind discriminates the two ways upstream input names a
// vocabulary entry.
type IdentifierKind int

const (
	// KindURI means the identifier is a machine URI.
	KindURI IdentifierKind = iota + 1
	// KindLabel means the identifier is a human-readable label.
	KindLabel
)

// Identifier is a tagged URI-or-label reference to a rule type or action.
// The catalogue accepts either form from upstream input; the assembler
// resolves identifiers against the registry exactly once, keeping the
// store's contract strictly URI-based.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ByURI returns an Identifier naming a vocabulary entry by URI.
func ByURI(uri string) Identifier {
	return Identifier{Kind: KindURI, Value: uri}
}

// ByLabel returns an Identifier naming a vocabulary entry by label.
func ByLabel(label string) Identifier {
	return Identifier{Kind: KindLabel, Value: label}
}

// uriShape matches scheme-prefixed strings with no whitespace,
// e.g. "http://..." or "urn:...".
var uriShape = regexp.MustCompile(`^\w+:/?/?\S+$`)

// ParseIdentifier classifies free-form input as a URI or a label. Anything
// shaped like scheme:rest is treated as a URI, everything else as a label.
// Boundary code that cannot tag its input uses this once; resolved values
// never round-trip through it again.
func ParseIdentifier(s string) Identifier {
	if IsValidURI(s) {
		return ByURI(s)
	}
	return ByLabel(s)
}

// IsValidURI reports whether s has the shape of a URI.
func IsValidURI(s string) bool {
	return uriShape.MatchString(s)
}

// Zero reports whether the identifier is the zero value.
func (id Identifier) Zero() bool {
	return id.Kind == 0 && id.Value == ""
}

// String returns the underlying value.
func (id Identifier) String() string {
	return id.Value
}
