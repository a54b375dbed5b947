package catalog

import "testing"

// TestIsValidURI tests the URI shape check against the forms the catalogue
// stores.
func TestIsValidURI(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"http://example.com/licence/1", true},
		{"https://creativecommons.org/licenses/by/4.0/", true},
		{"urn:uuid:6e8bc430-9c3a-11d9-9669-0800200c9a66", true},
		{"file:///tmp/x", true},
		{"Read", false},
		{"not a uri", false},
		{"http://example.com/with space", false},
		// A URI-shaped prefix followed by whitespace is a label, not a URI.
		{"a:b c", false},
		{"", false},
		{"://missing-scheme", false},
	}

	for _, tt := range tests {
		if got := IsValidURI(tt.input); got != tt.want {
			t.Errorf("IsValidURI(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// TestParseIdentifier tests URI/label classification.
func TestParseIdentifier(t *testing.T) {
	id := ParseIdentifier("http://www.w3.org/ns/odrl/2/read")
	if id.Kind != KindURI {
		t.Errorf("Expected URI kind, got %v", id.Kind)
	}

	id = ParseIdentifier("Derivative Works")
	if id.Kind != KindLabel {
		t.Errorf("Expected label kind, got %v", id.Kind)
	}
	if id.String() != "Derivative Works" {
		t.Errorf("Expected value to be preserved, got %q", id.String())
	}

	if !(Identifier{}).Zero() {
		t.Error("Expected zero identifier to report Zero")
	}
	if ByLabel("Read").Zero() {
		t.Error("Expected tagged identifier to not report Zero")
	}
}
