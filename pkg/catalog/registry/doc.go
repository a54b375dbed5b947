// Package registry provides read-only lookups of the catalogue's fixed
// vocabulary: the permitted ODRL rule types (permission, prohibition, duty)
// and the permitted ODRL/Creative Commons actions.
//
// The vocabulary is embedded in the binary as YAML and parsed once at
// startup. Request-time code paths only ever read it; the store seeds the
// RULE_TYPE and ACTION tables from it when the database is initialized.
package registry
