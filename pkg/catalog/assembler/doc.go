// Package assembler builds complete policies as atomic units.
//
// A policy assembly creates the policy row, applies its attributes, and
// creates and links every rule with its actions and assignor/assignee
// parties, all inside one store write bracket. If any step fails - an
// unknown rule type, an unresolvable action label, an attribute outside the
// whitelist - the entire transaction is rolled back and the catalogue is
// left exactly as it was.
//
// The assembler is also the single point where URI-or-label ambiguity is
// resolved: upstream input may name rule types and actions either way, and
// identifiers are resolved against the registry exactly once here, keeping
// the store's contract strictly URI-based.
package assembler
