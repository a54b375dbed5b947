// Package catalog defines the domain types and error taxonomy shared by the
// licence catalogue components: the relational store, the vocabulary
// registry, the policy assembler, and the match engine.
//
// # Entities
//
// The catalogue holds five kinds of entities, all keyed by opaque URI
// strings:
//
//   - Policy - a licence: a named bundle of rules plus descriptive metadata
//   - Rule - a single permission, duty, or prohibition carrying a set of
//     actions and optional assignor/assignee parties
//   - Action - a fixed-vocabulary verb a rule grants, requires, or forbids
//   - Party - a person or organisation referenced by rules
//   - Asset - a resource covered by exactly one policy
//
// Rules are many-to-many reusable across policies: unlinking a rule from a
// policy never deletes it, and a rule can only be deleted once no policy
// references it. Assets are the opposite: each belongs to one policy and is
// removed with it.
//
// # Errors
//
// Every failure mode is a typed error value (DuplicateError, NotFoundError,
// InvalidRuleTypeError, InvalidAttributeError, AlreadyLinkedError,
// InUseError, ValidationError). Callers distinguish cases with errors.As:
//
//	err := store.CreatePolicy(ctx, uri)
//	var dup *catalog.DuplicateError
//	if errors.As(err, &dup) {
//	    // a policy with that URI already exists
//	}
package catalog
