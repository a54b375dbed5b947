package catalog

import "fmt"

// DuplicateError reports that an entity with the given URI already exists.
type DuplicateError struct {
	Entity Entity // Entity kind ("policy", "rule", "party", ...)
	URI    string // URI that collided
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a %s with URI %s already exists", e.Entity, e.URI)
}

// NewDuplicateError creates a new DuplicateError.
func NewDuplicateError(entity Entity, uri string) *DuplicateError {
	return &DuplicateError{Entity: entity, URI: uri}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity Entity // Entity kind that was looked up
	URI    string // URI that did not resolve
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with URI %s does not exist", e.Entity, e.URI)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity Entity, uri string) *NotFoundError {
	return &NotFoundError{Entity: entity, URI: uri}
}

// InvalidRuleTypeError reports that a rule type is not in the permitted
// vocabulary.
type InvalidRuleTypeError struct {
	TypeURI string // Rule type that failed validation
}

// Error implements the error interface.
func (e *InvalidRuleTypeError) Error() string {
	return fmt.Sprintf("rule type %s is not permitted", e.TypeURI)
}

// NewInvalidRuleTypeError creates a new InvalidRuleTypeError.
func NewInvalidRuleTypeError(typeURI string) *InvalidRuleTypeError {
	return &InvalidRuleTypeError{TypeURI: typeURI}
}

// InvalidAttributeError reports that a policy attribute name is not one of
// the settable POLICY columns.
type InvalidAttributeError struct {
	Name string // Attribute name as supplied by the caller
}

// Error implements the error interface.
func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("attribute %q is not permitted", e.Name)
}

// NewInvalidAttributeError creates a new InvalidAttributeError.
func NewInvalidAttributeError(name string) *InvalidAttributeError {
	return &InvalidAttributeError{Name: name}
}

// AlreadyLinkedError reports that a join row is already present, e.g. adding
// a rule to a policy that already has it.
type AlreadyLinkedError struct {
	Subject Entity // Entity being linked
	URI     string // URI of the entity being linked
	Target  Entity // Entity being linked to
	Other   string // URI of the entity being linked to
}

// Error implements the error interface.
func (e *AlreadyLinkedError) Error() string {
	return fmt.Sprintf("%s %s is already linked to %s %s", e.Subject, e.URI, e.Target, e.Other)
}

// NewAlreadyLinkedError creates a new AlreadyLinkedError.
func NewAlreadyLinkedError(subject Entity, uri string, target Entity, other string) *AlreadyLinkedError {
	return &AlreadyLinkedError{Subject: subject, URI: uri, Target: target, Other: other}
}

// InUseError reports that a deletion was refused because dependents still
// reference the entity: a rule still linked to a policy, or a party still
// named as an assignor or assignee.
type InUseError struct {
	Entity Entity // Entity whose deletion was refused
	URI    string // URI of that entity
	Reason string // What still references it
}

// Error implements the error interface.
func (e *InUseError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %s", e.Entity, e.URI, e.Reason)
}

// NewInUseError creates a new InUseError.
func NewInUseError(entity Entity, uri, reason string) *InUseError {
	return &InUseError{Entity: entity, URI: uri, Reason: reason}
}

// ValidationError reports an aggregate failure during multi-step policy
// assembly. The whole transaction has been rolled back; Cause is the first
// underlying failure.
type ValidationError struct {
	PolicyURI string // Policy whose assembly failed
	Step      string // Assembly step that failed
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy %s not created [step=%s]: %v", e.PolicyURI, e.Step, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError.
func NewValidationError(policyURI, step string, cause error) *ValidationError {
	return &ValidationError{PolicyURI: policyURI, Step: step, Cause: cause}
}
