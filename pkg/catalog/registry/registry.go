package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"licentia-hq/licentia/pkg/catalog"
)

//go:embed vocab.yaml
var vocabYAML []byte

// vocabFile is the on-disk shape of the vocabulary document.
type vocabFile struct {
	RuleTypes []catalog.RuleTypeRecord `yaml:"rule_types"`
	Actions   []catalog.ActionRecord   `yaml:"actions"`
}

// Registry serves read-only lookups of the fixed vocabulary: the permitted
// rule types and the permitted actions. It is built once at startup and
// never mutated afterwards, so lookups are safe for concurrent use.
type Registry struct {
	ruleTypes       []catalog.RuleTypeRecord
	actions         []catalog.ActionRecord
	ruleTypeByURI   map[string]catalog.RuleTypeRecord
	ruleTypeByLabel map[string]catalog.RuleTypeRecord
	actionByURI     map[string]catalog.ActionRecord
	actionByLabel   map[string]catalog.ActionRecord
}

// Load parses the embedded vocabulary and builds the registry.
func Load() (*Registry, error) {
	return load(vocabYAML)
}

func load(data []byte) (*Registry, error) {
	var vf vocabFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(vf.RuleTypes) == 0 {
		return nil, fmt.Errorf("vocabulary defines no rule types")
	}
	if len(vf.Actions) == 0 {
		return nil, fmt.Errorf("vocabulary defines no actions")
	}

	r := &Registry{
		ruleTypes:       vf.RuleTypes,
		actions:         vf.Actions,
		ruleTypeByURI:   make(map[string]catalog.RuleTypeRecord, len(vf.RuleTypes)),
		ruleTypeByLabel: make(map[string]catalog.RuleTypeRecord, len(vf.RuleTypes)),
		actionByURI:     make(map[string]catalog.ActionRecord, len(vf.Actions)),
		actionByLabel:   make(map[string]catalog.ActionRecord, len(vf.Actions)),
	}

	for _, rt := range vf.RuleTypes {
		if rt.URI == "" || rt.Label == "" {
			return nil, fmt.Errorf("rule type entry missing uri or label: %+v", rt)
		}
		if _, ok := r.ruleTypeByURI[rt.URI]; ok {
			return nil, fmt.Errorf("duplicate rule type URI %s", rt.URI)
		}
		r.ruleTypeByURI[rt.URI] = rt
		r.ruleTypeByLabel[rt.Label] = rt
	}

	for _, a := range vf.Actions {
		if a.URI == "" || a.Label == "" {
			return nil, fmt.Errorf("action entry missing uri or label: %+v", a)
		}
		if _, ok := r.actionByURI[a.URI]; ok {
			return nil, fmt.Errorf("duplicate action URI %s", a.URI)
		}
		if _, ok := r.actionByLabel[a.Label]; ok {
			return nil, fmt.Errorf("duplicate action label %q", a.Label)
		}
		r.actionByURI[a.URI] = a
		r.actionByLabel[a.Label] = a
	}

	return r, nil
}

// PermittedRuleTypes returns the permitted rule types in vocabulary order.
// Callers must not modify the returned slice.
func (r *Registry) PermittedRuleTypes() []catalog.RuleTypeRecord {
	return r.ruleTypes
}

// RuleTypeExists reports whether uri is a permitted rule type.
func (r *Registry) RuleTypeExists(uri string) bool {
	_, ok := r.ruleTypeByURI[uri]
	return ok
}

// RuleTypeByURI resolves a rule type by URI.
func (r *Registry) RuleTypeByURI(uri string) (catalog.RuleTypeRecord, error) {
	rt, ok := r.ruleTypeByURI[uri]
	if !ok {
		return catalog.RuleTypeRecord{}, catalog.NewInvalidRuleTypeError(uri)
	}
	return rt, nil
}

// RuleTypeByLabel resolves a rule type by its label, e.g. "Permission".
func (r *Registry) RuleTypeByLabel(label string) (catalog.RuleTypeRecord, error) {
	rt, ok := r.ruleTypeByLabel[label]
	if !ok {
		return catalog.RuleTypeRecord{}, catalog.NewInvalidRuleTypeError(label)
	}
	return rt, nil
}

// Actions returns all permitted actions in vocabulary order. Callers must
// not modify the returned slice.
func (r *Registry) Actions() []catalog.ActionRecord {
	return r.actions
}

// ActionExists reports whether uri is a permitted action.
func (r *Registry) ActionExists(uri string) bool {
	_, ok := r.actionByURI[uri]
	return ok
}

// ActionByURI resolves an action by URI.
func (r *Registry) ActionByURI(uri string) (catalog.ActionRecord, error) {
	a, ok := r.actionByURI[uri]
	if !ok {
		return catalog.ActionRecord{}, catalog.NewNotFoundError(catalog.EntityAction, uri)
	}
	return a, nil
}

// ActionByLabel resolves an action by its unique label, e.g. "Read".
func (r *Registry) ActionByLabel(label string) (catalog.ActionRecord, error) {
	a, ok := r.actionByLabel[label]
	if !ok {
		return catalog.ActionRecord{}, catalog.NewNotFoundError(catalog.EntityAction, label)
	}
	return a, nil
}

// ResolveRuleType resolves a tagged identifier to a rule type record.
func (r *Registry) ResolveRuleType(id catalog.Identifier) (catalog.RuleTypeRecord, error) {
	switch id.Kind {
	case catalog.KindURI:
		return r.RuleTypeByURI(id.Value)
	case catalog.KindLabel:
		return r.RuleTypeByLabel(id.Value)
	default:
		return catalog.RuleTypeRecord{}, catalog.NewInvalidRuleTypeError(id.Value)
	}
}

// ResolveAction resolves a tagged identifier to an action record.
func (r *Registry) ResolveAction(id catalog.Identifier) (catalog.ActionRecord, error) {
	switch id.Kind {
	case catalog.KindURI:
		return r.ActionByURI(id.Value)
	case catalog.KindLabel:
		return r.ActionByLabel(id.Value)
	default:
		return catalog.ActionRecord{}, catalog.NewNotFoundError(catalog.EntityAction, id.Value)
	}
}
