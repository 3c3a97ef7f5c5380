// Package manifest implements the component manifest tree engine: the
// in-memory data model for UI component trees plus the mutation, projection,
// and validation API that keeps the tree consistent for code generation.
package manifest

import "time"

// Category classifies what role a component plays in the tree.
type Category string

const (
	CategoryLayout  Category = "layout"
	CategoryContent Category = "content"
	CategoryForm    Category = "form"
	CategoryMedia   Category = "media"
	CategoryCustom  Category = "custom"
)

// PropertyKind discriminates property value variants on the wire.
type PropertyKind string

const (
	// PropertyStatic is a literal value baked into the generated source.
	PropertyStatic PropertyKind = "static"
	// PropertyProp exposes the value as a component prop with a default.
	PropertyProp PropertyKind = "prop"
	// PropertyExpression evaluates a source expression (schema level >= 2).
	PropertyExpression PropertyKind = "expression"
	// PropertyState binds the value to component state (schema level >= 3).
	PropertyState PropertyKind = "state"
)

// KindAllowed reports whether a property kind is permitted at the given
// schema level. Levels are cumulative: each tier keeps the kinds below it.
func KindAllowed(level int, kind PropertyKind) bool {
	switch kind {
	case PropertyStatic, PropertyProp:
		return level >= 1
	case PropertyExpression:
		return level >= 2
	case PropertyState:
		return level >= 3
	default:
		return false
	}
}

// PropertyValue is a tagged variant. Kind selects which of the remaining
// fields are meaningful.
type PropertyValue struct {
	Kind       PropertyKind `json:"kind"`
	Value      any          `json:"value,omitempty"`      // static: literal value
	Name       string       `json:"name,omitempty"`       // prop/state: exposed binding name
	Default    any          `json:"default,omitempty"`    // prop: value used when unset
	Expression string       `json:"expression,omitempty"` // expression: source snippet
}

// ConditionalStyle applies classes when a condition holds at runtime.
type ConditionalStyle struct {
	Condition string   `json:"condition"`
	Classes   []string `json:"classes"`
}

// Styling holds class-based styling for a component.
type Styling struct {
	BaseClasses []string           `json:"baseClasses"`
	Conditional []ConditionalStyle `json:"conditional,omitempty"`
	Custom      map[string]string  `json:"custom,omitempty"`
}

// ComponentMetadata tracks per-component provenance.
type ComponentMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    string    `json:"author"`
	Version   string    `json:"version"`
}

// Component is one node of the UI tree. Children records reference order by
// id; the components themselves live flat in the manifest's component table.
type Component struct {
	ID          string                   `json:"id"`
	DisplayName string                   `json:"displayName"`
	Type        string                   `json:"type"`
	Category    Category                 `json:"category"`
	Properties  map[string]PropertyValue `json:"properties"`
	Styling     Styling                  `json:"styling"`
	Children    []string                 `json:"children"`
	Metadata    ComponentMetadata        `json:"metadata"`
}

// copyProperties deep-copies a property map. Property values hold only
// scalars and strings, so a per-entry copy is sufficient.
func copyProperties(src map[string]PropertyValue) map[string]PropertyValue {
	dst := make(map[string]PropertyValue, len(src))
	for name, value := range src {
		dst[name] = value
	}
	return dst
}

// copyStyling deep-copies a styling block.
func copyStyling(src Styling) Styling {
	dst := Styling{
		BaseClasses: append([]string{}, src.BaseClasses...),
	}
	for _, cond := range src.Conditional {
		dst.Conditional = append(dst.Conditional, ConditionalStyle{
			Condition: cond.Condition,
			Classes:   append([]string{}, cond.Classes...),
		})
	}
	if src.Custom != nil {
		dst.Custom = make(map[string]string, len(src.Custom))
		for k, v := range src.Custom {
			dst.Custom[k] = v
		}
	}
	return dst
}
