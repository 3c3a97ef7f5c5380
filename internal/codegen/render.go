package codegen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/forma-dev/forma/internal/manifest"
)

// Header is written at the top of every generated file and doubles as the
// marker that tells stale-file cleanup which files we own.
const Header = "// Generated by forma. Do not edit by hand."

// renderJob carries everything needed to render one root component.
type renderJob struct {
	manifest   *manifest.Manifest
	root       *manifest.Component
	name       string
	typescript bool
}

// propBinding is a prop-kind property collected from a component subtree.
type propBinding struct {
	name     string
	def      any
	declared bool // has an explicit default
}

// stateBinding is a state-kind property collected from a component subtree.
type stateBinding struct {
	name    string
	initial any
}

// componentName derives a PascalCase identifier from a display name.
// "page header" becomes "PageHeader"; names with no usable characters fall
// back to "Component".
func componentName(displayName string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range displayName {
		switch {
		case unicode.IsLetter(r):
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		case unicode.IsDigit(r):
			if b.Len() == 0 {
				continue
			}
			b.WriteRune(r)
			upperNext = true
		default:
			upperNext = true
		}
	}
	if b.Len() == 0 {
		return "Component"
	}
	return b.String()
}

// renderRoot renders a root component and its subtree as one source file.
func renderRoot(job renderJob) (string, error) {
	props, states := collectBindings(job.manifest, job.root)

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	b.WriteString("import React from 'react';\n\n")

	if job.typescript && len(props) > 0 {
		writePropsInterface(&b, job.name, props)
	}

	b.WriteString("export function ")
	b.WriteString(job.name)
	b.WriteString("(")
	writeParams(&b, job.name, props, job.typescript)
	b.WriteString(") {\n")

	for _, st := range states {
		fmt.Fprintf(&b, "  const [%s, set%s] = React.useState(%s);\n",
			st.name, upperFirst(st.name), jsLiteral(st.initial))
	}
	if len(states) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("  return (\n")
	if err := writeElement(&b, job.manifest, job.root, 2); err != nil {
		return "", err
	}
	b.WriteString("  );\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "export default %s;\n", job.name)

	return b.String(), nil
}

// collectBindings gathers prop and state bindings from the whole subtree.
// Nested components render inline, so their bindings surface on the root.
func collectBindings(m *manifest.Manifest, root *manifest.Component) ([]propBinding, []stateBinding) {
	propsByName := map[string]propBinding{}
	statesByName := map[string]stateBinding{}

	var walk func(c *manifest.Component)
	walk = func(c *manifest.Component) {
		for key, pv := range c.Properties {
			switch pv.Kind {
			case manifest.PropertyProp:
				name := pv.Name
				if name == "" {
					name = key
				}
				if _, seen := propsByName[name]; !seen {
					propsByName[name] = propBinding{name: name, def: pv.Default, declared: pv.Default != nil}
				}
			case manifest.PropertyState:
				name := pv.Name
				if name == "" {
					name = key
				}
				if _, seen := statesByName[name]; !seen {
					statesByName[name] = stateBinding{name: name, initial: pv.Default}
				}
			}
		}
		for _, childID := range c.Children {
			if child, ok := m.Components[childID]; ok {
				walk(child)
			}
		}
	}
	walk(root)

	props := make([]propBinding, 0, len(propsByName))
	for _, p := range propsByName {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].name < props[j].name })

	states := make([]stateBinding, 0, len(statesByName))
	for _, s := range statesByName {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].name < states[j].name })

	return props, states
}

func writePropsInterface(b *strings.Builder, name string, props []propBinding) {
	fmt.Fprintf(b, "export interface %sProps {\n", name)
	for _, p := range props {
		fmt.Fprintf(b, "  %s?: %s;\n", p.name, tsType(p.def))
	}
	b.WriteString("}\n\n")
}

func writeParams(b *strings.Builder, name string, props []propBinding, typescript bool) {
	if len(props) == 0 {
		return
	}
	b.WriteString("{ ")
	for i, p := range props {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.name)
		if p.declared {
			b.WriteString(" = ")
			b.WriteString(jsLiteral(p.def))
		}
	}
	b.WriteString(" }")
	if typescript {
		fmt.Fprintf(b, ": %sProps", name)
	}
}

// writeElement renders a component and its children as JSX, indented by
// depth levels of two spaces.
func writeElement(b *strings.Builder, m *manifest.Manifest, c *manifest.Component, depth int) error {
	indent := strings.Repeat("  ", depth)
	tag := c.Type
	if tag == "" {
		tag = "div"
	}

	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(tag)

	if attr := classNameAttr(c.Styling); attr != "" {
		b.WriteString(" ")
		b.WriteString(attr)
	}
	if attr := styleAttr(c.Styling.Custom); attr != "" {
		b.WriteString(" ")
		b.WriteString(attr)
	}
	for _, attr := range propertyAttrs(c.Properties) {
		b.WriteString(" ")
		b.WriteString(attr)
	}

	if len(c.Children) == 0 {
		b.WriteString(" />\n")
		return nil
	}

	b.WriteString(">\n")
	for _, childID := range c.Children {
		child, ok := m.Components[childID]
		if !ok {
			return fmt.Errorf("component %s references missing child %s", c.ID, childID)
		}
		if err := writeElement(b, m, child, depth+1); err != nil {
			return err
		}
	}
	b.WriteString(indent)
	fmt.Fprintf(b, "</%s>\n", tag)
	return nil
}

// classNameAttr builds the className attribute. Conditional styles produce
// a template literal so the condition is evaluated at runtime.
func classNameAttr(s manifest.Styling) string {
	base := strings.Join(s.BaseClasses, " ")
	if len(s.Conditional) == 0 {
		if base == "" {
			return ""
		}
		return fmt.Sprintf("className=%s", jsString(base))
	}

	var b strings.Builder
	b.WriteString("className={`")
	b.WriteString(base)
	for _, cond := range s.Conditional {
		fmt.Fprintf(&b, " ${%s ? '%s' : ''}", cond.Condition, strings.Join(cond.Classes, " "))
	}
	b.WriteString("`}")
	return b.String()
}

// styleAttr renders custom styles as an inline style object.
func styleAttr(custom map[string]string) string {
	if len(custom) == 0 {
		return ""
	}
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("style={{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: '%s'", cssProperty(k), custom[k])
	}
	b.WriteString(" }}")
	return b.String()
}

// propertyAttrs renders properties as JSX attributes, sorted by name.
func propertyAttrs(props map[string]manifest.PropertyValue) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]string, 0, len(keys))
	for _, key := range keys {
		pv := props[key]
		switch pv.Kind {
		case manifest.PropertyStatic:
			if s, ok := pv.Value.(string); ok {
				attrs = append(attrs, fmt.Sprintf("%s=%s", key, jsString(s)))
			} else {
				attrs = append(attrs, fmt.Sprintf("%s={%s}", key, jsLiteral(pv.Value)))
			}
		case manifest.PropertyProp:
			name := pv.Name
			if name == "" {
				name = key
			}
			attrs = append(attrs, fmt.Sprintf("%s={%s}", key, name))
		case manifest.PropertyExpression:
			attrs = append(attrs, fmt.Sprintf("%s={%s}", key, pv.Expression))
		case manifest.PropertyState:
			name := pv.Name
			if name == "" {
				name = key
			}
			attrs = append(attrs, fmt.Sprintf("%s={%s}", key, name))
		}
	}
	return attrs
}

// jsLiteral renders a Go value as a JavaScript literal. Values come from
// JSON, so strings, bools, and float64 cover the common cases.
func jsLiteral(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// tsType infers a TypeScript annotation from a default value.
func tsType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	default:
		return "any"
	}
}

// cssProperty converts kebab-case CSS names to the camelCase React expects.
func cssProperty(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = upperFirst(parts[i])
	}
	return strings.Join(parts, "")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
