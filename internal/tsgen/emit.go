package tsgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"loom/internal/schema"
)

// Banner is prepended to generated files so reviewers know not to edit them.
const Banner = `/* tslint:disable */
/* eslint-disable */
/**
/* This file was automatically generated from backend data models.
/* Do not modify it by hand - just update the Go models and re-run 'loom gen types'.
*/

`

// Options controls TypeScript emission.
type Options struct {
	// Banner prepends the do-not-edit comment.
	Banner bool
}

// Emit renders the master document's definitions as TypeScript. The synthetic
// master model itself never appears in the output.
func Emit(master *schema.Node, opts Options) (string, error) {
	if master == nil || len(master.Defs) == 0 {
		return "", fmt.Errorf("emit typescript: master document has no definitions")
	}

	names := make([]string, 0, len(master.Defs))
	for name := range master.Defs {
		if name == schema.MasterName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	if opts.Banner {
		b.WriteString(Banner)
	}

	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		def := master.Defs[name]
		emitDefinition(&b, interfaceName(name), def)
	}
	return b.String(), nil
}

func emitDefinition(b *strings.Builder, name string, def *schema.Node) {
	writeDocComment(b, def.Description)
	if len(def.Enum) > 0 {
		b.WriteString("export type ")
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(literalUnion(def.Enum))
		b.WriteString(";\n")
		return
	}
	if def.Type != "object" {
		b.WriteString("export type ")
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(typeRef(def))
		b.WriteString(";\n")
		return
	}

	b.WriteString("export interface ")
	b.WriteString(name)
	b.WriteString(" {\n")

	required := make(map[string]struct{}, len(def.Required))
	for _, field := range def.Required {
		required[field] = struct{}{}
	}

	fields := make([]string, 0, len(def.Properties))
	for field := range def.Properties {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		prop := def.Properties[field]
		if prop.Description != "" {
			b.WriteString("  /** ")
			b.WriteString(prop.Description)
			b.WriteString(" */\n")
		}
		b.WriteString("  ")
		b.WriteString(memberName(field))
		if _, ok := required[field]; !ok {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(typeRef(prop))
		b.WriteString(";\n")
	}
	if open, ok := def.AdditionalProperties.(*bool); (ok && *open) || def.AdditionalProperties == nil {
		b.WriteString("  [k: string]: unknown;\n")
	}
	b.WriteString("}\n")
}

func typeRef(node *schema.Node) string {
	if node == nil {
		return "unknown"
	}
	if node.Ref != "" {
		parts := strings.Split(node.Ref, "/")
		return interfaceName(parts[len(parts)-1])
	}
	if len(node.AnyOf) > 0 {
		variants := make([]string, 0, len(node.AnyOf))
		for _, variant := range node.AnyOf {
			variants = append(variants, typeRef(variant))
		}
		return strings.Join(dedupe(variants), " | ")
	}
	if len(node.Enum) > 0 {
		return literalUnion(node.Enum)
	}

	switch node.Type {
	case "string":
		return "string"
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	case "null":
		return "null"
	case "array":
		return arrayRef(node)
	case "object":
		return objectRef(node)
	default:
		return "unknown"
	}
}

func arrayRef(node *schema.Node) string {
	if list, ok := node.ItemsList(); ok {
		variants := make([]string, 0, len(list))
		for _, item := range list {
			variants = append(variants, typeRef(item))
		}
		variants = dedupe(variants)
		if len(variants) == 1 {
			return elementRef(variants[0]) + "[]"
		}
		return "(" + strings.Join(variants, " | ") + ")[]"
	}
	if item, ok := node.ItemsNode(); ok {
		return elementRef(typeRef(item)) + "[]"
	}
	return "unknown[]"
}

func objectRef(node *schema.Node) string {
	switch extra := node.AdditionalProperties.(type) {
	case *schema.Node:
		return "{ [k: string]: " + typeRef(extra) + " }"
	case *bool:
		if *extra {
			return "{ [k: string]: unknown }"
		}
	}
	return "{ [k: string]: unknown }"
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func elementRef(ref string) string {
	if strings.Contains(ref, " | ") {
		return "(" + ref + ")"
	}
	return ref
}

func literalUnion(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, fmt.Sprintf("%q", value))
	}
	return strings.Join(quoted, " | ")
}

func writeDocComment(b *strings.Builder, description string) {
	if strings.TrimSpace(description) == "" {
		return
	}
	b.WriteString("/**\n * ")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n */\n")
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func memberName(field string) string {
	if identifierPattern.MatchString(field) {
		return field
	}
	return fmt.Sprintf("%q", field)
}

var titleCaser = cases.Title(language.English)

// interfaceName normalizes a schema title into a TypeScript type name.
// Names that are already mixed-case identifiers pass through untouched;
// titles with separators or uniform casing are collapsed to PascalCase.
func interfaceName(title string) string {
	parts := strings.FieldsFunc(title, func(r rune) bool {
		return !isAlphanumeric(r)
	})
	if len(parts) == 1 && hasMixedCase(parts[0]) {
		return parts[0]
	}
	var b strings.Builder
	for _, word := range parts {
		if hasMixedCase(word) {
			b.WriteString(word)
			continue
		}
		b.WriteString(titleCaser.String(strings.ToLower(word)))
	}
	if b.Len() == 0 {
		return "Unnamed"
	}
	return b.String()
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func hasMixedCase(word string) bool {
	var hasUpper, hasLower bool
	for _, r := range word {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		}
	}
	return hasUpper && hasLower
}
