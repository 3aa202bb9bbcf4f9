package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"
)

var timeType = reflect.TypeOf(time.Time{})

// Generate produces the master document for every registered model except the
// excluded names. Definitions for nested structs and enums are pulled in
// automatically.
func (r *Registry) Generate(exclude ...string) (*Node, error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[strings.TrimSpace(name)] = struct{}{}
	}

	g := &generator{
		defs:       make(map[string]*Node),
		allowExtra: make(map[string]bool),
	}
	for _, entry := range r.entries {
		if entry.allowExtra {
			g.allowExtra[entry.name] = true
		}
	}

	master := &Node{
		Title:                MasterName,
		Type:                 "object",
		Properties:           make(map[string]*Node),
		AdditionalProperties: boolSchema(false),
	}

	selected := make([]modelEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if _, skip := excluded[entry.name]; skip {
			continue
		}
		selected = append(selected, entry)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].name < selected[j].name })
	if len(selected) == 0 {
		return nil, fmt.Errorf("generate schema: no models registered")
	}

	for _, entry := range selected {
		node, err := g.schemaFor(entry.typ)
		if err != nil {
			return nil, fmt.Errorf("generate schema for %s: %w", entry.name, err)
		}
		if node.Ref == "" {
			return nil, fmt.Errorf("generate schema for %s: expected definition reference", entry.name)
		}
		if entry.description != "" {
			if def := g.defs[entry.name]; def != nil {
				def.Description = entry.description
			}
		}
		master.Properties[entry.name] = node
		master.Required = append(master.Required, entry.name)
	}
	sort.Strings(master.Required)
	master.Defs = g.defs

	clean(master, g.allowExtra)
	return master, nil
}

type generator struct {
	defs       map[string]*Node
	allowExtra map[string]bool
}

func (g *generator) schemaFor(typ reflect.Type) (*Node, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == timeType {
		return &Node{Type: "string", Format: "date-time"}, nil
	}
	if typ.Implements(enumType) {
		return g.defineEnum(typ)
	}

	switch typ.Kind() {
	case reflect.String:
		return &Node{Type: "string"}, nil
	case reflect.Bool:
		return &Node{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Node{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &Node{Type: "number"}, nil
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			// []byte round-trips through JSON as a base64 string.
			return &Node{Type: "string"}, nil
		}
		item, err := g.schemaFor(typ.Elem())
		if err != nil {
			return nil, err
		}
		return &Node{Type: "array", Items: item}, nil
	case reflect.Array:
		item, err := g.schemaFor(typ.Elem())
		if err != nil {
			return nil, err
		}
		prefix := make([]*Node, typ.Len())
		for i := range prefix {
			clone := *item
			prefix[i] = &clone
		}
		return &Node{Type: "array", PrefixItems: prefix}, nil
	case reflect.Map:
		if typ.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key must be string, got %s", typ.Key())
		}
		if typ.Elem().Kind() == reflect.Interface {
			return &Node{Type: "object", AdditionalProperties: boolSchema(true)}, nil
		}
		value, err := g.schemaFor(typ.Elem())
		if err != nil {
			return nil, err
		}
		return &Node{Type: "object", AdditionalProperties: value}, nil
	case reflect.Interface:
		return &Node{}, nil
	case reflect.Struct:
		return g.defineStruct(typ)
	default:
		return nil, fmt.Errorf("unsupported kind %s", typ.Kind())
	}
}

func (g *generator) defineEnum(typ reflect.Type) (*Node, error) {
	if typ.Kind() != reflect.String {
		return nil, fmt.Errorf("enum %s must have string kind, got %s", typ, typ.Kind())
	}
	name := typ.Name()
	if name == "" {
		return nil, fmt.Errorf("anonymous enum types are not supported")
	}
	if _, exists := g.defs[name]; !exists {
		values := reflect.Zero(typ).Interface().(Enum).EnumValues()
		g.defs[name] = &Node{
			Title: name,
			Type:  "string",
			Enum:  append([]string{}, values...),
		}
	}
	return &Node{Ref: "#/$defs/" + name}, nil
}

func (g *generator) defineStruct(typ reflect.Type) (*Node, error) {
	name := typ.Name()
	if name == "" {
		return nil, fmt.Errorf("anonymous structs are not supported")
	}
	if _, exists := g.defs[name]; exists {
		return &Node{Ref: "#/$defs/" + name}, nil
	}

	def := &Node{
		Title:      name,
		Type:       "object",
		Properties: make(map[string]*Node),
	}
	// Placeholder first so self-referential models terminate.
	g.defs[name] = def

	if err := g.addFields(def, typ); err != nil {
		delete(g.defs, name)
		return nil, err
	}
	sort.Strings(def.Required)
	return &Node{Ref: "#/$defs/" + name}, nil
}

func (g *generator) addFields(def *Node, typ reflect.Type) error {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get("json") == "" {
			if err := g.addFields(def, field.Type); err != nil {
				return err
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}

		node, err := g.schemaFor(field.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if node.Ref == "" {
			node.Title = humanize(field.Name)
		}
		if description := strings.TrimSpace(field.Tag.Get("description")); description != "" {
			node.Description = description
		}
		def.Properties[name] = node

		optional := omitEmpty || field.Type.Kind() == reflect.Pointer
		if !optional {
			def.Required = append(def.Required, name)
		}
	}
	return nil
}

func parseJSONTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			name = parts[0]
		}
		for _, part := range parts[1:] {
			if part == "omitempty" {
				omitEmpty = true
			}
		}
	}
	return name, omitEmpty, false
}

// humanize converts a Go field name into the title JSON Schema generators
// conventionally attach to properties ("RunID" -> "Run ID").
func humanize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
