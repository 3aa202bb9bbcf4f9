package schema

// placeholderEnumDescription is the filler description some schema generators
// attach to enums without documentation. It adds noise to generated TypeScript
// and is removed during cleaning.
const placeholderEnumDescription = "An enumeration."

// clean normalizes the master document before emission:
//
//  1. Property titles are stripped. Left in place, each property would grow
//     its own named interface in the TypeScript output.
//  2. Tuple-style prefixItems are rewritten to plain items so downstream
//     converters that predate the prefixItems keyword emit arrays.
//  3. Placeholder enum descriptions are dropped.
//  4. Object definitions are closed (additionalProperties: false) unless the
//     model explicitly allows extras.
func clean(master *Node, allowExtra map[string]bool) {
	for name, def := range master.Defs {
		cleanDefinition(def)
		if def.Type == "object" && def.AdditionalProperties == nil && !allowExtra[name] {
			def.AdditionalProperties = boolSchema(false)
		}
	}
}

func cleanDefinition(def *Node) {
	if def.Description == placeholderEnumDescription && len(def.Enum) > 0 {
		def.Description = ""
	}
	for _, prop := range def.Properties {
		prop.Title = ""
		if len(prop.PrefixItems) > 0 {
			prop.Items = prop.PrefixItems
			prop.PrefixItems = nil
		}
	}
}
