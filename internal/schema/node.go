package schema

import (
	"bytes"
	"encoding/json"
)

// MasterName is the title of the synthetic root model that references every
// registered model. It never appears in generated TypeScript output.
const MasterName = "_Master_"

// Node is a JSON Schema fragment. The same shape is used for the master
// document, model definitions, and nested property schemas.
type Node struct {
	Ref         string           `json:"$ref,omitempty"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Type        string           `json:"type,omitempty"`
	Format      string           `json:"format,omitempty"`
	Enum        []string         `json:"enum,omitempty"`
	Properties  map[string]*Node `json:"properties,omitempty"`
	Required    []string         `json:"required,omitempty"`
	Items       any              `json:"items,omitempty"`
	PrefixItems []*Node          `json:"prefixItems,omitempty"`
	AnyOf       []*Node          `json:"anyOf,omitempty"`
	// AdditionalProperties is a *bool or *Node; nil means unconstrained.
	AdditionalProperties any              `json:"additionalProperties,omitempty"`
	Defs                 map[string]*Node `json:"$defs,omitempty"`
}

// MarshalIndent renders the document as stable, human-diffable JSON.
func (n *Node) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ItemsNode returns the items schema when it holds a single fragment.
func (n *Node) ItemsNode() (*Node, bool) {
	item, ok := n.Items.(*Node)
	return item, ok && item != nil
}

// ItemsList returns the items schema when it holds a tuple-style list.
func (n *Node) ItemsList() ([]*Node, bool) {
	list, ok := n.Items.([]*Node)
	return list, ok && len(list) > 0
}

func boolSchema(value bool) any {
	v := value
	return &v
}
