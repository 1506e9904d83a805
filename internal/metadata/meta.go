// Package metadata resolves inherited directory metadata and breadcrumbs for
// content pages and records them in a machine-readable sitemap.
//
// Each directory may hold a metadata declaration (.meta.yml by default) and a
// navigation declaration (.pages by default). A page inherits every metadata
// declaration from its own directory up to the filesystem root, and gets one
// breadcrumb entry per titled directory between it and the content root.
package metadata

import (
	"encoding/json"
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Meta is an ordered mapping of metadata keys to scalar or list values.
// Key order follows declaration order and survives JSON encoding.
type Meta struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewMeta returns an empty mapping.
func NewMeta() *Meta {
	return &Meta{m: orderedmap.New[string, any]()}
}

func (m *Meta) init() {
	if m.m == nil {
		m.m = orderedmap.New[string, any]()
	}
}

// Set stores value under key. An existing key keeps its position.
func (m *Meta) Set(key string, value any) {
	m.init()
	m.m.Set(key, value)
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (any, bool) {
	if m == nil || m.m == nil {
		return nil, false
	}
	return m.m.Get(key)
}

// String returns the value under key when it is a string.
func (m *Meta) String(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

// Len reports the number of keys. A nil Meta is empty.
func (m *Meta) Len() int {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Len()
}

// All iterates over the entries in order.
func (m *Meta) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil || m.m == nil {
			return
		}
		for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Keys returns the keys in order.
func (m *Meta) Keys() []string {
	keys := make([]string, 0, m.Len())
	for k := range m.All() {
		keys = append(keys, k)
	}
	return keys
}

// Map copies the entries into a plain map, for templates.
func (m *Meta) Map() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy. List values are copied so appending to
// either side never aliases the other.
func (m *Meta) Clone() *Meta {
	out := NewMeta()
	for k, v := range m.All() {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		}
		out.Set(k, v)
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in key order.
func (m *Meta) MarshalJSON() ([]byte, error) {
	if m.Len() == 0 {
		return []byte("{}"), nil
	}
	return m.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (m *Meta) UnmarshalJSON(data []byte) error {
	m.m = orderedmap.New[string, any]()
	return json.Unmarshal(data, m.m)
}

// UnmarshalYAML decodes a YAML mapping, keeping key order. A null document
// decodes to an empty mapping; any other non-mapping node is an error.
func (m *Meta) UnmarshalYAML(node *yaml.Node) error {
	m.m = orderedmap.New[string, any]()

	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, node.Tag)
	}
	return m.decodeMapping(node)
}

// decodeMapping sets every pair of a mapping node. Merge keys (<<) are
// applied after the explicit pairs and never override them.
func (m *Meta) decodeMapping(node *yaml.Node) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == "<<" && keyNode.ShortTag() == "!!merge" {
			merges = append(merges, valueNode)
			continue
		}
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return fmt.Errorf("line %d: key %q: %w", valueNode.Line, keyNode.Value, err)
		}
		m.m.Set(keyNode.Value, stringKeys(value))
	}
	for _, merge := range merges {
		if err := m.mergeNode(merge); err != nil {
			return err
		}
	}
	return nil
}

// mergeNode applies the value of a merge key: a mapping or a sequence of
// mappings, possibly through aliases. Earlier sources win over later ones.
func (m *Meta) mergeNode(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		src := NewMeta()
		if err := src.decodeMapping(node); err != nil {
			return err
		}
		for k, v := range src.All() {
			if _, exists := m.m.Get(k); !exists {
				m.m.Set(k, v)
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := m.mergeNode(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value must be a mapping", node.Line)
	}
}

// stringKeys rewrites nested mappings decoded with non-string keys so the
// value can be encoded as JSON.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range v {
			v[k] = stringKeys(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = stringKeys(val)
		}
		return v
	default:
		return v
	}
}

// MarshalYAML encodes the mapping as a YAML mapping in key order.
func (m *Meta) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.All() {
		var value yaml.Node
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &value)
	}
	return node, nil
}

// Merge combines a more specific mapping with a less specific one and
// returns the result as a new Meta; neither input is modified.
//
// Keys from specific come first, in their order, followed by keys that only
// general has. When both sides hold a list under the same key the lists are
// concatenated with the specific entries first. Any other collision keeps
// the specific value.
func Merge(specific, general *Meta) *Meta {
	out := specific.Clone()
	for key, value := range general.All() {
		current, ok := out.Get(key)
		if !ok {
			if list, isList := value.([]any); isList {
				value = append([]any(nil), list...)
			}
			out.Set(key, value)
			continue
		}
		near, nearIsList := current.([]any)
		far, farIsList := value.([]any)
		if nearIsList && farIsList {
			out.Set(key, append(near, far...))
		}
	}
	return out
}
