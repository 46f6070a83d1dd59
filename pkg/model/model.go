// Package model provides the dynamic data model used by cac-core
// applications. A Model wraps a nested mapping with preserved key order,
// converting nested maps into nested models, and serializes to JSON and
// YAML for data exchange and output formatting.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"
)

// Model is an ordered nested mapping with dynamic keys.
//
// Keys keep their insertion order. Nested maps are converted to nested
// *Model values, and lists of maps become lists of *Model, so callers
// can walk arbitrarily deep structures with Get.
type Model struct {
	data *orderedmap.OrderedMap
}

// Option configures model construction.
type Option func(*settings)

type settings struct {
	removeKeys map[string]bool
}

// WithoutKeys excludes the given keys (at every nesting level) when
// building a model.
//
// Parameters:
//   - keys: Key names to drop during construction
//
// Returns:
//   - Option: Construction option for New, FromJSON, and FromYAML
func WithoutKeys(keys ...string) Option {
	return func(s *settings) {
		for _, k := range keys {
			s.removeKeys[k] = true
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{removeKeys: make(map[string]bool)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a model from a plain map.
//
// Go map iteration order is not stable, so keys from a plain map are
// inserted in sorted order. Use FromJSON or FromYAML to preserve the
// order of a serialized document.
//
// Parameters:
//   - data: Source mapping; nested maps become nested models
//   - opts: Construction options such as WithoutKeys
//
// Returns:
//   - *Model: The constructed model, never nil
func New(data map[string]any, opts ...Option) *Model {
	s := newSettings(opts)
	m := empty()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s.removeKeys[k] {
			continue
		}
		m.data.Set(k, convertValue(data[k], s))
	}
	return m
}

// FromJSON creates a model from a JSON object, preserving the document's
// key order.
//
// Parameters:
//   - data: JSON object bytes
//   - opts: Construction options such as WithoutKeys
//
// Returns:
//   - *Model: The constructed model
//   - error: When the bytes are not a valid JSON object
func FromJSON(data []byte, opts ...Option) (*Model, error) {
	s := newSettings(opts)
	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return fromOrderedMap(om, s), nil
}

// FromYAML creates a model from a YAML mapping, preserving the document's
// key order.
//
// Parameters:
//   - data: YAML mapping bytes
//   - opts: Construction options such as WithoutKeys
//
// Returns:
//   - *Model: The constructed model
//   - error: When the bytes are not a valid YAML mapping
func FromYAML(data []byte, opts ...Option) (*Model, error) {
	s := newSettings(opts)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return empty(), nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid YAML: expected a mapping at the document root")
	}

	value, err := decodeYAMLNode(node, s)
	if err != nil {
		return nil, err
	}
	return value.(*Model), nil
}

func empty() *Model {
	return &Model{data: orderedmap.New()}
}

// convertValue converts raw values into their model representation:
// maps become *Model, slices are converted element-wise, everything else
// passes through unchanged.
func convertValue(v any, s *settings) any {
	switch val := v.(type) {
	case map[string]any:
		return fromPlainMap(val, s)
	case *Model:
		return val
	case orderedmap.OrderedMap:
		return fromOrderedMap(&val, s)
	case *orderedmap.OrderedMap:
		return fromOrderedMap(val, s)
	case []any:
		converted := make([]any, 0, len(val))
		for _, item := range val {
			converted = append(converted, convertValue(item, s))
		}
		return converted
	default:
		return v
	}
}

func fromPlainMap(data map[string]any, s *settings) *Model {
	m := empty()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s.removeKeys[k] {
			continue
		}
		m.data.Set(k, convertValue(data[k], s))
	}
	return m
}

func fromOrderedMap(om *orderedmap.OrderedMap, s *settings) *Model {
	m := empty()
	for _, k := range om.Keys() {
		if s.removeKeys[k] {
			continue
		}
		v, _ := om.Get(k)
		m.data.Set(k, convertValue(v, s))
	}
	return m
}

// decodeYAMLNode converts a yaml.Node tree into model values, keeping
// mapping key order as it appears in the document.
func decodeYAMLNode(node *yaml.Node, s *settings) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		m := empty()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if s.removeKeys[key] {
				continue
			}
			value, err := decodeYAMLNode(node.Content[i+1], s)
			if err != nil {
				return nil, err
			}
			m.data.Set(key, value)
		}
		return m, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeYAMLNode(child, s)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid YAML value: %w", err)
		}
		return value, nil
	}
}

// Get returns the value for a key.
//
// Parameters:
//   - key: The key to look up
//
// Returns:
//   - any: The stored value (nested maps are *Model)
//   - bool: true if the key exists
func (m *Model) Get(key string) (any, bool) {
	return m.data.Get(key)
}

// GetDefault returns the value for a key, or the default when absent.
//
// Parameters:
//   - key: The key to look up
//   - def: Value to return when the key does not exist
//
// Returns:
//   - any: The stored value or the default
func (m *Model) GetDefault(key string, def any) any {
	if v, ok := m.data.Get(key); ok {
		return v
	}
	return def
}

// GetString returns the value for a key rendered as a string.
//
// Missing keys return the empty string. Non-string values are formatted
// with fmt.Sprintf("%v", ...).
//
// Parameters:
//   - key: The key to look up
//
// Returns:
//   - string: The value as a string, or "" when absent
func (m *Model) GetString(key string) string {
	v, ok := m.data.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetModel returns the nested model stored under a key.
//
// Parameters:
//   - key: The key to look up
//
// Returns:
//   - *Model: The nested model, or nil when the key is absent or not a mapping
func (m *Model) GetModel(key string) *Model {
	v, ok := m.data.Get(key)
	if !ok {
		return nil
	}
	nested, _ := v.(*Model)
	return nested
}

// Set stores a value under a key, converting nested maps into models.
// New keys are appended at the end of the key order.
//
// Parameters:
//   - key: The key to store under
//   - value: The value to store
//
// Returns:
//   - None
func (m *Model) Set(key string, value any) {
	m.data.Set(key, convertValue(value, newSettings(nil)))
}

// Has reports whether a key exists.
func (m *Model) Has(key string) bool {
	_, ok := m.data.Get(key)
	return ok
}

// Delete removes a key from the model.
func (m *Model) Delete(key string) {
	m.data.Delete(key)
}

// Len returns the number of keys in the model.
func (m *Model) Len() int {
	return len(m.data.Keys())
}

// Keys returns the model's keys in insertion order.
//
// Returns:
//   - []string: All keys in their original order
func (m *Model) Keys() []string {
	return m.data.Keys()
}

// ToMap converts the model to a plain nested map.
//
// Nested models are converted recursively, so the result contains only
// standard Go types.
//
// Returns:
//   - map[string]any: The model's data as a plain mapping
func (m *Model) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.data.Get(k)
		out[k] = resolveValue(v, false)
	}
	return out
}

// ToJSON converts the model to JSON, keeping key order.
//
// Returns:
//   - []byte: The JSON encoding of the model
//   - error: When a stored value cannot be marshaled
func (m *Model) ToJSON() ([]byte, error) {
	return json.Marshal(m.toOrderedMap())
}

// ToYAML converts the model to YAML, keeping key order.
//
// Returns:
//   - []byte: The YAML encoding of the model
//   - error: When a stored value cannot be marshaled
func (m *Model) ToYAML() ([]byte, error) {
	return yaml.Marshal(m.toYAMLNode())
}

// MarshalJSON implements json.Marshaler so models can be embedded in
// other serialized structures.
func (m *Model) MarshalJSON() ([]byte, error) {
	return m.ToJSON()
}

// Copy returns a deep copy of the model.
//
// Returns:
//   - *Model: An independent copy with the same keys, order, and values
func (m *Model) Copy() *Model {
	out := empty()
	for _, k := range m.Keys() {
		v, _ := m.data.Get(k)
		out.data.Set(k, copyValue(v))
	}
	return out
}

// String returns the model state as "key=value" pairs in key order.
//
// Returns:
//   - string: Space-separated key=value dump of the model
func (m *Model) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.data.Get(k)
		parts = append(parts, fmt.Sprintf("%s=%v", k, resolveValue(v, true)))
	}
	return strings.Join(parts, " ")
}

func (m *Model) toOrderedMap() *orderedmap.OrderedMap {
	om := orderedmap.New()
	for _, k := range m.Keys() {
		v, _ := m.data.Get(k)
		om.Set(k, marshalValue(v))
	}
	return om
}

func marshalValue(v any) any {
	switch val := v.(type) {
	case *Model:
		return val.toOrderedMap()
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, marshalValue(item))
		}
		return out
	default:
		return v
	}
}

func (m *Model) toYAMLNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.Keys() {
		v, _ := m.data.Get(k)
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		node.Content = append(node.Content, keyNode, valueToYAMLNode(v))
	}
	return node
}

func valueToYAMLNode(v any) *yaml.Node {
	switch val := v.(type) {
	case *Model:
		return val.toYAMLNode()
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			node.Content = append(node.Content, valueToYAMLNode(item))
		}
		return node
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			node.Kind = yaml.ScalarNode
			node.Tag = "!!str"
			node.Value = fmt.Sprintf("%v", v)
		}
		return node
	}
}

// resolveValue flattens model values for ToMap and String. When deep is
// false nested models become plain maps; when deep is true they are
// rendered through String for readability.
func resolveValue(v any, deep bool) any {
	switch val := v.(type) {
	case *Model:
		if deep {
			return "{" + val.String() + "}"
		}
		return val.ToMap()
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, resolveValue(item, deep))
		}
		return out
	default:
		return v
	}
}

func copyValue(v any) any {
	switch val := v.(type) {
	case *Model:
		return val.Copy()
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, copyValue(item))
		}
		return out
	default:
		return v
	}
}
