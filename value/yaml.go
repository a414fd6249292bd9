package value

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidYAML is returned when a YAML node cannot be represented as a Value.
var ErrInvalidYAML = errors.New("value: invalid YAML")

// ToNode converts v into a yaml.v3 node tree. Key order is preserved.
// Invalid UTF-8 in strings and keys is replaced with U+FFFD, as the JSON
// encoder does, since the YAML emitter rejects it.
func ToNode(v Value) *yaml.Node {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nullNode()
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range t.keys {
			node.Content = append(node.Content,
				strNode(key),
				ToNode(t.fields[key]),
			)
		}
		return node

	case Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			node.Content = append(node.Content, ToNode(item))
		}
		return node

	case String:
		return strNode(string(t))

	case Number:
		if t == "" {
			t = "0"
		}
		tag := "!!float"
		if t.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(t)}

	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(t))}
	}

	return nullNode()
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: strings.ToValidUTF8(s, "\uFFFD")}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// FromNode converts a yaml.v3 node tree into a Value. An empty document
// yields a nil Value.
func FromNode(node *yaml.Node) (Value, error) {
	// yaml.Unmarshal leaves a zero node for empty input.
	if node == nil || node.Kind == 0 {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromNode(node.Content[0])

	case yaml.AliasNode:
		return FromNode(node.Alias)

	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrInvalidYAML, key.Line)
			}
			v, err := FromNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key.Value, v)
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := make(Array, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := FromNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.ScalarNode:
		return scalarFromNode(node)
	}

	return nil, fmt.Errorf("%w: line %d: unsupported node kind %d", ErrInvalidYAML, node.Line, node.Kind)
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null{}, nil

	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidYAML, node.Line, err)
		}
		return Bool(b), nil

	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidYAML, node.Line, err)
		}
		return Float(f), nil

	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidYAML, node.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: line %d: %s has no JSON form", ErrInvalidYAML, node.Line, node.Value)
		}
		return Float(f), nil
	}

	return String(node.Value), nil
}

// ParseYAML decodes a YAML (or JSON) document into a Value.
func ParseYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return FromNode(&node)
}

// MarshalYAML encodes v as a YAML document indented by two spaces.
func MarshalYAML(v Value) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(ToNode(v)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler.
func (o *Object) MarshalYAML() (any, error) { return ToNode(o), nil }

// MarshalYAML implements yaml.Marshaler.
func (a Array) MarshalYAML() (any, error) { return ToNode(a), nil }

// UnmarshalYAML implements yaml.Unmarshaler. The node must be a mapping.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromNode(node)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("%w: line %d: expected mapping", ErrInvalidYAML, node.Line)
	}
	*o = *obj
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. The node must be a sequence.
func (a *Array) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromNode(node)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("%w: line %d: expected sequence", ErrInvalidYAML, node.Line)
	}
	*a = arr
	return nil
}
