// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML decodes a single YAML document, keeping mappings as *Map
// in document order.
func FromYAML(data []byte) (interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil // empty document
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(node.Content[0])

	case yaml.MappingNode:
		result := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := fromYAMLNode(node.Content[i])
			if err != nil {
				return nil, err
			}
			val, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			result.Set(key, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := []interface{}{}
		for _, item := range node.Content {
			val, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)

	case yaml.ScalarNode:
		var val interface{}
		if err := node.Decode(&val); err != nil {
			return nil, err
		}
		if intVal, ok := val.(int); ok {
			return int64(intVal), nil
		}
		return val, nil

	default:
		return nil, fmt.Errorf("Unexpected YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

// ToYAML encodes val, writing *Map keys in their insertion order.
func ToYAML(val interface{}, indent int) ([]byte, error) {
	node, err := toYAMLNode(val)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	if indent > 0 {
		encoder.SetIndent(indent)
	}
	if err := encoder.Encode(node); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAMLNode(val interface{}) (*yaml.Node, error) {
	switch typedVal := val.(type) {
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		err := typedVal.IterateErr(func(k, v interface{}) error {
			keyNode, err := toYAMLNode(k)
			if err != nil {
				return err
			}
			valNode, err := toYAMLNode(v)
			if err != nil {
				return err
			}
			node.Content = append(node.Content, keyNode, valNode)
			return nil
		})
		return node, err

	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typedVal {
			itemNode, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(typedVal); err != nil {
			return nil, err
		}
		return node, nil
	}
}
