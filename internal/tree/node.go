// Package tree builds the nested summary tree from flat path/summary pairs and
// persists it as order-preserving JSON.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	errorUnexpectedTokenFormat = "unexpected JSON token %v in summary tree"
	errorTrailingDataMessage   = "trailing data after summary tree document"
)

// Node is one node of the summary tree. A leaf holds the summary text of a
// file; an internal node holds named children in insertion order. Every path
// from the root to a leaf corresponds to exactly one summarized file.
type Node struct {
	childKeys []string
	children  map[string]*Node
	summary   string
	isLeaf    bool
}

// NewDirectoryNode returns an empty internal node.
func NewDirectoryNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

// NewLeafNode returns a leaf carrying the provided summary text.
func NewLeafNode(summaryText string) *Node {
	return &Node{summary: summaryText, isLeaf: true}
}

// IsLeaf reports whether the node is a file summary.
func (node *Node) IsLeaf() bool {
	return node.isLeaf
}

// Summary returns the summary text of a leaf node.
func (node *Node) Summary() string {
	return node.summary
}

// ChildKeys returns the child names in insertion order.
func (node *Node) ChildKeys() []string {
	return node.childKeys
}

// Child returns the named child, or nil when absent or when the node is a leaf.
func (node *Node) Child(childKey string) *Node {
	if node.isLeaf {
		return nil
	}
	return node.children[childKey]
}

// attach adds or replaces a child while preserving first-insertion order.
func (node *Node) attach(childKey string, childNode *Node) {
	if _, exists := node.children[childKey]; !exists {
		node.childKeys = append(node.childKeys, childKey)
	}
	node.children[childKey] = childNode
}

// MarshalJSON encodes the node with children emitted in insertion order and
// HTML escaping disabled so non-ASCII summary text appears literally.
func (node *Node) MarshalJSON() ([]byte, error) {
	if node.isLeaf {
		return encodeJSONString(node.summary)
	}

	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for childIndex, childKey := range node.childKeys {
		if childIndex > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, keyError := encodeJSONString(childKey)
		if keyError != nil {
			return nil, keyError
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		encodedChild, childError := node.children[childKey].MarshalJSON()
		if childError != nil {
			return nil, childError
		}
		buffer.Write(encodedChild)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON rebuilds the node from a nested JSON object, preserving the
// document order of object keys.
func (node *Node) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decodedNode, decodeError := decodeNode(decoder)
	if decodeError != nil {
		return decodeError
	}
	if decoder.More() {
		return fmt.Errorf(errorTrailingDataMessage)
	}
	*node = *decodedNode
	return nil
}

// decodeNode consumes one JSON value from the decoder: a string becomes a
// leaf, an object becomes an internal node with children decoded recursively.
func decodeNode(decoder *json.Decoder) (*Node, error) {
	currentToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}

	switch tokenValue := currentToken.(type) {
	case string:
		return NewLeafNode(tokenValue), nil
	case json.Delim:
		if tokenValue != '{' {
			return nil, fmt.Errorf(errorUnexpectedTokenFormat, tokenValue)
		}
		directoryNode := NewDirectoryNode()
		for decoder.More() {
			keyToken, keyError := decoder.Token()
			if keyError != nil {
				return nil, keyError
			}
			childKey, keyIsString := keyToken.(string)
			if !keyIsString {
				return nil, fmt.Errorf(errorUnexpectedTokenFormat, keyToken)
			}
			childNode, childError := decodeNode(decoder)
			if childError != nil {
				return nil, childError
			}
			directoryNode.attach(childKey, childNode)
		}
		if _, closeError := decoder.Token(); closeError != nil {
			return nil, closeError
		}
		return directoryNode, nil
	default:
		return nil, fmt.Errorf(errorUnexpectedTokenFormat, currentToken)
	}
}

// encodeJSONString encodes a string without HTML escaping, trimming the
// newline appended by json.Encoder.
func encodeJSONString(value string) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

// EncodeIndented renders the tree as two-space indented JSON.
func (node *Node) EncodeIndented() ([]byte, error) {
	compactDocument, marshalError := node.MarshalJSON()
	if marshalError != nil {
		return nil, marshalError
	}
	var indentedBuffer bytes.Buffer
	if indentError := json.Indent(&indentedBuffer, compactDocument, "", "  "); indentError != nil {
		return nil, indentError
	}
	return indentedBuffer.Bytes(), nil
}
