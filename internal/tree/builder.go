package tree

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrPathConflict indicates that one relative path is simultaneously a file
// and a directory within the flat mapping.
var ErrPathConflict = errors.New("path is both a file and a directory")

const treeSegmentSeparator = "/"

// FlatMap is the insertion-ordered mapping of relative file paths to summary
// text accumulated during summarization.
type FlatMap struct {
	orderedPaths []string
	summaries    map[string]string
}

// NewFlatMap returns an empty flat mapping.
func NewFlatMap() *FlatMap {
	return &FlatMap{summaries: make(map[string]string)}
}

// Add records a summary for the relative path. A repeated path keeps its
// original position and takes the newer summary.
func (flatMap *FlatMap) Add(relativePath string, summaryText string) {
	if _, exists := flatMap.summaries[relativePath]; !exists {
		flatMap.orderedPaths = append(flatMap.orderedPaths, relativePath)
	}
	flatMap.summaries[relativePath] = summaryText
}

// Len returns the number of recorded summaries.
func (flatMap *FlatMap) Len() int {
	return len(flatMap.orderedPaths)
}

// Paths returns the recorded relative paths in insertion order.
func (flatMap *FlatMap) Paths() []string {
	return flatMap.orderedPaths
}

// Summary returns the summary recorded for the relative path.
func (flatMap *FlatMap) Summary(relativePath string) (string, bool) {
	summaryText, exists := flatMap.summaries[relativePath]
	return summaryText, exists
}

// Build converts the flat mapping into a nested summary tree. Each path is
// split into segments; intermediate segments become internal nodes and the
// final segment becomes a leaf holding the summary. A path that collides with
// an existing leaf or directory yields ErrPathConflict rather than a silent
// overwrite.
func Build(flatMap *FlatMap) (*Node, error) {
	rootNode := NewDirectoryNode()

	for _, relativePath := range flatMap.Paths() {
		summaryText, _ := flatMap.Summary(relativePath)
		pathSegments := strings.Split(relativePath, treeSegmentSeparator)

		currentNode := rootNode
		for _, directorySegment := range pathSegments[:len(pathSegments)-1] {
			childNode := currentNode.Child(directorySegment)
			if childNode == nil {
				childNode = NewDirectoryNode()
				currentNode.attach(directorySegment, childNode)
			} else if childNode.IsLeaf() {
				return nil, fmt.Errorf("%w: %s", ErrPathConflict, relativePath)
			}
			currentNode = childNode
		}

		leafSegment := pathSegments[len(pathSegments)-1]
		if existingChild := currentNode.Child(leafSegment); existingChild != nil && !existingChild.IsLeaf() {
			return nil, fmt.Errorf("%w: %s", ErrPathConflict, relativePath)
		}
		currentNode.attach(leafSegment, NewLeafNode(summaryText))
	}

	return rootNode, nil
}

// Flatten returns every root-to-leaf path of the tree in child order, joined
// with the tree segment separator. Build followed by Flatten reproduces the
// original key set of a non-conflicting flat mapping.
func Flatten(rootNode *Node) []string {
	var flattenedPaths []string
	collectLeafPaths(rootNode, "", &flattenedPaths)
	return flattenedPaths
}

func collectLeafPaths(currentNode *Node, pathPrefix string, flattenedPaths *[]string) {
	for _, childKey := range currentNode.ChildKeys() {
		childNode := currentNode.Child(childKey)
		childPath := childKey
		if pathPrefix != "" {
			childPath = pathPrefix + treeSegmentSeparator + childKey
		}
		if childNode.IsLeaf() {
			*flattenedPaths = append(*flattenedPaths, childPath)
			continue
		}
		collectLeafPaths(childNode, childPath, flattenedPaths)
	}
}

// WriteFile persists the tree as indented JSON, newline terminated.
func WriteFile(rootNode *Node, outputFilePath string) error {
	indentedDocument, encodeError := rootNode.EncodeIndented()
	if encodeError != nil {
		return fmt.Errorf("encoding summary tree: %w", encodeError)
	}
	indentedDocument = append(indentedDocument, '\n')
	if writeError := os.WriteFile(outputFilePath, indentedDocument, 0o644); writeError != nil {
		return fmt.Errorf("writing summary tree to %s: %w", outputFilePath, writeError)
	}
	return nil
}

// ReadFile loads a persisted summary tree from indented JSON.
func ReadFile(inputFilePath string) (*Node, error) {
	// #nosec G304
	documentBytes, readError := os.ReadFile(inputFilePath)
	if readError != nil {
		return nil, fmt.Errorf("reading summary tree from %s: %w", inputFilePath, readError)
	}
	rootNode := NewDirectoryNode()
	if decodeError := rootNode.UnmarshalJSON(documentBytes); decodeError != nil {
		return nil, fmt.Errorf("decoding summary tree from %s: %w", inputFilePath, decodeError)
	}
	return rootNode, nil
}
