// Package output renders the summary tree as connector-decorated text for
// files, the console, and the clipboard.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/sumtree/internal/tree"
)

const (
	renderTitleLine     = "Code Summary Tree"
	renderSeparatorLine = "=============="

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix      = "/"
	leafSummarySeparator = "    "
	lineBreakReplacement = " | "
)

// RenderLines converts the summary tree into its ordered text representation:
// a two-line header, a blank line, then one line per tree entry in child
// order. The function is pure; rendering the same tree twice yields identical
// lines.
func RenderLines(rootNode *tree.Node) []string {
	renderedLines := []string{renderTitleLine, renderSeparatorLine, ""}
	appendNodeLines(rootNode, "", &renderedLines)
	return renderedLines
}

// RenderText joins the rendered lines into one newline-terminated document.
func RenderText(rootNode *tree.Node) string {
	return strings.Join(RenderLines(rootNode), "\n") + "\n"
}

// appendNodeLines walks the node's children in insertion order, emitting a
// directory line plus subtree for internal nodes and a single summary line for
// leaves. The prefix accumulates indentation and vertical continuation marks.
func appendNodeLines(currentNode *tree.Node, linePrefix string, renderedLines *[]string) {
	childKeys := currentNode.ChildKeys()
	for childIndex, childKey := range childKeys {
		isLastChild := childIndex == len(childKeys)-1
		connector := treeBranchConnector
		childPadding := treeBranchPadding
		if isLastChild {
			connector = treeLastConnector
			childPadding = treeLastPadding
		}

		childNode := currentNode.Child(childKey)
		if childNode.IsLeaf() {
			*renderedLines = append(*renderedLines, linePrefix+connector+childKey+leafSummarySeparator+FlattenSummary(childNode.Summary()))
			continue
		}

		*renderedLines = append(*renderedLines, linePrefix+connector+childKey+directorySuffix)
		appendNodeLines(childNode, linePrefix+childPadding, renderedLines)
	}
}

// FlattenSummary trims surrounding whitespace and replaces every embedded line
// break with a literal separator so a summary occupies exactly one line.
func FlattenSummary(summaryText string) string {
	flattenedText := strings.TrimSpace(summaryText)
	flattenedText = strings.ReplaceAll(flattenedText, "\r\n", lineBreakReplacement)
	flattenedText = strings.ReplaceAll(flattenedText, "\n", lineBreakReplacement)
	flattenedText = strings.ReplaceAll(flattenedText, "\r", lineBreakReplacement)
	return flattenedText
}

// WriteTreeFile writes the rendered tree to a UTF-8 text file.
func WriteTreeFile(rootNode *tree.Node, outputFilePath string) error {
	renderedDocument := RenderText(rootNode)
	if writeError := os.WriteFile(outputFilePath, []byte(renderedDocument), 0o644); writeError != nil {
		return fmt.Errorf("writing rendered tree to %s: %w", outputFilePath, writeError)
	}
	return nil
}

// PrintTree writes the rendered tree to the provided destination, typically
// standard output.
func PrintTree(rootNode *tree.Node, destination io.Writer) error {
	_, writeError := io.WriteString(destination, RenderText(rootNode))
	return writeError
}
