package output_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/sumtree/internal/output"
	"github.com/temirov/sumtree/internal/tree"
)

// buildSampleTree constructs the canonical two-file tree {a.py, sub/b.py}.
func buildSampleTree(testingHandle *testing.T) *tree.Node {
	testingHandle.Helper()
	flatMapping := tree.NewFlatMap()
	flatMapping.Add("a.py", "desc A")
	flatMapping.Add("sub/b.py", "desc B")
	rootNode, buildError := tree.Build(flatMapping)
	if buildError != nil {
		testingHandle.Fatalf("Build failed: %v", buildError)
	}
	return rootNode
}

// TestRenderLinesCanonicalTree verifies the exact rendering of the canonical tree: header, connectors, directory suffix, and leaf summary separator.
func TestRenderLinesCanonicalTree(testingHandle *testing.T) {
	renderedLines := output.RenderLines(buildSampleTree(testingHandle))

	expectedLines := []string{
		"Code Summary Tree",
		"==============",
		"",
		"├── a.py    desc A",
		"└── sub/",
		"    └── b.py    desc B",
	}
	if !reflect.DeepEqual(renderedLines, expectedLines) {
		testingHandle.Fatalf("unexpected rendering:\ngot  %q\nwant %q", renderedLines, expectedLines)
	}
}

// TestRenderLinesSiblingConnectors verifies that every sibling but the last uses the branch connector and nested prefixes carry the vertical continuation marker.
func TestRenderLinesSiblingConnectors(testingHandle *testing.T) {
	flatMapping := tree.NewFlatMap()
	flatMapping.Add("first/inner.py", "inner summary")
	flatMapping.Add("first/last.py", "last summary")
	flatMapping.Add("second.py", "second summary")
	rootNode, buildError := tree.Build(flatMapping)
	if buildError != nil {
		testingHandle.Fatalf("Build failed: %v", buildError)
	}

	renderedLines := output.RenderLines(rootNode)

	expectedLines := []string{
		"Code Summary Tree",
		"==============",
		"",
		"├── first/",
		"│   ├── inner.py    inner summary",
		"│   └── last.py    last summary",
		"└── second.py    second summary",
	}
	if !reflect.DeepEqual(renderedLines, expectedLines) {
		testingHandle.Fatalf("unexpected rendering:\ngot  %q\nwant %q", renderedLines, expectedLines)
	}
}

// TestFlattenSummary verifies that embedded line breaks collapse to the literal separator with surrounding whitespace trimmed.
func TestFlattenSummary(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"trailing newline", "line1\nline2\n", "line1 | line2"},
		{"surrounding whitespace", "  summary  ", "summary"},
		{"windows line breaks", "line1\r\nline2", "line1 | line2"},
		{"single line unchanged", "one line", "one line"},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtestHandle *testing.T) {
			actual := output.FlattenSummary(testCase.input)
			if actual != testCase.expected {
				subtestHandle.Fatalf("FlattenSummary(%q) = %q, want %q", testCase.input, actual, testCase.expected)
			}
			if strings.ContainsAny(actual, "\r\n") {
				subtestHandle.Fatalf("flattened summary still contains line breaks: %q", actual)
			}
		})
	}
}

// TestRenderIsIdempotent verifies that rendering the same tree twice yields byte-identical output.
func TestRenderIsIdempotent(testingHandle *testing.T) {
	rootNode := buildSampleTree(testingHandle)

	firstRendering := output.RenderText(rootNode)
	secondRendering := output.RenderText(rootNode)
	if firstRendering != secondRendering {
		testingHandle.Fatalf("rendering is not idempotent:\nfirst:\n%s\nsecond:\n%s", firstRendering, secondRendering)
	}
}

// TestWriteTreeFileMatchesPrint verifies that the file sink and the console sink produce identical formatted text.
func TestWriteTreeFileMatchesPrint(testingHandle *testing.T) {
	rootNode := buildSampleTree(testingHandle)
	outputFilePath := filepath.Join(testingHandle.TempDir(), "rendered_tree.txt")

	if writeError := output.WriteTreeFile(rootNode, outputFilePath); writeError != nil {
		testingHandle.Fatalf("WriteTreeFile failed: %v", writeError)
	}
	writtenContent, readError := os.ReadFile(outputFilePath)
	if readError != nil {
		testingHandle.Fatalf("failed to read rendered file: %v", readError)
	}

	var printedBuffer bytes.Buffer
	if printError := output.PrintTree(rootNode, &printedBuffer); printError != nil {
		testingHandle.Fatalf("PrintTree failed: %v", printError)
	}

	if !bytes.Equal(writtenContent, printedBuffer.Bytes()) {
		testingHandle.Fatalf("file and console renderings differ:\nfile:\n%s\nconsole:\n%s", writtenContent, printedBuffer.Bytes())
	}
	if !strings.HasSuffix(printedBuffer.String(), "\n") {
		testingHandle.Fatalf("rendered output is not newline terminated")
	}
}

// TestRenderSummaryWithMultiLineLeaf verifies the end-to-end flattening behavior inside a rendered line.
func TestRenderSummaryWithMultiLineLeaf(testingHandle *testing.T) {
	flatMapping := tree.NewFlatMap()
	flatMapping.Add("multi.py", "line1\nline2\n")
	rootNode, buildError := tree.Build(flatMapping)
	if buildError != nil {
		testingHandle.Fatalf("Build failed: %v", buildError)
	}

	renderedLines := output.RenderLines(rootNode)
	lastLine := renderedLines[len(renderedLines)-1]
	if lastLine != "└── multi.py    line1 | line2" {
		testingHandle.Fatalf("unexpected rendered line: %q", lastLine)
	}
}
