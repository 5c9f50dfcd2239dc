package utils_test

import (
	"reflect"
	"testing"

	"github.com/temirov/sumtree/internal/utils"
)

// wildcardPythonPattern matches Python files by extension.
const wildcardPythonPattern = "*.py"

// dependencyDirectoryPattern marks the node_modules directory and its subtree.
const dependencyDirectoryPattern = "node_modules/"

// nestedConfigPattern matches one exact nested path.
const nestedConfigPattern = "sub/settings.json"

// TestShouldIgnoreByPathGlobMatch verifies that a single-segment glob pattern matches against the final path segment.
func TestShouldIgnoreByPathGlobMatch(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		relativePath string
		patterns     []string
		expected     bool
	}{
		{"extension match at root", "script.py", []string{wildcardPythonPattern}, true},
		{"extension match nested", "sub/dir/script.py", []string{wildcardPythonPattern}, true},
		{"no match", "script.go", []string{wildcardPythonPattern}, false},
		{"empty rule set", "script.py", nil, false},
		{"multi-segment exact", "sub/settings.json", []string{nestedConfigPattern}, true},
		{"multi-segment depth mismatch", "other/sub/settings.json", []string{nestedConfigPattern}, false},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtestHandle *testing.T) {
			actual := utils.ShouldIgnoreByPath(testCase.relativePath, testCase.patterns)
			if actual != testCase.expected {
				subtestHandle.Fatalf("ShouldIgnoreByPath(%q, %v) = %v, want %v", testCase.relativePath, testCase.patterns, actual, testCase.expected)
			}
		})
	}
}

// TestShouldIgnoreByPathDirectoryScope verifies that a trailing-slash pattern excludes the directory and every descendant path.
func TestShouldIgnoreByPathDirectoryScope(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		relativePath string
		expected     bool
	}{
		{"directory itself", "node_modules", true},
		{"direct child", "node_modules/index.js", true},
		{"deep descendant", "node_modules/pkg/lib/main.js", true},
		{"sibling with similar prefix", "node_modules_backup", false},
		{"unrelated path", "src/main.go", false},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtestHandle *testing.T) {
			actual := utils.ShouldIgnoreByPath(testCase.relativePath, []string{dependencyDirectoryPattern})
			if actual != testCase.expected {
				subtestHandle.Fatalf("ShouldIgnoreByPath(%q) = %v, want %v", testCase.relativePath, actual, testCase.expected)
			}
		})
	}
}

// TestShouldIgnoreByPathBackslashNormalization verifies that backslash paths and patterns are normalized before matching.
func TestShouldIgnoreByPathBackslashNormalization(testingHandle *testing.T) {
	if !utils.ShouldIgnoreByPath(`sub\node_modules\index.js`, []string{"sub/node_modules/"}) {
		testingHandle.Fatalf("expected backslash path to match forward-slash directory pattern")
	}
	if !utils.ShouldIgnoreByPath("sub/node_modules/index.js", []string{`sub\node_modules\`}) {
		testingHandle.Fatalf("expected forward-slash path to match backslash directory pattern")
	}
}

// TestDeduplicatePatternsPreservesOrder verifies that duplicates are dropped while first occurrences keep their positions.
func TestDeduplicatePatternsPreservesOrder(testingHandle *testing.T) {
	inputPatterns := []string{"*.py", "node_modules/", "*.py", "dist/", "node_modules/"}
	expectedPatterns := []string{"*.py", "node_modules/", "dist/"}

	actualPatterns := utils.DeduplicatePatterns(inputPatterns)
	if !reflect.DeepEqual(actualPatterns, expectedPatterns) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", actualPatterns, expectedPatterns)
	}
}

// TestRelativePathOrSelf verifies relative path calculation against the traversal root.
func TestRelativePathOrSelf(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()

	samePath := utils.RelativePathOrSelf(rootDirectory, rootDirectory)
	if samePath != "." {
		testingHandle.Fatalf("expected '.', got %q", samePath)
	}

	childPath := utils.RelativePathOrSelf(rootDirectory+"/sub/file.go", rootDirectory)
	if childPath != "sub/file.go" {
		testingHandle.Fatalf("expected 'sub/file.go', got %q", childPath)
	}
}
