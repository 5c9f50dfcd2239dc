// Package traverse walks a directory tree and selects candidate text files for summarization.
package traverse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/sumtree/internal/utils"
)

const (
	errorAbsolutePathFormat  = "getting absolute path for %s: %w"
	errorReadDirectoryFormat = "reading directory %s: %w"
	warningSkipSubdirMessage = "skipping subdirectory"
)

// textFileExtensions is the fixed allow-list of extensions treated as text.
// Binary detection is extension-based only; there is no content sniffing.
var textFileExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".java": {}, ".cpp": {}, ".h": {},
	".cs": {}, ".go": {}, ".rb": {}, ".php": {}, ".swift": {}, ".kt": {},
	".rs": {}, ".md": {}, ".txt": {}, ".json": {}, ".xml": {}, ".yaml": {},
	".yml": {}, ".html": {}, ".css": {}, ".scss": {}, ".less": {},
}

// CandidateFile is a file that passed ignore filtering and the extension
// allow-list and is eligible for summarization.
type CandidateFile struct {
	AbsolutePath string
	RelativePath string
}

// Walker walks a root directory depth-first and yields candidate files.
type Walker struct {
	IgnorePatterns []string
	Logger         *zap.Logger
}

// NewWalker constructs a Walker over the provided ignore patterns.
func NewWalker(ignorePatterns []string, logger *zap.Logger) *Walker {
	return &Walker{IgnorePatterns: ignorePatterns, Logger: logger}
}

// Walk traverses rootDirectoryPath depth-first in pre-order and returns every
// candidate file. Ignored directories are pruned before descent, so excluded
// subtrees are never visited. Sibling order follows the underlying directory
// listing.
func (walker *Walker) Walk(rootDirectoryPath string) ([]CandidateFile, error) {
	absoluteRootDirectoryPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	var candidateFiles []CandidateFile
	walkError := walker.walkDirectory(absoluteRootDirectoryPath, absoluteRootDirectoryPath, &candidateFiles)
	if walkError != nil {
		return nil, walkError
	}
	return candidateFiles, nil
}

// walkDirectory collects candidates from one directory level and recurses into
// surviving subdirectories. A subdirectory that cannot be read is logged and
// skipped rather than aborting the whole traversal.
func (walker *Walker) walkDirectory(currentDirectoryPath string, rootDirectoryPath string, candidateFiles *[]CandidateFile) error {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, currentDirectoryPath, readDirectoryError)
	}

	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		relativeEntryPath := utils.RelativePathOrSelf(entryPath, rootDirectoryPath)
		if utils.ShouldIgnoreByPath(relativeEntryPath, walker.IgnorePatterns) {
			continue
		}

		if directoryEntry.IsDir() {
			if descendError := walker.walkDirectory(entryPath, rootDirectoryPath, candidateFiles); descendError != nil {
				walker.Logger.Warn(warningSkipSubdirMessage, zap.String("path", entryPath), zap.Error(descendError))
			}
			continue
		}

		if !directoryEntry.Type().IsRegular() {
			continue
		}

		if IsTextFile(directoryEntry.Name()) {
			*candidateFiles = append(*candidateFiles, CandidateFile{
				AbsolutePath: entryPath,
				RelativePath: relativeEntryPath,
			})
		}
	}

	return nil
}

// IsTextFile reports whether the file name carries a known text extension.
// Files with unknown or missing extensions are not candidates.
func IsTextFile(fileName string) bool {
	extension := strings.ToLower(filepath.Ext(fileName))
	_, isText := textFileExtensions[extension]
	return isText
}
