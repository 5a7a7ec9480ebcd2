// Package claude knows where the Claude Code CLI keeps its session logs
// and how it mangles project paths into directory names.
package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionFileExt is the extension of session transcript files.
const SessionFileExt = ".jsonl"

// ProjectsRoot returns the directory the Claude CLI writes session logs
// under, <home>/.claude/projects.
func ProjectsRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "projects"), nil
}

// EncodeProjectPath converts an absolute path into the directory name the
// Claude CLI uses under the projects root: every path separator becomes a
// hyphen, so the leading separator yields a leading hyphen
// (/Users/alice/proj -> -Users-alice-proj).
func EncodeProjectPath(absPath string) string {
	return strings.ReplaceAll(absPath, "/", "-")
}

// DecodeProjectName reverses EncodeProjectPath with the naive rule: strip
// the leading hyphen and turn every remaining hyphen back into a path
// separator. The encoding collapses real hyphens and separators into the
// same character, so this is lossy for paths whose segments contain
// hyphens ("my-project" decodes to "my/project"). Inputs without the
// leading hyphen marker are returned unchanged.
//
// This is the canonical decoder. DecodeProjectNameHeuristic carries the
// alternative strategy for display purposes.
func DecodeProjectName(encoded string) string {
	if !strings.HasPrefix(encoded, "-") {
		return encoded
	}
	return "/" + strings.ReplaceAll(strings.TrimPrefix(encoded, "-"), "-", "/")
}

// anchorSegments are directory names that commonly sit right above a
// project checkout. Everything after the last anchor is assumed to be the
// project name.
var anchorSegments = map[string]bool{
	"Documents": true,
	"Projects":  true,
	"projects":  true,
	"workspace": true,
	"code":      true,
	"src":       true,
	"repos":     true,
	"dev":       true,
	"work":      true,
	"go":        true,
}

// DecodeProjectNameHeuristic guesses a display name for an encoded
// directory name by searching for a well-known base-directory segment and
// treating everything after it as the project name, hyphens preserved
// (-Users-alice-code-my-project -> my-project). When no anchor segment is
// found it falls back to the last segment. Unlike DecodeProjectName it
// returns a bare name, not a path.
func DecodeProjectNameHeuristic(encoded string) string {
	if !strings.HasPrefix(encoded, "-") {
		return encoded
	}
	segments := strings.Split(strings.TrimPrefix(encoded, "-"), "-")
	for i := len(segments) - 2; i >= 0; i-- {
		if anchorSegments[segments[i]] {
			return strings.Join(segments[i+1:], "-")
		}
	}
	return segments[len(segments)-1]
}
