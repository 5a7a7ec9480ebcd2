package claude_test

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/AlexNguyenz/history-hub/internal/claude"
)

func TestDecodeProjectName(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
		want    string
	}{
		{"absolute path", "-Users-alice-proj", "/Users/alice/proj"},
		{"no leading marker", "plainname", "plainname"},
		{"root-level dir", "-tmp", "/tmp"},
		{"hyphenated segment is lossy", "-Users-alice-my-project", "/Users/alice/my/project"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := claude.DecodeProjectName(tc.encoded); got != tc.want {
				t.Errorf("DecodeProjectName(%q) = %q, want %q", tc.encoded, got, tc.want)
			}
		})
	}
}

func TestEncodeProjectPath(t *testing.T) {
	if got := claude.EncodeProjectPath("/Users/alice/proj"); got != "-Users-alice-proj" {
		t.Errorf("EncodeProjectPath = %q, want %q", got, "-Users-alice-proj")
	}
}

// Decoding an encoded path must recover the original exactly, as long as
// no path segment contains a hyphen.
func TestDecodeEncodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numSegments := rapid.IntRange(1, 6).Draw(t, "num_segments")
		segments := make([]string, numSegments)
		for i := range segments {
			segments[i] = rapid.StringMatching(`[a-zA-Z0-9_.]{1,12}`).Draw(t, "segment")
		}
		path := "/" + strings.Join(segments, "/")

		encoded := claude.EncodeProjectPath(path)
		if got := claude.DecodeProjectName(encoded); got != path {
			t.Fatalf("round trip failed: %q -> %q -> %q", path, encoded, got)
		}
	})
}

func TestDecodeProjectNameHeuristic(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
		want    string
	}{
		{"anchor preserves hyphens", "-Users-alice-code-my-project", "my-project"},
		{"no anchor falls back to last segment", "-Users-alice-proj", "proj"},
		{"no leading marker", "plainname", "plainname"},
		{"rightmost anchor wins", "-home-bob-work-src-tool-kit", "tool-kit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := claude.DecodeProjectNameHeuristic(tc.encoded); got != tc.want {
				t.Errorf("DecodeProjectNameHeuristic(%q) = %q, want %q", tc.encoded, got, tc.want)
			}
		})
	}
}
