// Package subtitle converts raw VTT/SRT caption files into clean plain
// text suitable for returning as a transcript.
package subtitle

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTranscriptLen is the minimum character count (exclusive) for a
// caption or transcript to be considered usable. Anything at or below
// this length is treated as empty/near-empty noise.
const MinTranscriptLen = 20

var inlineTagRe = regexp.MustCompile(`<[^>]+>`)

// Parse converts VTT/SRT subtitle content to deduplicated plain text.
// Headers, timestamps, cue numbers and inline tags are dropped, and
// consecutive repeats (VTT rewrites the same line as cues scroll) are
// collapsed.
func Parse(raw string) string {
	var lines []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasHeaderPrefix(line) {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if isDigits(line) {
			continue
		}
		clean := strings.TrimSpace(inlineTagRe.ReplaceAllString(line, ""))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; !ok {
			lines = append(lines, clean)
			seen[clean] = struct{}{}
		}
		// Reset periodically so genuinely recurring phrases deeper in
		// the video are not dropped forever.
		if len(seen) > 200 {
			seen = make(map[string]struct{})
		}
	}

	return strings.Join(lines, "\n")
}

// LongEnough reports whether text clears MinTranscriptLen after
// trimming. Counted in runes: multi-byte scripts should not get a
// lower effective threshold.
func LongEnough(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > MinTranscriptLen
}

func hasHeaderPrefix(line string) bool {
	for _, p := range []string{"WEBVTT", "Kind:", "Language:", "NOTE", "STYLE"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
