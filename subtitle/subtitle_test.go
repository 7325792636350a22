package subtitle

import (
	"strings"
	"testing"
)

func TestParseVTT(t *testing.T) {
	raw := `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.500
Hello and welcome to the video

00:00:02.500 --> 00:00:05.000
Hello and welcome to the video

00:00:05.000 --> 00:00:08.000
Today we talk about <c.colorE5E5E5>several</c> things
`

	got := Parse(raw)
	want := "Hello and welcome to the video\nToday we talk about several things"
	if got != want {
		t.Errorf("Parse() = %q, want %q", got, want)
	}
}

func TestParseSRT(t *testing.T) {
	raw := `1
00:00:00,000 --> 00:00:02,500
First line of dialogue

2
00:00:02,500 --> 00:00:05,000
Second line of dialogue
`

	got := Parse(raw)
	want := "First line of dialogue\nSecond line of dialogue"
	if got != want {
		t.Errorf("Parse() = %q, want %q", got, want)
	}
}

func TestParseDropsInlineTagOnlyLines(t *testing.T) {
	raw := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n<c></c>\nreal text here\n"
	got := Parse(raw)
	if got != "real text here" {
		t.Errorf("Parse() = %q, want %q", got, "real text here")
	}
}

func TestParseEmpty(t *testing.T) {
	if got := Parse(""); got != "" {
		t.Errorf("Parse(\"\") = %q", got)
	}
	if got := Parse("WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n"); got != "" {
		t.Errorf("Parse(headers only) = %q", got)
	}
}

func TestParseSeenResetKeepsLaterRepeats(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n")
	for i := 0; i < 250; i++ {
		sb.WriteString("line number ")
		sb.WriteString(strings.Repeat("x", i%7+1))
		sb.WriteString(string(rune('a' + i%26)))
		sb.WriteString("\n")
	}
	// Does not panic and produces output.
	if Parse(sb.String()) == "" {
		t.Error("expected non-empty output")
	}
}

func TestLongEnough(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace", "   \n\t  ", false},
		{"exactly 20 runes", strings.Repeat("a", 20), false},
		{"21 runes", strings.Repeat("a", 21), true},
		{"20 runes padded", "  " + strings.Repeat("a", 20) + "  ", false},
		{"21 multibyte runes", strings.Repeat("好", 21), true},
		{"20 multibyte runes", strings.Repeat("好", 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongEnough(tt.text); got != tt.want {
				t.Errorf("LongEnough(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
