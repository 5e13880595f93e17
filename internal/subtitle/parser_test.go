package subtitle

import (
	"strings"
	"testing"
)

const threeCueSRT = `1
00:00:01,000 --> 00:00:04,000
Hello and welcome.

2
00:00:04,500 --> 00:00:08,000
Today we talk about <b>pricing</b>
across two lines.

3
00:00:09,000 --> 00:00:12,000
Thanks for watching.
`

func TestParseSRT(t *testing.T) {
	segments := Parse(threeCueSRT)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	for i, seg := range segments {
		if seg.Ordinal != i {
			t.Errorf("segment %d has ordinal %d", i, seg.Ordinal)
		}
		if i > 0 && segments[i].StartSeconds < segments[i-1].StartSeconds {
			t.Errorf("start seconds decreased at segment %d", i)
		}
	}

	first := segments[0]
	if first.StartTime != "00:00:01" {
		t.Errorf("expected truncated start time 00:00:01, got %q", first.StartTime)
	}
	if first.EndTime != "00:00:04,000" {
		t.Errorf("expected verbatim end time, got %q", first.EndTime)
	}
	if first.StartSeconds != 1.0 {
		t.Errorf("expected start seconds 1.0, got %v", first.StartSeconds)
	}

	second := segments[1]
	if strings.Contains(second.Text, "<b>") {
		t.Errorf("markup tags not stripped: %q", second.Text)
	}
	if !strings.Contains(second.Text, "pricing") {
		t.Errorf("tag contents lost: %q", second.Text)
	}
	if !strings.Contains(second.Text, "\n") {
		t.Errorf("multi-line cue text not preserved: %q", second.Text)
	}
	if second.StartSeconds != 4.5 {
		t.Errorf("expected fractional start seconds 4.5, got %v", second.StartSeconds)
	}
}

func TestParseVTTStyle(t *testing.T) {
	input := "WEBVTT\n\n00:00:01.000 --> 00:00:03.000 align:start\nFirst cue\n\n00:00:03.000 --> 00:00:05.000\nSecond cue\n"

	segments := Parse(input)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "First cue" {
		t.Errorf("unexpected text %q", segments[0].Text)
	}
	if segments[0].EndTime != "00:00:03.000" {
		t.Errorf("cue settings leaked into end time: %q", segments[0].EndTime)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if segments := Parse(""); len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segments))
	}
}

func TestParseDropsEmptyCues(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\n<i></i>\n\n2\n00:00:02,000 --> 00:00:03,000\nKept.\n"

	segments := Parse(input)
	if len(segments) != 1 {
		t.Fatalf("expected tag-only cue to be dropped, got %d segments", len(segments))
	}
	if segments[0].Text != "Kept." {
		t.Errorf("unexpected text %q", segments[0].Text)
	}
	if segments[0].Ordinal != 0 {
		t.Errorf("ordinals must stay contiguous after a drop, got %d", segments[0].Ordinal)
	}
}

func TestParsePlainTextFallback(t *testing.T) {
	input := "line one\n\nline two\nline three\n"

	segments := Parse(input)
	if len(segments) != 3 {
		t.Fatalf("expected 3 fallback segments, got %d", len(segments))
	}

	for i, seg := range segments {
		wantLabel := "L" + string(rune('1'+i))
		if seg.StartTime != wantLabel {
			t.Errorf("segment %d label = %q, want %q", i, seg.StartTime, wantLabel)
		}
		if seg.StartSeconds != float64(i*5) {
			t.Errorf("segment %d start seconds = %v, want %v", i, seg.StartSeconds, i*5)
		}
		if seg.Ordinal != i {
			t.Errorf("segment %d ordinal = %d", i, seg.Ordinal)
		}
	}
	if segments[1].Text != "line two" {
		t.Errorf("line order broken: %q", segments[1].Text)
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"-->",
		"00:00:01,000 --> ",
		"garbage --> more garbage",
		strings.Repeat(":", 100),
		"1\n00:99:99,999 --> 00:00:00,000\nbackwards\n",
	}
	for _, in := range inputs {
		_ = Parse(in) // must not panic
	}
}
