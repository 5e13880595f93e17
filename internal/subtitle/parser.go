// Package subtitle turns raw subtitle or plain-text file content into an
// ordered sequence of transcript segments. It understands SRT and WebVTT
// style cue blocks and falls back to one-cue-per-line for anything else.
// Parse never fails: the worst case for arbitrary input is an empty slice.
package subtitle

import (
	"regexp"
	"strconv"
	"strings"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/timecode"
)

// Synthetic spacing between cues when the input has no time-codes at all.
const fallbackSpacingSeconds = 5

var (
	tcPattern = `[0-9]{1,2}:[0-9]{2}(?::[0-9]{2})?(?:[,.][0-9]{1,3})?`

	// "00:00:01,000 --> 00:00:04,000 align:start": trailing cue settings
	// on the timing line are ignored.
	timingRe = regexp.MustCompile(`^\s*(` + tcPattern + `)\s*-->\s*(` + tcPattern + `)(.*)$`)

	cueIndexRe = regexp.MustCompile(`^\d+$`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
)

// Parse scans content for time-coded cue blocks. Each block is a timing
// line (start --> end), then text lines until a blank line, a new numeric
// cue index, the next timing line, or end of input. Markup tags are
// stripped; blocks whose text is empty after cleaning are dropped. If no
// block matches and the content is non-empty, every non-blank line
// becomes a synthetic cue labeled "L<n>" spaced 5 seconds apart.
func Parse(content string) []models.TranscriptSegment {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")

	var segments []models.TranscriptSegment

	var (
		inBlock          bool
		startRaw, endRaw string
		textLines        []string
	)

	flush := func() {
		if !inBlock {
			return
		}
		inBlock = false

		clean := strings.TrimSpace(tagRe.ReplaceAllString(strings.Join(textLines, "\n"), ""))
		textLines = nil
		if clean == "" {
			return
		}

		segments = append(segments, models.TranscriptSegment{
			Ordinal:      len(segments),
			StartTime:    timecode.Truncate(startRaw),
			EndTime:      endRaw,
			Text:         clean,
			StartSeconds: timecode.Parse(startRaw),
		})
	}

	for _, line := range lines {
		if m := timingRe.FindStringSubmatch(line); m != nil {
			flush()
			inBlock = true
			startRaw, endRaw = m[1], m[2]
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || cueIndexRe.MatchString(trimmed) {
			flush()
			continue
		}

		if inBlock {
			textLines = append(textLines, trimmed)
		}
	}
	flush()

	if len(segments) == 0 && len(content) > 0 {
		segments = parsePlainText(normalized)
	}

	return segments
}

// parsePlainText treats every non-blank line as its own cue with a
// synthetic "L<n>" label distinguishable from real time-codes.
func parsePlainText(normalized string) []models.TranscriptSegment {
	var segments []models.TranscriptSegment
	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		ordinal := len(segments)
		segments = append(segments, models.TranscriptSegment{
			Ordinal:      ordinal,
			StartTime:    "L" + strconv.Itoa(ordinal+1),
			EndTime:      "",
			Text:         trimmed,
			StartSeconds: float64(ordinal * fallbackSpacingSeconds),
		})
	}
	return segments
}
