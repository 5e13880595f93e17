package services

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"encoding/xml"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/subtitle"
	"videosearch-backend/internal/timecode"
)

type YouTubeService struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
}

type timedTextXML struct {
	XMLName xml.Name  `xml:"transcript"`
	Texts   []textXML `xml:"text"`
}

type textXML struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
	}
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID pulls the 11-character video id out of a YouTube URL,
// or accepts a bare id.
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(strings.TrimSpace(url)); len(m) > 1 {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("not a recognizable YouTube URL or video id: %s", url)
}

// FetchTitle reads the video title, falling back to the id when the
// metadata request fails.
func (s *YouTubeService) FetchTitle(videoID string) string {
	video, err := s.ytClient.GetVideo(videoID)
	if err != nil || video.Title == "" {
		return videoID
	}
	return video.Title
}

// FetchTimedTranscript fetches captions with per-line timings. The
// timedtext track is preferred since it carries start offsets; the
// transcript API fallback only has text, so lines get synthetic labels
// and evenly spaced times.
func (s *YouTubeService) FetchTimedTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	segments, err := s.fetchTimedText(ctx, videoID)
	if err == nil {
		return segments, nil
	}
	timedErr := err

	transcript, err := s.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		transcript, err = s.transcriptAPI.GetTranscript(videoID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("timedtext failed (%v) and transcript API failed (%v)", timedErr, err)
	}

	var lines []string
	for _, entry := range transcript.Entries {
		if text := strings.TrimSpace(entry.Text); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("subtitle track is empty")
	}

	segments = subtitle.Parse(strings.Join(lines, "\n"))
	if len(segments) == 0 {
		return nil, fmt.Errorf("subtitle text resolved to empty content")
	}
	return segments, nil
}

func (s *YouTubeService) fetchTimedText(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	pageURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	req, _ := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YouTube page: %w", err)
	}

	captionURL, err := extractCaptionURL(string(body))
	if err != nil {
		return nil, err
	}

	capReq, _ := http.NewRequestWithContext(ctx, "GET", captionURL, nil)
	captionResp, err := s.httpClient.Do(capReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer captionResp.Body.Close()

	captionBody, err := io.ReadAll(captionResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}

	return parseCaptionsXML(captionBody)
}

func extractCaptionURL(pageHTML string) (string, error) {
	re := regexp.MustCompile(`"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	matches := re.FindStringSubmatch(pageHTML)
	if len(matches) < 2 {
		re2 := regexp.MustCompile(`"playerCaptionsTracklistRenderer"\s*:\s*\{(?:.*?,)?\s*"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
		matches = re2.FindStringSubmatch(pageHTML)
		if len(matches) < 2 {
			return "", fmt.Errorf("no captions available for this video")
		}
	}

	tracksJSON := matches[1]
	reURL := regexp.MustCompile(`"baseUrl"\s*:\s*"(.*?)"`)
	urlMatches := reURL.FindStringSubmatch(tracksJSON)
	if len(urlMatches) < 2 {
		return "", fmt.Errorf("caption track found but baseUrl missing")
	}

	u := urlMatches[1]
	u = strings.ReplaceAll(u, `\u0026`, "&")
	u = strings.ReplaceAll(u, `\/`, "/")

	return u, nil
}

func parseCaptionsXML(data []byte) ([]models.TranscriptSegment, error) {
	var tt timedTextXML
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("failed to parse captions XML: %w", err)
	}

	var segments []models.TranscriptSegment
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Text))
		if text == "" {
			continue
		}

		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, models.TranscriptSegment{
			Ordinal:      len(segments),
			StartTime:    timecode.Format(start),
			EndTime:      timecode.Format(start + dur),
			Text:         text,
			StartSeconds: start,
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("captions XML empty")
	}
	return segments, nil
}
