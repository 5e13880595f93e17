package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"videosearch-backend/internal/corpus"
)

// promptTemplate frames the model as a transcript librarian. The catalog
// of known videos is inlined so every suggestion can name a real video
// and a real timestamp, and the answer contract is a fenced JSON array.
const promptTemplate = `You are a video transcript search assistant. Your knowledge base is the transcript catalog below. Given a user query, find the moments in the catalog that answer it.

Catalog:
%s

User query: %s

Respond with a fenced JSON array. Each element must have:
  "videoId": the id or exact title of the video
  "timestamp": the HH:MM:SS start time of the relevant segment
  "reasoning": one sentence on why this moment answers the query
  "quote": the transcript text at that moment

If the catalog contains nothing relevant, respond with an empty array [].`

// GeminiBackend answers search queries with Gemini, grounding the model
// in the in-memory transcript catalog.
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
	corpus *corpus.Corpus
}

func NewGeminiBackend(apiKey string, c *corpus.Corpus) (*GeminiBackend, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiBackend{client: client, model: model, corpus: c}, nil
}

func (b *GeminiBackend) Close() {
	b.client.Close()
}

func (b *GeminiBackend) Ask(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, b.catalog(), query)

	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return extractText(resp), nil
}

// catalog renders the known videos and their transcript lines as the
// model's grounding context. Unloaded transcripts contribute metadata
// only.
func (b *GeminiBackend) catalog() string {
	var sb strings.Builder
	for _, v := range b.corpus.Videos() {
		fmt.Fprintf(&sb, "video id=%s title=%q file=%s\n", v.ID, v.Title, v.FileName)
		if !v.SegmentsLoaded() {
			continue
		}
		for _, seg := range v.Segments {
			fmt.Fprintf(&sb, "  [%s] %s\n", seg.StartTime, seg.Text)
		}
	}
	if sb.Len() == 0 {
		return "(empty)"
	}
	return sb.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
