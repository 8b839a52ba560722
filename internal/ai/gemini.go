package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "google.golang.org/genai"
)

// Gemini transcribes papers through the Gemini API, inlining the PDF bytes
// in a single multimodal request. When several API keys are configured, a
// quota-exhausted key is rotated out and the request retried with the next.
type Gemini struct {
	keys  []string
	model string
}

// DefaultModel is used when no model is named.
const DefaultModel = "gemini-2.5-flash"

// NewGemini creates a transcriber over the given keys, typically from
// KeysFromEnv.
func NewGemini(keys []string, model string) (*Gemini, error) {
	if len(keys) == 0 {
		return nil, errors.New("no API keys: set GEMINI_API_KEYS or GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{keys: keys, model: model}, nil
}

// Transcribe converts the PDF into faithful Markdown.
func (g *Gemini) Transcribe(ctx context.Context, pdfPath string, opts Options) (string, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", err
	}

	temp := float32(0)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	content := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: transcriptionPrompt(opts.FigureDirName)},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: data}},
			},
		},
	}

	var lastErr error
	for i, key := range g.keys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
		if err != nil {
			lastErr = err
			continue
		}
		res, err := client.Models.GenerateContent(ctx, g.model, content, cfg)
		if err != nil {
			lastErr = fmt.Errorf("gemini request (key %d/%d): %w", i+1, len(g.keys), err)
			if isQuotaError(err) {
				continue
			}
			return "", lastErr
		}
		text := strings.TrimSpace(res.Text())
		if text == "" {
			return "", errors.New("gemini returned no text payload")
		}
		return stripCodeFences(text), nil
	}
	return "", lastErr
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}

func transcriptionPrompt(figureDir string) string {
	figureRule := "9. Keep all figure references and captions as explicit markdown text placeholders."
	if figureDir != "" {
		figureRule = "9. If a figure is present, keep figure references and captions. " +
			"If local figure files are extracted, prefer markdown image links like " +
			"'![Figure X](" + figureDir + "/<filename>)' when you can confidently align them."
	}
	return `Convert this PDF paper into faithful Markdown.

Rules:
1. Preserve all text sections (title, abstract, intro, methods, results, discussion, conclusion, references).
2. Keep equations in LaTeX style ($...$ or $$...$$).
3. Convert tables to markdown tables when possible.
4. Keep figure placeholders/captions in output near their original positions, as bold blocks like **Figure 1.** caption text.
5. Preserve citation numbering/style from the source.
6. Preserve heading hierarchy.
7. Include author and affiliation blocks.
8. Do not summarize, paraphrase, or add claims not in the source.
` + figureRule + "\n"
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
