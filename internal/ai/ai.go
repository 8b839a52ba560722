// Package ai produces the full-paper Markdown transcription. The primary
// implementation calls Gemini with the PDF inlined; a local fallback converts
// the renderer's page HTML without any network dependency.
package ai

import (
	"context"
	"os"
	"strings"
)

// Options tunes a transcription request.
type Options struct {
	// FigureDirName, when set, tells the model that figure assets were
	// extracted into that directory so it can emit local image links.
	FigureDirName string
}

// Transcriber converts a PDF paper into faithful Markdown.
type Transcriber interface {
	Transcribe(ctx context.Context, pdfPath string, opts Options) (string, error)
}

// Noop returns an empty transcription. Used in tests and when the
// transcription step is disabled.
type Noop struct{}

func (Noop) Transcribe(ctx context.Context, pdfPath string, opts Options) (string, error) {
	return "", nil
}

// KeysFromEnv loads API keys with rotation support: GEMINI_API_KEYS holds a
// comma/semicolon/newline separated list tried in order on quota errors,
// GEMINI_API_KEY appends a single key. Duplicates are dropped, order kept.
func KeysFromEnv() []string {
	var keys []string
	raw := strings.NewReplacer("\n", ",", ";", ",").Replace(os.Getenv("GEMINI_API_KEYS"))
	for _, item := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(item); k != "" {
			keys = append(keys, k)
		}
	}
	if k := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); k != "" {
		keys = append(keys, k)
	}
	seen := make(map[string]bool, len(keys))
	var dedup []string
	for _, k := range keys {
		if !seen[k] {
			dedup = append(dedup, k)
			seen[k] = true
		}
	}
	return dedup
}
