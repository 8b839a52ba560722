package ai

import (
	"context"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gen2brain/go-fitz"
)

// Local transcribes without any model call: each page's structured-text HTML
// is converted to Markdown directly. Output quality is well below Gemini's
// (no equation recovery, rough tables) but it works offline and is
// deterministic.
type Local struct{}

var inlineImageRe = regexp.MustCompile(`!\[[^\]]*\]\(data:image/[^)]+\)`)

func (Local) Transcribe(ctx context.Context, pdfPath string, opts Options) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html, err := doc.HTML(i, true)
		if err != nil {
			return "", err
		}
		text, err := htmltomarkdown.ConvertString(html)
		if err != nil {
			return "", err
		}
		// Embedded rasters arrive base64-inlined; the figure pipeline
		// owns images, so drop them here.
		b.WriteString(inlineImageRe.ReplaceAllString(text, ""))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}
