// Package split post-processes the transcribed Markdown: caption blocks are
// pulled out into per-figure files and the main article is divided into
// header, body, reference, and backmatter parts. All splitting is
// line-oriented on the bold caption and heading conventions the
// transcription step is instructed to produce.
package split

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Caption block patterns in the transcribed Markdown: "**Figure 1.** ..."
// for main articles, "**Fig. S1.** ..." / "**Table S2.** ..." for
// supplementary information.
var (
	captionLineMain = regexp.MustCompile(`(?i)^\*\*(Figure|Table)\s+(\d+)\.\*\*`)
	captionLineSI   = regexp.MustCompile(`(?i)^\*\*(Fig(?:ure)?\.?|Table)\s+(S?\d+)\.\*\*`)

	imageLinkRe  = regexp.MustCompile(`!\[.*?\]\(.*?\)\n?`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
	slugSuffixes = []string{"-main", "-header", "-SI", "-backmatter", "-reference"}
)

// Caption is one extracted caption block.
type Caption struct {
	// Label is the filename stem fragment, e.g. "figure1" or "stable2".
	Label string
	// Kind is "figure" or "table".
	Kind string
	// Text is the verbatim caption block, bold marker included.
	Text string
}

// Captions parses all caption blocks out of the Markdown and returns them
// together with the content with captions (and image links) removed. A
// caption block runs from its bold marker line to the next blank line.
func Captions(content string, si bool) ([]Caption, string) {
	pattern := captionLineMain
	if si {
		pattern = captionLineSI
	}

	var captions []Caption
	var cleaned []string
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); {
		m := pattern.FindStringSubmatch(lines[i])
		if m == nil {
			cleaned = append(cleaned, lines[i])
			i++
			continue
		}

		kind := "figure"
		if strings.HasPrefix(strings.ToLower(m[1]), "table") {
			kind = "table"
		}
		number := strings.TrimLeft(m[2], "Ss")
		if number == "" {
			number = m[2]
		}
		label := kind + number
		if si {
			label = "s" + label
		}

		block := []string{lines[i]}
		i++
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			block = append(block, lines[i])
			i++
		}
		if i < len(lines) {
			i++ // swallow the blank line after the block
		}
		captions = append(captions, Caption{
			Label: label,
			Kind:  kind,
			Text:  strings.Join(block, "\n"),
		})
	}
	return captions, CleanImageLinks(strings.Join(cleaned, "\n"))
}

// WriteCaptions writes each caption to {slug}-{label}.md with a normalized
// heading and returns the written paths in caption order.
func WriteCaptions(captions []Caption, slug, outDir string, si bool) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range captions {
		path := filepath.Join(outDir, slug+"-"+c.Label+".md")
		body := fmt.Sprintf("# %s\n\n%s\n", captionHeading(c, si), strings.TrimSpace(c.Text))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func captionHeading(c Caption, si bool) string {
	kind := "Figure"
	if c.Kind == "table" {
		kind = "Table"
	}
	number := strings.TrimPrefix(strings.TrimPrefix(c.Label, "s"), c.Kind)
	if si {
		return "Supplementary " + kind + " " + number
	}
	return kind + " " + number
}

// CleanImageLinks removes Markdown image links and collapses the blank-line
// runs they leave behind.
func CleanImageLinks(content string) string {
	content = imageLinkRe.ReplaceAllString(content, "")
	content = blankRunsRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content) + "\n"
}

// InferSlug derives the document slug from a filename by stripping the
// extension and any known pipeline suffix, then sanitizing the remainder.
func InferSlug(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, suffix := range slugSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	return Slugify(name)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)

// Slugify lowercases a name and reduces it to hyphen-separated a-z0-9 runs,
// safe for use as a filename stem.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
