package split

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Section boundary patterns for the four-part body split. Main articles
// only; supplementary files have no such structure.
var (
	abstractRe  = regexp.MustCompile(`(?i)^#+\s*Abstract\b`)
	referenceRe = regexp.MustCompile(`(?i)^#+\s*References?\b`)
	backRe      = regexp.MustCompile(`(?i)^#+\s*(Acknowledgements?|Acknowledgments?|Author\s+Contributions?` +
		`|Data\s+Availability|Competing\s+Interests?|Additional\s+Information` +
		`|Ethics\s+Declaration|Consent|Funding)`)
	anyHeadingRe = regexp.MustCompile(`^#+\s+\S`)
)

// BodyParts holds the paths written by SplitBody. Backmatter is empty when
// the article has none of the backmatter sections.
type BodyParts struct {
	Header     string `json:"header"`
	Main       string `json:"main"`
	Reference  string `json:"reference"`
	Backmatter string `json:"backmatter,omitempty"`
}

// SplitBody splits a caption-cleaned main-article Markdown document into
// {slug}-header.md, {slug}-main.md, {slug}-reference.md and, when present,
// {slug}-backmatter.md. Boundary detection is intentionally lenient: a
// missing Abstract heading falls back to the first later heading, a missing
// References heading yields an empty reference file.
func SplitBody(content, slug, outDir string) (BodyParts, error) {
	var parts BodyParts
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return parts, err
	}

	lines := strings.Split(CleanImageLinks(content), "\n")

	abstractIdx := findBoundary(lines, abstractRe, 0)
	referenceIdx := findBoundary(lines, referenceRe, 0)
	backIdx := findBoundary(lines, backRe, 0)

	if abstractIdx < 0 {
		// No Abstract heading: header ends at the first heading past the
		// title block.
		for i, line := range lines {
			if i > 3 && anyHeadingRe.MatchString(line) {
				abstractIdx = i
				break
			}
		}
		if abstractIdx < 0 {
			abstractIdx = 0
		}
	}

	bodyEnd := referenceIdx
	if bodyEnd < 0 {
		bodyEnd = backIdx
	}
	if bodyEnd < 0 {
		bodyEnd = len(lines)
	}

	var referenceLines []string
	if referenceIdx >= 0 {
		refEnd := backIdx
		if refEnd < 0 {
			refEnd = len(lines)
		}
		referenceLines = lines[referenceIdx:refEnd]
	}

	var err error
	if parts.Header, err = writePart(outDir, slug+"-header.md", lines[:abstractIdx]); err != nil {
		return parts, err
	}
	if parts.Main, err = writePart(outDir, slug+"-main.md", lines[abstractIdx:bodyEnd]); err != nil {
		return parts, err
	}
	if parts.Reference, err = writePart(outDir, slug+"-reference.md", referenceLines); err != nil {
		return parts, err
	}
	if backIdx >= 0 {
		if parts.Backmatter, err = writePart(outDir, slug+"-backmatter.md", lines[backIdx:]); err != nil {
			return parts, err
		}
	}
	return parts, nil
}

func findBoundary(lines []string, re *regexp.Regexp, start int) int {
	for i := start; i < len(lines); i++ {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

func writePart(outDir, name string, lines []string) (string, error) {
	path := filepath.Join(outDir, name)
	text := CleanImageLinks(strings.Join(lines, "\n"))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
