// Package extract implements the caption-to-image resolution and raster
// trimming engine: caption anchors are detected per page, matched to
// unconsumed image regions through ordered fallback tiers, tightly cropped,
// and persisted with their caption text and a manifest.
package extract

import (
	"strings"

	"github.com/ktkarchive/paper-parse/internal/geom"
	"github.com/ktkarchive/paper-parse/internal/profile"
	"github.com/ktkarchive/paper-parse/internal/render"
)

// Kind distinguishes figure and table anchors.
type Kind string

const (
	KindFigure Kind = "figure"
	KindTable  Kind = "table"
)

// Anchor is a text block recognized as the start of a figure or table
// caption. Anchors are immutable and consumed exactly once by the resolver.
type Anchor struct {
	Kind          Kind
	Supplementary bool
	Number        string
	PageIndex     int
	Rect          geom.Rect
	RawText       string
}

// Label returns the filename stem fragment for the anchor: "figure3",
// "table2", or with the supplementary prefix "sfigure1" / "stable1".
func (a Anchor) Label() string {
	if a.Supplementary {
		return "s" + string(a.Kind) + a.Number
	}
	return string(a.Kind) + a.Number
}

// Heading returns the normalized caption heading, e.g. "Figure 3" or
// "Supplementary Table 1".
func (a Anchor) Heading() string {
	kind := "Figure"
	if a.Kind == KindTable {
		kind = "Table"
	}
	if a.Supplementary {
		return "Supplementary " + kind + " " + a.Number
	}
	return kind + " " + a.Number
}

// CaptionDetector scans page text blocks for caption anchors matching the
// active profile. It holds no cross-page state; detection restarts cleanly
// on every page.
type CaptionDetector struct {
	profile *profile.Profile
	bands   *HeaderBandFilter
}

// NewCaptionDetector creates a detector for one profile.
func NewCaptionDetector(p *profile.Profile) *CaptionDetector {
	return &CaptionDetector{profile: p, bands: NewHeaderBandFilter(p)}
}

// Detect returns the page's caption anchors in text order. A page with no
// anchors yields an empty slice; that is not an error. Cover pages named by
// the profile are skipped entirely.
func (d *CaptionDetector) Detect(page *render.Page) []Anchor {
	if page.Index < d.profile.CoverPagesToSkip {
		return nil
	}
	var anchors []Anchor
	re := d.profile.Caption()
	for _, b := range page.TextBlocks {
		// Running headers are journal furniture, never captions, even when
		// their text happens to fit the caption grammar.
		if d.bands.IsHeaderText(page, b) {
			continue
		}
		text := strings.TrimSpace(b.Text)
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 3 {
			continue
		}
		// The pattern is start-anchored, so only block-initial matches
		// fire; a mid-paragraph "Fig. 1 shows..." never reaches here.
		kind := KindFigure
		if strings.Contains(strings.ToLower(m[1]), "table") {
			kind = KindTable
		}
		number := m[2]
		if d.profile.Supplementary {
			number = strings.TrimLeft(number, "Ss")
			if number == "" {
				number = m[2]
			}
		}
		anchors = append(anchors, Anchor{
			Kind:          kind,
			Supplementary: d.profile.Supplementary,
			Number:        number,
			PageIndex:     page.Index,
			Rect:          b.Rect,
			RawText:       text,
		})
	}
	return anchors
}
