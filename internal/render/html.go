package render

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ktkarchive/paper-parse/internal/geom"
)

// MuPDF's structured-text HTML places one absolutely positioned <p> per
// printed line, with pt coordinates in the style attribute, and one <img>
// per embedded raster. parseHTMLBlocks reads those back and assembles the
// lines into paragraph-level blocks by vertical proximity, so the engine
// sees block-granular text the way the caption grammar expects.

var (
	styleTopRe      = regexp.MustCompile(`top:\s*(-?[0-9.]+)pt`)
	styleLeftRe     = regexp.MustCompile(`left:\s*(-?[0-9.]+)pt`)
	styleWidthRe    = regexp.MustCompile(`width:\s*(-?[0-9.]+)pt`)
	styleHeightRe   = regexp.MustCompile(`height:\s*(-?[0-9.]+)pt`)
	styleFontSizeRe = regexp.MustCompile(`font-size:\s*([0-9.]+)pt`)
)

type htmlLine struct {
	rect     geom.Rect
	text     string
	fontSize float64
}

func parseHTMLBlocks(html string, pageIndex int) ([]TextBlock, []ImageBlock, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, err
	}

	var lines []htmlLine
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		top, okTop := styleValue(styleTopRe, style)
		left, okLeft := styleValue(styleLeftRe, style)
		if !okTop || !okLeft {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		size := 10.0
		if spanStyle, ok := sel.Find("span").First().Attr("style"); ok {
			if v, ok := styleValue(styleFontSizeRe, spanStyle); ok {
				size = v
			}
		}
		// MuPDF does not report line extents in HTML; estimate from the
		// glyph count and size. Extraction only needs block tops and
		// bottoms to survive this approximation.
		width := float64(len([]rune(text))) * size * 0.5
		lines = append(lines, htmlLine{
			rect:     geom.NewRect(left, top, left+width, top+size*1.3),
			text:     text,
			fontSize: size,
		})
	})

	var images []ImageBlock
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		top, okTop := styleValue(styleTopRe, style)
		left, okLeft := styleValue(styleLeftRe, style)
		if !okTop || !okLeft {
			return
		}
		width, ok := styleValue(styleWidthRe, style)
		if !ok {
			width = attrValue(sel, "width")
		}
		height, ok := styleValue(styleHeightRe, style)
		if !ok {
			height = attrValue(sel, "height")
		}
		if width <= 0 || height <= 0 {
			return
		}
		images = append(images, ImageBlock{
			Rect:      geom.NewRect(left, top, left+width, top+height),
			PageIndex: pageIndex,
		})
	})

	return assembleBlocks(lines), images, nil
}

func styleValue(re *regexp.Regexp, style string) (float64, bool) {
	m := re.FindStringSubmatch(style)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func attrValue(sel *goquery.Selection, name string) float64 {
	raw, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
	if err != nil {
		return 0
	}
	return v
}

// assembleBlocks merges consecutive lines into paragraph blocks. A line
// joins the current block when its vertical gap is under one line height and
// its horizontal range overlaps the block, so columns never merge sideways.
func assembleBlocks(lines []htmlLine) []TextBlock {
	if len(lines) == 0 {
		return nil
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].rect.Y0 != lines[j].rect.Y0 {
			return lines[i].rect.Y0 < lines[j].rect.Y0
		}
		return lines[i].rect.X0 < lines[j].rect.X0
	})

	type openBlock struct {
		rect     geom.Rect
		texts    []string
		fontSize float64
	}
	var open []*openBlock
	var done []TextBlock

	flush := func(b *openBlock) {
		done = append(done, TextBlock{
			Rect:     b.rect,
			Text:     strings.Join(b.texts, "\n"),
			FontSize: b.fontSize,
		})
	}

	for _, ln := range lines {
		var target *openBlock
		for _, b := range open {
			gap := ln.rect.Y0 - b.rect.Y1
			if gap > ln.fontSize*1.0 {
				continue
			}
			if ln.rect.X1 <= b.rect.X0 || ln.rect.X0 >= b.rect.X1 {
				continue
			}
			target = b
			break
		}
		if target == nil {
			open = append(open, &openBlock{
				rect:     ln.rect,
				texts:    []string{ln.text},
				fontSize: ln.fontSize,
			})
			continue
		}
		target.rect = target.rect.Union(ln.rect)
		target.texts = append(target.texts, ln.text)
	}

	for _, b := range open {
		flush(b)
	}
	sort.Slice(done, func(i, j int) bool {
		if done[i].Rect.Y0 != done[j].Rect.Y0 {
			return done[i].Rect.Y0 < done[j].Rect.Y0
		}
		return done[i].Rect.X0 < done[j].Rect.X0
	})
	return done
}
