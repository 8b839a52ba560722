package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ktkarchive/paper-parse/internal/geom"
)

// Dashed separator recovery from the page SVG. Journals that rule off
// stacked figures do so with dashed vector strokes; in MuPDF's SVG output
// those appear as <path> elements carrying a stroke-dasharray. Only the
// path's coordinate extent matters to the resolver, so a tolerant attribute
// scan is enough — no full SVG parse.

var (
	svgPathRe   = regexp.MustCompile(`<path\b[^>]*>`)
	dashArrayRe = regexp.MustCompile(`stroke-dasharray\s*[:=]\s*"?([0-9., ]+)`)
	pathDataRe  = regexp.MustCompile(`\bd="([^"]+)"`)
	numberRe    = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?`)
)

func parseSVGDrawings(svg string) []Drawing {
	var out []Drawing
	for _, elem := range svgPathRe.FindAllString(svg, -1) {
		dash := dashArrayRe.FindStringSubmatch(elem)
		if dash == nil || strings.TrimSpace(dash[1]) == "" || strings.TrimSpace(dash[1]) == "0" {
			continue
		}
		data := pathDataRe.FindStringSubmatch(elem)
		if data == nil {
			continue
		}
		rect, ok := pathExtent(data[1])
		if !ok {
			continue
		}
		out = append(out, Drawing{Rect: rect, Dashed: true})
	}
	return out
}

// pathExtent computes the bounding box of all coordinates in a path data
// string. Curves are treated as their control-point hull, which is exact
// enough for separator lines.
func pathExtent(d string) (geom.Rect, bool) {
	nums := numberRe.FindAllString(d, -1)
	if len(nums) < 4 {
		return geom.Rect{}, false
	}
	var xs, ys []float64
	for i := 0; i+1 < len(nums); i += 2 {
		x, errX := strconv.ParseFloat(nums[i], 64)
		y, errY := strconv.ParseFloat(nums[i+1], 64)
		if errX != nil || errY != nil {
			return geom.Rect{}, false
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	return geom.Rect{X0: minX, Y0: minY, X1: maxX, Y1: maxY}, true
}
