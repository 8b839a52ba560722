package extract

import (
	"image"

	"github.com/ktkarchive/paper-parse/internal/profile"
	"github.com/ktkarchive/paper-parse/internal/render"
)

// HeaderBandFilter classifies running headers and page banners so they are
// excluded both from caption search and from final raster crops. The three
// detection modes (darkness, height, text pattern) are independent; a
// profile may enable any combination.
type HeaderBandFilter struct {
	profile *profile.Profile
}

// NewHeaderBandFilter creates a filter for one profile.
func NewHeaderBandFilter(p *profile.Profile) *HeaderBandFilter {
	return &HeaderBandFilter{profile: p}
}

// IsThinStrip applies the height test: image or drawing blocks shorter than
// the profile minimum are header/footer strips, never figure candidates,
// regardless of their position on the page.
func (f *HeaderBandFilter) IsThinStrip(b render.ImageBlock) bool {
	return b.Rect.Height() < f.profile.MinBlockHeight
}

// IsHeaderText applies the text-pattern test: a block matching the header
// pattern inside the top band is journal furniture. Such blocks are excluded
// from caption search but do not disqualify image candidates.
func (f *HeaderBandFilter) IsHeaderText(page *render.Page, b render.TextBlock) bool {
	re := f.profile.Header()
	if re == nil {
		return false
	}
	return b.Rect.Y0 < f.profile.HeaderBandHeight && re.MatchString(b.Text)
}

// IsSectionTitle reports whether a text block is a section title header
// (e.g. "Supplementary Figure ..." group headings). Titles bound figure
// regions from above but are not captions.
func (f *HeaderBandFilter) IsSectionTitle(b render.TextBlock) bool {
	re := f.profile.Section()
	if re == nil {
		return false
	}
	return re.MatchString(b.Text)
}

// ContentTop returns the Y where page content starts, just below any
// header-pattern text in the top band.
func (f *HeaderBandFilter) ContentTop(page *render.Page) float64 {
	bottom := 0.0
	for _, b := range page.TextBlocks {
		if f.IsHeaderText(page, b) && b.Rect.Y1 > bottom {
			bottom = b.Rect.Y1
		}
	}
	if bottom > 0 {
		return bottom + 2
	}
	return 0
}

// ExcludeImages reports whether every image block on the page is excluded
// outright: cover pages and, when the profile says so, the first page
// (journal and institution logos).
func (f *HeaderBandFilter) ExcludeImages(page *render.Page) bool {
	if page.Index < f.profile.CoverPagesToSkip {
		return true
	}
	return f.profile.SkipFirstPageImages && page.Index == 0
}

// TopDarkRows applies the darkness test to a grayscale raster and returns
// the number of rows to strip from the top. The test fires only when the
// mean intensity of the top ~5% band falls below the profile's dark
// threshold (a colored or gray banner bar); it then walks rows downward the
// way the bar actually extends, stopping at the first white row.
func (f *HeaderBandFilter) TopDarkRows(gray *image.Gray) int {
	bounds := gray.Bounds()
	h := bounds.Dy()
	if h == 0 || bounds.Dx() == 0 {
		return 0
	}
	band := h / 20
	if band < 1 {
		band = 1
	}

	var sum, n int
	for y := bounds.Min.Y; y < bounds.Min.Y+band; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += int(gray.GrayAt(x, y).Y)
			n++
		}
	}
	if n == 0 || sum/n >= f.profile.DarkThreshold {
		return 0
	}

	top := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		mean := rowMean(gray, y)
		if mean < f.profile.DarkThreshold {
			top = y - bounds.Min.Y + 1
		} else if mean > f.profile.WhiteThreshold-5 {
			break
		}
	}
	return top
}

func rowMean(gray *image.Gray, y int) int {
	bounds := gray.Bounds()
	if bounds.Dx() == 0 {
		return 255
	}
	sum := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		sum += int(gray.GrayAt(x, y).Y)
	}
	return sum / bounds.Dx()
}
