package extract

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ktkarchive/paper-parse/internal/geom"
	"github.com/ktkarchive/paper-parse/internal/profile"
	"github.com/ktkarchive/paper-parse/internal/render"
)

// Column tags which print column a block or caption occupies.
type Column int

const (
	ColumnFull Column = iota
	ColumnLeft
	ColumnRight
)

func (c Column) String() string {
	switch c {
	case ColumnLeft:
		return "left"
	case ColumnRight:
		return "right"
	default:
		return "full"
	}
}

// Region is the image area selected for one anchor, before trimming. Tier
// names the candidate rule that produced it.
type Region struct {
	PageIndex int
	Rect      geom.Rect
	Column    Column
	Anchor    Anchor
	Tier      string
}

// RegionResolver maps each caption anchor to exactly one unconsumed image
// region. Candidate rules are evaluated as ordered tiers; the first tier
// with any candidates wins, with ties broken by vertical gap then horizontal
// offset. The winning block is marked consumed, so no two captions ever
// claim the same source pixels. The resolver keeps exactly one page of
// lookback for captions separated from their figure by a page break, which
// is why documents must be walked strictly in page order.
type RegionResolver struct {
	profile *profile.Profile
	bands   *HeaderBandFilter
	logger  *zap.Logger

	current *render.Page
	prev    *render.Page
}

// NewRegionResolver creates a resolver for one extraction run.
func NewRegionResolver(p *profile.Profile, logger *zap.Logger) *RegionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegionResolver{
		profile: p,
		bands:   NewHeaderBandFilter(p),
		logger:  logger,
	}
}

// Observe advances the resolver to a new page. The page it replaces becomes
// the one-page lookback pool; anything older is out of reach for good.
func (r *RegionResolver) Observe(page *render.Page) {
	if r.current == page {
		return
	}
	r.prev = r.current
	r.current = page
}

// Lookback returns the retained previous page, if any. The pipeline needs it
// to crop regions resolved through the page-break fallback.
func (r *RegionResolver) Lookback() *render.Page {
	return r.prev
}

// Resolve selects the best unconsumed region for the anchor or fails with
// ErrNoRegionFound. The anchor must belong to the page most recently passed
// to Observe.
func (r *RegionResolver) Resolve(a Anchor) (*Region, error) {
	tiers := []struct {
		name string
		fn   func(Anchor) []*render.ImageBlock
	}{
		{"same-column", r.sameColumnTier},
		{"any-column", r.anyColumnTier},
		{"block-center", r.blockCenterTier},
		{"previous-page", r.previousPageTier},
	}

	for _, tier := range tiers {
		cands := tier.fn(a)
		if len(cands) == 0 {
			continue
		}
		sortByProximity(cands, a)
		win := cands[0]
		r.consume(win)

		rect := win.Rect
		if win.PageIndex == a.PageIndex {
			rect = r.clampTop(rect, a)
		}
		region := &Region{
			PageIndex: win.PageIndex,
			Rect:      rect,
			Column:    r.columnOf(r.pageByIndex(win.PageIndex), win.Rect),
			Anchor:    a,
			Tier:      tier.name,
		}
		r.logger.Debug("region resolved",
			zap.String("label", a.Label()),
			zap.String("tier", tier.name),
			zap.Int("page", win.PageIndex),
			zap.String("column", region.Column.String()))
		return region, nil
	}
	return nil, fmt.Errorf("%s on page %d: %w", a.Label(), a.PageIndex, ErrNoRegionFound)
}

// candidates yields the page's unconsumed image blocks that pass the banner
// filters, as mutable references into the page pool.
func (r *RegionResolver) candidates(page *render.Page) []*render.ImageBlock {
	if page == nil || r.bands.ExcludeImages(page) {
		return nil
	}
	var out []*render.ImageBlock
	for i := range page.ImageBlocks {
		b := &page.ImageBlocks[i]
		if b.Consumed || r.bands.IsThinStrip(*b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// sameColumnTier: same page, same column, block bottom above the caption top
// within the tolerance window.
func (r *RegionResolver) sameColumnTier(a Anchor) []*render.ImageBlock {
	col := r.columnOf(r.current, a.Rect)
	var out []*render.ImageBlock
	for _, b := range r.candidates(r.current) {
		if r.columnOf(r.current, b.Rect) != col {
			continue
		}
		if withinTolerance(b.Rect, a.Rect, r.profile.Tolerance) {
			out = append(out, b)
		}
	}
	return out
}

// anyColumnTier: same page, any column, same vertical rule. Full-width
// figures span both columns and surface here.
func (r *RegionResolver) anyColumnTier(a Anchor) []*render.ImageBlock {
	var out []*render.ImageBlock
	for _, b := range r.candidates(r.current) {
		if withinTolerance(b.Rect, a.Rect, r.profile.Tolerance) {
			out = append(out, b)
		}
	}
	return out
}

// blockCenterTier: same page, matched by block center instead of bottom
// edge, for figures whose caption sits beside rather than below the image.
func (r *RegionResolver) blockCenterTier(a Anchor) []*render.ImageBlock {
	var out []*render.ImageBlock
	for _, b := range r.candidates(r.current) {
		if b.Rect.CenterY() <= a.Rect.Y1 {
			out = append(out, b)
		}
	}
	return out
}

// previousPageTier: fall back to the retained previous page's pool, for a
// caption separated from its image by a page break.
func (r *RegionResolver) previousPageTier(a Anchor) []*render.ImageBlock {
	return r.candidates(r.prev)
}

// withinTolerance reports whether the block's bottom edge lies above the
// caption's top edge by at most tol. A block exactly tol away is accepted;
// one unit further falls through to the next tier.
func withinTolerance(block, caption geom.Rect, tol float64) bool {
	gap := caption.Y0 - block.Y1
	return gap >= 0 && gap <= tol
}

func sortByProximity(cands []*render.ImageBlock, a Anchor) {
	sort.SliceStable(cands, func(i, j int) bool {
		vi := math.Abs(a.Rect.Y0 - cands[i].Rect.Y1)
		vj := math.Abs(a.Rect.Y0 - cands[j].Rect.Y1)
		if vi != vj {
			return vi < vj
		}
		hi := math.Abs(a.Rect.CenterX() - cands[i].Rect.CenterX())
		hj := math.Abs(a.Rect.CenterX() - cands[j].Rect.CenterX())
		return hi < hj
	})
}

// consume marks the winner and any unconsumed block nested inside it, so
// subsequent anchors cannot claim the same pixels twice.
func (r *RegionResolver) consume(win *render.ImageBlock) {
	win.Consumed = true
	page := r.pageByIndex(win.PageIndex)
	if page == nil {
		return
	}
	for i := range page.ImageBlocks {
		b := &page.ImageBlocks[i]
		if !b.Consumed && win.Rect.Contains(b.Rect) {
			b.Consumed = true
		}
	}
}

// clampTop raises the region's top boundary past a dashed separator line
// lying between the region top and the caption, past any section title
// heading the region overlaps, and past the running-header band, so an upper
// stacked figure's pixels and group headings stay out of the crop.
func (r *RegionResolver) clampTop(rect geom.Rect, a Anchor) geom.Rect {
	page := r.current
	for _, d := range page.Drawings {
		if !d.Dashed {
			continue
		}
		y := d.Rect.Y0
		if y < a.Rect.Y0 && y > rect.Y0 && y < rect.Y1 {
			rect.Y0 = y + 2
		}
	}
	for _, b := range page.TextBlocks {
		if !r.bands.IsSectionTitle(b) {
			continue
		}
		if y := b.Rect.Y1; y < a.Rect.Y0 && y > rect.Y0 && y < rect.Y1 {
			rect.Y0 = y + 2
		}
	}
	if top := r.bands.ContentTop(page); top > rect.Y0 && top < rect.Y1 {
		rect.Y0 = top
	}
	return rect
}

func (r *RegionResolver) columnOf(page *render.Page, rect geom.Rect) Column {
	if page == nil || r.profile.ColumnCount < 2 {
		return ColumnFull
	}
	if rect.Width() > page.Width*0.6 {
		return ColumnFull
	}
	mid := r.profile.PageMidX
	if mid == 0 {
		mid = page.Width / 2
	}
	if rect.CenterX() < mid {
		return ColumnLeft
	}
	return ColumnRight
}

func (r *RegionResolver) pageByIndex(index int) *render.Page {
	if r.current != nil && r.current.Index == index {
		return r.current
	}
	if r.prev != nil && r.prev.Index == index {
		return r.prev
	}
	return nil
}
