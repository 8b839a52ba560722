package extract

import (
	"errors"
	"testing"

	"github.com/ktkarchive/paper-parse/internal/geom"
	"github.com/ktkarchive/paper-parse/internal/render"
)

func imageBlock(pageIndex int, x0, y0, x1, y1 float64) render.ImageBlock {
	return render.ImageBlock{Rect: geom.NewRect(x0, y0, x1, y1), PageIndex: pageIndex}
}

func captionAnchor(pageIndex int, x0, y0, x1, y1 float64, number string) Anchor {
	return Anchor{
		Kind:      KindFigure,
		Number:    number,
		PageIndex: pageIndex,
		Rect:      geom.NewRect(x0, y0, x1, y1),
		RawText:   "Figure " + number + ". Caption.",
	}
}

func TestResolveStackedSameColumn(t *testing.T) {
	page := &render.Page{
		Index: 1, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(1, 50, 50, 280, 290),
			imageBlock(1, 50, 330, 280, 590),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	a1 := captionAnchor(1, 50, 300, 280, 320, "1")
	a2 := captionAnchor(1, 50, 600, 280, 620, "2")

	r1, err := r.Resolve(a1)
	if err != nil {
		t.Fatalf("Resolve figure1: %v", err)
	}
	r2, err := r.Resolve(a2)
	if err != nil {
		t.Fatalf("Resolve figure2: %v", err)
	}

	if r1.Tier != "same-column" || r2.Tier != "same-column" {
		t.Errorf("tiers = %q, %q, want same-column for both", r1.Tier, r2.Tier)
	}
	if r1.Rect.Y1 != 290 {
		t.Errorf("figure1 region ends at %v, want 290", r1.Rect.Y1)
	}
	if r2.Rect.Y0 != 330 {
		t.Errorf("figure2 region starts at %v, want 330", r2.Rect.Y0)
	}
	if r1.Rect.Intersects(r2.Rect) {
		t.Errorf("regions overlap: %v and %v", r1.Rect, r2.Rect)
	}
	if r1.Column != ColumnLeft {
		t.Errorf("column = %v, want left", r1.Column)
	}
	for i, b := range page.ImageBlocks {
		if !b.Consumed {
			t.Errorf("block %d not consumed", i)
		}
	}
}

func TestToleranceBoundary(t *testing.T) {
	// The default tolerance is 30pt. A block ending exactly 30pt above the
	// caption resolves in the first tier; one point further falls through to
	// the block-center tier.
	tests := []struct {
		name     string
		blockY1  float64
		wantTier string
	}{
		{"exactly at tolerance", 270, "same-column"},
		{"one past tolerance", 269, "block-center"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &render.Page{
				Index: 0, Width: 612, Height: 792,
				ImageBlocks: []render.ImageBlock{
					imageBlock(0, 50, 60, 280, tt.blockY1),
				},
			}
			r := NewRegionResolver(mainProfile(t), nil)
			r.Observe(page)

			region, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1"))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if region.Tier != tt.wantTier {
				t.Errorf("tier = %q, want %q", region.Tier, tt.wantTier)
			}
		})
	}
}

func TestNearestBlockWins(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 60, 280, 280),
			imageBlock(0, 50, 60, 280, 295),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y1 != 295 {
		t.Errorf("winner ends at %v, want 295 (smaller gap)", region.Rect.Y1)
	}
}

func TestFullWidthFigureAnyColumn(t *testing.T) {
	// A full-width figure fails the same-column tier for a single-column
	// caption and surfaces through the any-column tier instead.
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 40, 60, 560, 280),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Tier != "any-column" {
		t.Errorf("tier = %q, want any-column", region.Tier)
	}
	if region.Column != ColumnFull {
		t.Errorf("column = %v, want full", region.Column)
	}
}

func TestBlockConsumedAtMostOnce(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 60, 280, 290),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	if _, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1")); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	_, err := r.Resolve(captionAnchor(0, 50, 310, 280, 330, "2"))
	if !errors.Is(err, ErrNoRegionFound) {
		t.Fatalf("second Resolve err = %v, want ErrNoRegionFound", err)
	}
}

func TestNestedBlocksConsumedWithWinner(t *testing.T) {
	// Renderers often report sub-images inside a composite figure. Consuming
	// the outer block must consume the nested ones too.
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 60, 280, 290),
			imageBlock(0, 60, 70, 160, 150),
			imageBlock(0, 170, 70, 270, 150),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y1 != 290 {
		t.Errorf("winner ends at %v, want outer block 290", region.Rect.Y1)
	}
	for i, b := range page.ImageBlocks {
		if !b.Consumed {
			t.Errorf("block %d not consumed", i)
		}
	}
}

func TestPreviousPageFallback(t *testing.T) {
	first := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 400, 560, 740),
		},
	}
	second := &render.Page{Index: 1, Width: 612, Height: 792}

	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(first)
	r.Observe(second)

	region, err := r.Resolve(captionAnchor(1, 50, 80, 280, 100, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Tier != "previous-page" {
		t.Errorf("tier = %q, want previous-page", region.Tier)
	}
	if region.PageIndex != 0 {
		t.Errorf("PageIndex = %d, want 0", region.PageIndex)
	}
	if r.Lookback() != first {
		t.Error("Lookback does not return the retained previous page")
	}
}

func TestLookbackIsOnePageDeep(t *testing.T) {
	first := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 400, 560, 740),
		},
	}
	second := &render.Page{Index: 1, Width: 612, Height: 792}
	third := &render.Page{Index: 2, Width: 612, Height: 792}

	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(first)
	r.Observe(second)
	r.Observe(third)

	_, err := r.Resolve(captionAnchor(2, 50, 80, 280, 100, "1"))
	if !errors.Is(err, ErrNoRegionFound) {
		t.Fatalf("err = %v, want ErrNoRegionFound (page 0 is out of reach)", err)
	}
}

func TestDashedSeparatorClampsTop(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 100, 280, 500),
		},
		Drawings: []render.Drawing{
			{Rect: geom.NewRect(36, 305, 576, 305), Dashed: true},
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 520, 280, 540, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y0 != 307 {
		t.Errorf("region top = %v, want 307 (just below the separator)", region.Rect.Y0)
	}
}

func TestSolidSeparatorDoesNotClamp(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 100, 280, 500),
		},
		Drawings: []render.Drawing{
			{Rect: geom.NewRect(36, 305, 576, 305), Dashed: false},
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 520, 280, 540, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y0 != 100 {
		t.Errorf("region top = %v, want 100 (solid strokes are not separators)", region.Rect.Y0)
	}
}

func TestSectionTitleClampsTop(t *testing.T) {
	// Supplementary pages open figure groups with a section heading; a
	// region overlapping one must start below it.
	page := &render.Page{
		Index: 1, Width: 612, Height: 792,
		TextBlocks: []render.TextBlock{
			textBlock(50, 95, 280, 115, "Supplementary Figure Legends"),
		},
		ImageBlocks: []render.ImageBlock{
			imageBlock(1, 50, 90, 280, 500),
		},
	}
	r := NewRegionResolver(siProfile(t), nil)
	r.Observe(page)

	a := captionAnchor(1, 50, 520, 280, 540, "1")
	a.Supplementary = true
	region, err := r.Resolve(a)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y0 != 117 {
		t.Errorf("region top = %v, want 117 (below the section title)", region.Rect.Y0)
	}
}

func TestHeaderTextClampsTop(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		TextBlocks: []render.TextBlock{
			textBlock(50, 10, 400, 20, "www.nature.com/scientificreports"),
		},
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 15, 280, 500),
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	region, err := r.Resolve(captionAnchor(0, 50, 520, 280, 540, "1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if region.Rect.Y0 != 22 {
		t.Errorf("region top = %v, want 22 (below the running header)", region.Rect.Y0)
	}
}

func TestThinStripsAreNotCandidates(t *testing.T) {
	page := &render.Page{
		Index: 0, Width: 612, Height: 792,
		ImageBlocks: []render.ImageBlock{
			imageBlock(0, 50, 280, 280, 290), // 10pt decorative rule
		},
	}
	r := NewRegionResolver(mainProfile(t), nil)
	r.Observe(page)

	_, err := r.Resolve(captionAnchor(0, 50, 300, 280, 320, "1"))
	if !errors.Is(err, ErrNoRegionFound) {
		t.Fatalf("err = %v, want ErrNoRegionFound", err)
	}
}

func TestColumnTagging(t *testing.T) {
	p := mainProfile(t)
	r := NewRegionResolver(p, nil)
	page := &render.Page{Index: 0, Width: 612, Height: 792}

	tests := []struct {
		name string
		rect geom.Rect
		want Column
	}{
		{"left column", geom.NewRect(50, 100, 280, 300), ColumnLeft},
		{"right column", geom.NewRect(330, 100, 560, 300), ColumnRight},
		{"spans both", geom.NewRect(40, 100, 560, 300), ColumnFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.columnOf(page, tt.rect); got != tt.want {
				t.Errorf("columnOf(%v) = %v, want %v", tt.rect, got, tt.want)
			}
		})
	}
}
