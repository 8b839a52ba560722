package extract

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ktkarchive/paper-parse/internal/geom"
	"github.com/ktkarchive/paper-parse/internal/render"
)

// fakeDocument serves hand-built page models, standing in for the MuPDF
// adapter so the pipeline runs without a renderer.
type fakeDocument struct {
	pages []*render.Page
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) Page(index int) (*render.Page, error) { return d.pages[index], nil }

func (d *fakeDocument) Close() error { return nil }

// figurePage builds a page at zoom 1 whose raster carries a black figure
// matching the declared image block, followed by its caption block.
func figurePage(index int, number string) *render.Page {
	raster := image.NewRGBA(image.Rect(0, 0, 612, 792))
	for y := 0; y < 792; y++ {
		for x := 0; x < 612; x++ {
			raster.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for y := 110; y < 280; y++ {
		for x := 60; x < 270; x++ {
			raster.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return &render.Page{
		Index: index, Width: 612, Height: 792, Zoom: 1,
		Raster: raster,
		TextBlocks: []render.TextBlock{
			{
				Rect:     geom.NewRect(50, 300, 280, 330),
				Text:     "Figure " + number + ". Synthetic growth curves for the run.",
				FontSize: 9,
			},
		},
		ImageBlocks: []render.ImageBlock{
			{Rect: geom.NewRect(50, 100, 280, 290), PageIndex: index},
		},
	}
}

// captionOnlyPage carries a caption with no image block anywhere in reach.
func captionOnlyPage(index int, number string) *render.Page {
	return &render.Page{
		Index: index, Width: 612, Height: 792, Zoom: 1,
		Raster: image.NewRGBA(image.Rect(0, 0, 612, 792)),
		TextBlocks: []render.TextBlock{
			{
				Rect:     geom.NewRect(50, 300, 280, 330),
				Text:     "Figure " + number + ". Synthetic growth curves for the run.",
				FontSize: 9,
			},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	doc := &fakeDocument{pages: []*render.Page{
		figurePage(0, "1"),
		captionOnlyPage(1, "2"),
	}}

	res, err := Run(context.Background(), doc, mainProfile(t), Config{
		OutDir: dir,
		Slug:   "sample",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	if res.Figures != 1 {
		t.Errorf("Figures = %d, want 1", res.Figures)
	}
	if res.CaptionOnly != 1 {
		t.Errorf("CaptionOnly = %d, want 1", res.CaptionOnly)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("Artifacts = %d, want 2", len(res.Artifacts))
	}

	for _, name := range []string{"sample-figure1.png", "sample-figure1.md", "sample-figure2.md", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "sample-figure2.png")); !os.IsNotExist(err) {
		t.Error("caption-only figure2 wrote an image")
	}
	if res.Artifacts[0].ImageFile == nil {
		t.Error("figure1 artifact has no image")
	}
	if res.Artifacts[1].ImageFile != nil {
		t.Error("figure2 artifact unexpectedly has an image")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	newDoc := func() *fakeDocument {
		return &fakeDocument{pages: []*render.Page{
			figurePage(0, "1"),
			figurePage(1, "2"),
			captionOnlyPage(2, "3"),
		}}
	}

	var manifests [2][]byte
	for i := range manifests {
		dir := t.TempDir()
		res, err := Run(context.Background(), newDoc(), mainProfile(t), Config{
			OutDir: dir,
			Slug:   "sample",
		})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		data, err := os.ReadFile(res.Manifest)
		if err != nil {
			t.Fatal(err)
		}
		manifests[i] = data
	}
	if string(manifests[0]) != string(manifests[1]) {
		t.Errorf("manifests differ between identical runs:\n%s\n---\n%s", manifests[0], manifests[1])
	}
}

func TestRunUpgradesContentsPageDuplicate(t *testing.T) {
	// A contents page repeats the caption string before the real figure page.
	// The image-bearing occurrence must win; a third repeat is dropped.
	dir := t.TempDir()
	doc := &fakeDocument{pages: []*render.Page{
		captionOnlyPage(0, "1"),
		figurePage(1, "1"),
		figurePage(2, "1"),
	}}

	res, err := Run(context.Background(), doc, mainProfile(t), Config{
		OutDir: dir,
		Slug:   "sample",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Figures != 1 {
		t.Errorf("Figures = %d, want 1", res.Figures)
	}
	if len(res.Artifacts) != 1 {
		t.Fatalf("Artifacts = %d, want 1", len(res.Artifacts))
	}
	if res.Artifacts[0].ImageFile == nil {
		t.Error("surviving figure1 entry lost its image")
	}
}

func TestRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &fakeDocument{pages: []*render.Page{figurePage(0, "1")}}
	if _, err := Run(ctx, doc, mainProfile(t), Config{OutDir: t.TempDir(), Slug: "s"}); err == nil {
		t.Fatal("Run ignored a canceled context")
	}
}
