package render

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzDocument renders pages through MuPDF. Rasters come from the page
// renderer at Zoom*72 dpi; text and image blocks are recovered from MuPDF's
// structured-text HTML, and dashed separators from the page SVG.
type FitzDocument struct {
	doc  *fitz.Document
	zoom int
}

// Open opens a PDF for page-model construction at the given zoom factor
// (4 approximates 300 dpi output).
func Open(path string, zoom int) (*FitzDocument, error) {
	if zoom <= 0 {
		zoom = 4
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &FitzDocument{doc: doc, zoom: zoom}, nil
}

// NumPages returns the page count.
func (d *FitzDocument) NumPages() int {
	return d.doc.NumPage()
}

// Close releases the underlying document.
func (d *FitzDocument) Close() error {
	return d.doc.Close()
}

// Page builds the normalized model for one page.
func (d *FitzDocument) Page(index int) (*Page, error) {
	bound, err := d.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("page %d bounds: %w", index, err)
	}

	raster, err := d.doc.ImageDPI(index, float64(d.zoom)*72)
	if err != nil {
		return nil, fmt.Errorf("page %d raster: %w", index, err)
	}

	html, err := d.doc.HTML(index, true)
	if err != nil {
		return nil, fmt.Errorf("page %d text: %w", index, err)
	}
	texts, images, err := parseHTMLBlocks(html, index)
	if err != nil {
		return nil, fmt.Errorf("page %d blocks: %w", index, err)
	}

	// SVG extraction is best-effort: a page without vector content is
	// common and a malformed SVG only costs the separator clamp.
	var drawings []Drawing
	if svg, err := d.doc.SVG(index); err == nil {
		drawings = parseSVGDrawings(svg)
	}

	return &Page{
		Index:       index,
		Width:       float64(bound.Dx()),
		Height:      float64(bound.Dy()),
		Zoom:        d.zoom,
		Raster:      raster,
		TextBlocks:  texts,
		ImageBlocks: images,
		Drawings:    drawings,
	}, nil
}
