package extract

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// ManifestEntry records one extracted artifact. ImageFile is nil for
// caption-only artifacts whose anchor could not be resolved to a region.
type ManifestEntry struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Kind        Kind    `json:"kind"`
	ImageFile   *string `json:"image_file"`
	CaptionFile string  `json:"caption_file"`
}

// Assembler persists cropped rasters and caption texts under deterministic
// names derived from the document slug and the anchor label, and accumulates
// the manifest. Artifacts are never mutated after writing.
type Assembler struct {
	outDir  string
	slug    string
	entries []ManifestEntry
	// written tracks labels already assembled; true means an image was
	// persisted, false means caption-only so far.
	written map[string]bool
}

// NewAssembler creates an assembler writing under outDir.
func NewAssembler(outDir, slug string) (*Assembler, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	return &Assembler{
		outDir:  outDir,
		slug:    slug,
		written: map[string]bool{},
	}, nil
}

// Add writes the artifact pair for one anchor: the caption markdown (always)
// and the cropped raster (when img is non-nil). A duplicate label fails with
// ErrDuplicateArtifact, except that an image-bearing artifact replaces an
// earlier caption-only entry for the same label — a caption string repeated
// on a contents page must not block the real figure page.
func (a *Assembler) Add(anchor Anchor, img image.Image) (ManifestEntry, error) {
	label := anchor.Label()
	if hasImage, seen := a.written[label]; seen {
		if hasImage || img == nil {
			return ManifestEntry{}, fmt.Errorf("%s: %w", label, ErrDuplicateArtifact)
		}
		a.removeEntry(label)
	}

	stem := a.slug + "-" + label
	captionFile := stem + ".md"
	caption := fmt.Sprintf("# %s\n\n%s\n", anchor.Heading(), anchor.RawText)
	if err := os.WriteFile(filepath.Join(a.outDir, captionFile), []byte(caption), 0o644); err != nil {
		return ManifestEntry{}, fmt.Errorf("write caption %s: %w", captionFile, err)
	}

	entry := ManifestEntry{
		Index:       len(a.entries),
		Label:       label,
		Kind:        anchor.Kind,
		CaptionFile: captionFile,
	}
	if img != nil {
		imageFile := stem + ".png"
		f, err := os.Create(filepath.Join(a.outDir, imageFile))
		if err != nil {
			return ManifestEntry{}, fmt.Errorf("write image %s: %w", imageFile, err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return ManifestEntry{}, fmt.Errorf("encode %s: %w", imageFile, err)
		}
		if err := f.Close(); err != nil {
			return ManifestEntry{}, err
		}
		entry.ImageFile = &imageFile
	}

	a.entries = append(a.entries, entry)
	a.written[label] = img != nil
	return entry, nil
}

func (a *Assembler) removeEntry(label string) {
	for i, e := range a.entries {
		if e.Label == label {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			break
		}
	}
	for i := range a.entries {
		a.entries[i].Index = i
	}
}

// Entries returns the manifest accumulated so far, in artifact order.
func (a *Assembler) Entries() []ManifestEntry {
	return a.entries
}

// WriteManifest persists the manifest as indented JSON and returns its path.
func (a *Assembler) WriteManifest() (string, error) {
	entries := a.entries
	if entries == nil {
		entries = []ManifestEntry{}
	}
	data, err := sonic.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.outDir, "manifest.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
