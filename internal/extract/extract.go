package extract

import (
	"context"
	"errors"
	"image"

	"go.uber.org/zap"

	"github.com/ktkarchive/paper-parse/internal/profile"
	"github.com/ktkarchive/paper-parse/internal/render"
)

// Config controls one extraction run.
type Config struct {
	OutDir string
	Slug   string
	Logger *zap.Logger
}

// Result summarizes a run for the caller.
type Result struct {
	Slug        string          `json:"slug"`
	Profile     string          `json:"profile"`
	OutDir      string          `json:"out_dir"`
	Pages       int             `json:"pages"`
	Figures     int             `json:"figures"`
	Tables      int             `json:"tables"`
	CaptionOnly int             `json:"caption_only"`
	Manifest    string          `json:"manifest"`
	Artifacts   []ManifestEntry `json:"artifacts"`
}

// Run walks the document strictly in page order: captions detected per page,
// each anchor resolved against the unconsumed block pool (current page plus
// one page of lookback), the winning region trimmed and persisted. One
// anchor's failure never aborts the document — unresolved captions are
// emitted text-only, and partial output is the expected steady state on
// atypical pages. The run is deterministic: the same document and profile
// always produce identical manifests and crop boundaries.
func Run(ctx context.Context, doc render.Document, prof *profile.Profile, cfg Config) (Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res := Result{
		Slug:    cfg.Slug,
		Profile: prof.Name,
		OutDir:  cfg.OutDir,
		Pages:   doc.NumPages(),
	}

	asm, err := NewAssembler(cfg.OutDir, cfg.Slug)
	if err != nil {
		return res, err
	}
	detector := NewCaptionDetector(prof)
	resolver := NewRegionResolver(prof, logger)
	trimmer := NewAutoTrimmer(prof)

	for i := 0; i < doc.NumPages(); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := doc.Page(i)
		if err != nil {
			logger.Warn("page skipped", zap.Int("page", i), zap.Error(err))
			continue
		}
		resolver.Observe(page)

		for _, anchor := range detector.Detect(page) {
			img := resolveAndTrim(resolver, trimmer, page, anchor, logger)

			entry, err := asm.Add(anchor, img)
			if err != nil {
				if errors.Is(err, ErrDuplicateArtifact) {
					logger.Warn("duplicate artifact skipped",
						zap.String("label", anchor.Label()),
						zap.Int("page", anchor.PageIndex))
					continue
				}
				return res, err
			}
			switch {
			case entry.ImageFile == nil:
				res.CaptionOnly++
			case anchor.Kind == KindTable:
				res.Tables++
			default:
				res.Figures++
			}
		}
	}

	res.Manifest, err = asm.WriteManifest()
	if err != nil {
		return res, err
	}
	res.Artifacts = asm.Entries()
	return res, nil
}

// resolveAndTrim produces the final raster for one anchor, or nil when the
// anchor stays caption-only.
func resolveAndTrim(resolver *RegionResolver, trimmer *AutoTrimmer, page *render.Page, anchor Anchor, logger *zap.Logger) image.Image {
	region, err := resolver.Resolve(anchor)
	if err != nil {
		logger.Warn("caption emitted text-only", zap.String("label", anchor.Label()), zap.Error(err))
		return nil
	}

	srcPage := page
	if region.PageIndex != page.Index {
		srcPage = resolver.Lookback()
	}
	crop, err := srcPage.CropRaster(region.Rect)
	if err != nil {
		logger.Warn("crop failed", zap.String("label", anchor.Label()), zap.Error(err))
		return nil
	}

	trimmed, err := trimmer.Trim(crop)
	if err != nil {
		// Degenerate regions come back untrimmed rather than empty.
		logger.Warn("trim degenerate", zap.String("label", anchor.Label()), zap.Error(err))
	}
	return trimmed
}
