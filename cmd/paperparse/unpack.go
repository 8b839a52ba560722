package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ktkarchive/paper-parse/internal/ai"
	"github.com/ktkarchive/paper-parse/internal/extract"
	"github.com/ktkarchive/paper-parse/internal/render"
	"github.com/ktkarchive/paper-parse/internal/split"
)

// unpackResult is the combined output of the full pipeline.
type unpackResult struct {
	Figures      extract.Result   `json:"figures"`
	Transcript   string           `json:"transcript,omitempty"`
	CaptionFiles []string         `json:"caption_files,omitempty"`
	Body         *split.BodyParts `json:"body,omitempty"`
}

func unpackCmd() *cobra.Command {
	var out string
	var profileName string
	var profileFile string
	var slug string
	var si bool
	var model string
	var provider string

	cmd := &cobra.Command{
		Use:   "unpack <pdf>",
		Short: "Run the full pipeline: figures, transcription, caption and body split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			pdfPath := args[0]
			prof, err := loadProfile(profileName, profileFile, si, pdfPath)
			if err != nil {
				return err
			}
			if slug == "" {
				slug = split.InferSlug(pdfPath)
			}

			doc, err := render.Open(pdfPath, prof.Zoom)
			if err != nil {
				return err
			}
			figRes, err := extract.Run(cmd.Context(), doc, prof, extract.Config{
				OutDir: out,
				Slug:   slug,
				Logger: logger,
			})
			doc.Close()
			if err != nil {
				return err
			}
			result := unpackResult{Figures: figRes}

			// Transcription and splitting are best-effort: figure output
			// alone is still a useful partial result.
			if err := transcribeAndSplit(cmd, &result, pdfPath, out, slug, prof.Supplementary, provider, model, logger); err != nil {
				logger.Warn("transcription step skipped", zap.Error(err))
			}

			b, err := sonic.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&profileName, "profile", "", "built-in journal profile name")
	cmd.Flags().StringVar(&profileFile, "profile-file", "", "path to a JSON journal profile")
	cmd.Flags().StringVar(&slug, "slug", "", "output filename stem (default: inferred from the PDF name)")
	cmd.Flags().BoolVar(&si, "si", false, "treat input as Supplementary Information")
	cmd.Flags().StringVar(&model, "model", ai.DefaultModel, "Gemini model name")
	cmd.Flags().StringVar(&provider, "provider", "gemini", "transcription provider: gemini|local")
	return cmd
}

func transcribeAndSplit(cmd *cobra.Command, result *unpackResult, pdfPath, out, slug string, si bool, provider, model string, logger *zap.Logger) error {
	t, err := newTranscriber(provider, model)
	if err != nil {
		return err
	}
	md, err := t.Transcribe(cmd.Context(), pdfPath, ai.Options{FigureDirName: filepath.Base(out)})
	if err != nil {
		return err
	}

	captions, cleaned := split.Captions(md, si)
	paths, err := split.WriteCaptions(captions, slug, out, si)
	if err != nil {
		return err
	}
	for _, p := range paths {
		result.CaptionFiles = append(result.CaptionFiles, filepath.Base(p))
	}

	if si {
		// Supplementary files get no four-part split; keep the cleaned
		// transcript whole.
		dest := filepath.Join(out, slug+"-SI.md")
		if err := os.WriteFile(dest, []byte(cleaned), 0o644); err != nil {
			return err
		}
		result.Transcript = dest
		return nil
	}

	parts, err := split.SplitBody(cleaned, slug, out)
	if err != nil {
		return err
	}
	result.Body = &parts
	result.Transcript = parts.Main
	logger.Info("pipeline complete",
		zap.Int("figures", result.Figures.Figures),
		zap.Int("tables", result.Figures.Tables),
		zap.Int("captions", len(result.CaptionFiles)))
	return nil
}
