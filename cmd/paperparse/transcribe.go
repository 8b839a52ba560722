package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ktkarchive/paper-parse/internal/ai"
	"github.com/ktkarchive/paper-parse/internal/split"
)

func newTranscriber(provider, model string) (ai.Transcriber, error) {
	switch strings.ToLower(provider) {
	case "", "gemini":
		return ai.NewGemini(ai.KeysFromEnv(), model)
	case "local":
		return ai.Local{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (gemini|local)", provider)
	}
}

func transcribeCmd() *cobra.Command {
	var out string
	var model string
	var provider string
	var figureDir string

	cmd := &cobra.Command{
		Use:   "transcribe <pdf>",
		Short: "Transcribe a paper PDF into faithful Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]
			t, err := newTranscriber(provider, model)
			if err != nil {
				return err
			}

			md, err := t.Transcribe(cmd.Context(), pdfPath, ai.Options{FigureDirName: figureDir})
			if err != nil {
				return err
			}
			if out == "" {
				out = split.InferSlug(pdfPath) + ".md"
			}
			if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(md))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output Markdown path (default: <slug>.md)")
	cmd.Flags().StringVar(&model, "model", ai.DefaultModel, "Gemini model name")
	cmd.Flags().StringVar(&provider, "provider", "gemini", "transcription provider: gemini|local")
	cmd.Flags().StringVar(&figureDir, "figure-dir", "", "extracted figure directory name to reference in image links")
	return cmd
}
