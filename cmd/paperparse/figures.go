package main

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ktkarchive/paper-parse/internal/extract"
	"github.com/ktkarchive/paper-parse/internal/profile"
	"github.com/ktkarchive/paper-parse/internal/render"
	"github.com/ktkarchive/paper-parse/internal/split"
)

func figuresCmd() *cobra.Command {
	var out string
	var profileName string
	var profileFile string
	var slug string
	var si bool
	var zoom int

	cmd := &cobra.Command{
		Use:   "figures <pdf>",
		Short: "Extract figure/table crops and caption files from a paper PDF",
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
			if zoom > 0 {
				prof.Zoom = zoom
			}
			if slug == "" {
				slug = split.InferSlug(pdfPath)
			}
			logger.Info("extracting figures",
				zap.String("pdf", pdfPath),
				zap.String("profile", prof.Name),
				zap.Int("pages", profile.PageCount(pdfPath)))

			doc, err := render.Open(pdfPath, prof.Zoom)
			if err != nil {
				return err
			}
			defer doc.Close()

			res, err := extract.Run(cmd.Context(), doc, prof, extract.Config{
				OutDir: out,
				Slug:   slug,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			b, err := sonic.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory for crops, captions, and the manifest")
	cmd.Flags().StringVar(&profileName, "profile", "", "built-in journal profile name")
	cmd.Flags().StringVar(&profileFile, "profile-file", "", "path to a JSON journal profile")
	cmd.Flags().StringVar(&slug, "slug", "", "output filename stem (default: inferred from the PDF name)")
	cmd.Flags().BoolVar(&si, "si", false, "treat input as Supplementary Information")
	cmd.Flags().IntVar(&zoom, "zoom", 0, "raster zoom factor override (default: profile value, 4 = ~300 dpi)")
	return cmd
}
