package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ktkarchive/paper-parse/internal/split"
)

func splitCaptionsCmd() *cobra.Command {
	var outDir string
	var slug string
	var si bool
	var outMain string

	cmd := &cobra.Command{
		Use:   "split-captions <markdown>",
		Short: "Split caption blocks out of a transcribed paper into per-figure files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			content, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			if slug == "" {
				slug = split.InferSlug(input)
			}

			captions, cleaned := split.Captions(string(content), si)
			paths, err := split.WriteCaptions(captions, slug, outDir, si)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(p))
			}

			dest := outMain
			if dest == "" {
				dest = input
			}
			if err := os.WriteFile(dest, []byte(cleaned), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d caption(s) extracted; cleaned source -> %s\n", len(captions), dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory for caption files")
	cmd.Flags().StringVar(&slug, "slug", "", "output filename stem (default: inferred from the input name)")
	cmd.Flags().BoolVar(&si, "si", false, "treat input as Supplementary Information")
	cmd.Flags().StringVar(&outMain, "out-main", "", "write the cleaned source here instead of in place")
	return cmd
}

func splitBodyCmd() *cobra.Command {
	var outDir string
	var slug string

	cmd := &cobra.Command{
		Use:   "split-body <markdown>",
		Short: "Split a caption-cleaned main article into header/main/reference/backmatter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			content, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			if slug == "" {
				slug = split.InferSlug(input)
			}

			parts, err := split.SplitBody(string(content), slug, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(parts.Header))
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(parts.Main))
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(parts.Reference))
			if parts.Backmatter != "" {
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(parts.Backmatter))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&slug, "slug", "", "output filename stem (default: inferred from the input name)")
	return cmd
}
