package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ktkarchive/paper-parse/internal/logging"
	"github.com/ktkarchive/paper-parse/internal/profile"
)

var (
	logStyle string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "paperparse",
		Short: "Unpack scanned scientific papers into figures, captions, and Markdown",
	}
	root.PersistentFlags().StringVar(&logStyle, "log", logging.StyleTerminal, "log style: terminal|json|off")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(figuresCmd())
	root.AddCommand(transcribeCmd())
	root.AddCommand(splitCaptionsCmd())
	root.AddCommand(splitBodyCmd())
	root.AddCommand(unpackCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logStyle, logLevel)
}

// loadProfile picks the journal profile: an explicit profile file wins, then
// a named built-in, then the --si shortcut, and finally first-page
// auto-detection.
func loadProfile(name, file string, si bool, pdfPath string) (*profile.Profile, error) {
	switch {
	case file != "":
		return profile.Load(file)
	case name != "":
		return profile.Get(name)
	case si:
		return profile.Get("scientific-reports-si")
	default:
		p, err := profile.Detect(pdfPath)
		if err != nil {
			return nil, fmt.Errorf("%w; pass --profile (built-ins: %v) or --profile-file", err, profile.Names())
		}
		return p, nil
	}
}
