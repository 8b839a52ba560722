// Package logging provides configurable zap logger creation for the CLI and
// the extraction engine.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Styles accepted by New.
const (
	StyleTerminal = "terminal"
	StyleJSON     = "json"
	StyleOff      = "off"
)

// New creates a logger in the given style and level. Style "off" returns a
// no-op logger; an empty style defaults to terminal at info.
func New(style, level string) (*zap.Logger, error) {
	if style == "" {
		style = StyleTerminal
	}
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	switch style {
	case StyleOff:
		return zap.NewNop(), nil
	case StyleJSON:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	case StyleTerminal:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.DisableStacktrace = true
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unknown log style %q", style)
	}
}
