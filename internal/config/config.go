// Package config holds the CLI-sourced settings every cmd/backline
// subcommand needs: which symbol/feed to run, what the pipeline's savemem
// window is, and where the serve/broadcast/export layers listen. No file or
// environment-variable sources are read here (spec.md §6.3 keeps the core
// free of ambient configuration); everything comes from flags registered
// with spf13/cobra+pflag the way NimbleMarkets-dbn-go's CLI commands do.
package config

import "github.com/spf13/pflag"

// Config is the flag-populated settings shared by every subcommand.
type Config struct {
	// Symbol identifies the instrument being processed, for labeling
	// broadcast/export output only — the pipeline itself is symbol-agnostic.
	Symbol string
	// Savemem is the requested q-buffer retention window in bars; 0 means
	// unbounded (spec.md §5 memory policy). It is only stored on the
	// pipeline Context: cmd/backline creates its feed and indicator lines
	// unbounded, and no line is sized from this value.
	Savemem int
	// Listen is the websocket broadcast address ("serve" subcommand).
	Listen string
	// MetricsAddr is the Prometheus /metrics address; empty disables it.
	MetricsAddr string
	// RedisAddr, when non-empty, enables the fanout relay between
	// broadcast instances.
	RedisAddr string
	// ExportDir is where the CSV export writer rotates its daily files.
	ExportDir string
	// HistorySize is the ring buffer capacity used to hydrate newly
	// connected broadcast clients.
	HistorySize int
}

// Default returns a Config with the same conservative defaults every
// subcommand falls back to when a flag is left unset.
func Default() Config {
	return Config{
		Symbol:      "UNKNOWN",
		Savemem:     0,
		Listen:      ":8080",
		MetricsAddr: "",
		RedisAddr:   "",
		ExportDir:   "./export",
		HistorySize: 3600,
	}
}

// RegisterFlags binds every Config field to a flag on fs, seeded with cfg's
// current values as defaults — call with a *Config holding Default() before
// cobra parses the command line.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Symbol, "symbol", "s", cfg.Symbol, "instrument symbol label for broadcast/export output")
	fs.IntVarP(&cfg.Savemem, "savemem", "m", cfg.Savemem, "requested q-buffer retention window in bars, stored on the pipeline context only; lines stay unbounded")
	fs.StringVarP(&cfg.Listen, "listen", "l", cfg.Listen, "websocket broadcast listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus /metrics listen address (empty disables it)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for cross-instance fanout (empty disables it)")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for daily CSV export files")
	fs.IntVar(&cfg.HistorySize, "history-size", cfg.HistorySize, "ring buffer capacity for hydrating new broadcast clients")
}
