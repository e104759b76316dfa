// Package cli provides the command-line interface for discogs-tools.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/discogstools/config"
	"github.com/jonwraymond/discogstools/internal/app"
)

// ErrToolFailed is returned by the one-shot commands when the tool reported
// an error notification. The notification has already been printed.
var ErrToolFailed = errors.New("tool reported an error")

type rootFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
}

// NewRootCmd creates the root command for discogs-tools.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "discogs-tools",
		Short: "Discogs catalog lookup tools for assistant hosts",
		Long: `discogs-tools exposes two Discogs catalog tools, search_releases and
get_release_details, over a JSON-RPC HTTP endpoint. Results are cached in
memory and upstream calls run on a bounded worker pool.

Set DISCOGS_CONSUMER_KEY and DISCOGS_CONSUMER_SECRET to use authenticated
Discogs requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file (default ./discogs-tools.yaml when present)")
	pf.StringVar(&flags.envFile, "env-file", "", "Environment file (default ./.env when present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: json or console")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "discogs-tools %s\n", version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(
		versionCmd,
		newServeCmd(flags, version),
		newSearchCmd(flags, version),
		newReleaseCmd(flags, version),
	)
	return rootCmd
}

// loadConfig reads the configuration and applies flag overrides.
func (f *rootFlags) loadConfig(ctx context.Context) (*config.Config, error) {
	var opts []config.Option
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Observe.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Observe.LogFormat = f.logFormat
	}
	return cfg, cfg.Validate()
}

// newApp loads configuration and assembles the process. Logs go to logOut.
func (f *rootFlags) newApp(ctx context.Context, version string, logOut io.Writer, mutate func(*config.Config)) (*app.App, error) {
	cfg, err := f.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	return app.New(ctx, cfg, version, app.WithLogOutput(logOut))
}
