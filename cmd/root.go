// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipstream/internal/config"
	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
	"clipstream/internal/source/reddit"
	"clipstream/internal/source/tiktok"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDownload string
	flagPlayer   string
	flagJSON     bool
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "clipstream [url]",
	Short: "Play Reddit and TikTok videos from the terminal",
	Long: `clipstream resolves Reddit post and TikTok video links and plays them
with mpv/vlc, prints their metadata, or downloads them with ffmpeg.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clipstream %s\n", Version)
	},
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDownload, "download", "d", "", "Download to directory instead of playing")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print resolved track metadata as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Setup(cfg.LogLevel, cfg.Debug)
	log.Debugf("config loaded: player=%s history=%v fingerprint=%v", cfg.Player, cfg.History, cfg.Fingerprint)
	return nil
}

// newManager builds the source manager from the loaded config.
func newManager() (*source.Manager, error) {
	r, err := reddit.New(cfg.RedditAPI, cfg.HTTPOptions())
	if err != nil {
		return nil, err
	}
	t, err := tiktok.New(cfg.TikTokAPI, cfg.HTTPOptions())
	if err != nil {
		r.Close()
		return nil, err
	}
	return source.NewManager(r, t), nil
}

// exitCode distinguishes content that cannot be played (2) from upstream
// failures (3) so scripts can tell a bad link from a broken API.
func exitCode(err error) int {
	switch {
	case errors.Is(err, media.ErrNotPlayable):
		return 2
	case errors.Is(err, media.ErrUpstream):
		return 3
	default:
		return 1
	}
}
