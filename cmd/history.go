package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipstream/internal/history"
	"clipstream/internal/log"
	"clipstream/internal/ui"
)

var flagRemove bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Replay a previously played video",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVarP(&flagRemove, "remove", "r", false, "Remove the selected entry instead of playing it")
}

func historyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := history.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	// Show history in fzf
	items := history.FormatForDisplay(entries)
	idx, err := ui.Select(ctx, "History", items)
	if err != nil {
		return err
	}

	selected := entries[idx]

	if flagRemove {
		ok, err := ui.Confirm(ctx, fmt.Sprintf("Remove %q?", items[idx]))
		if err != nil || !ok {
			return err
		}
		return store.Remove(selected.ID)
	}

	log.Debugf("replaying: %s %s", selected.Source, selected.Info.Identifier)

	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	// Decoding keeps the stored metadata; TikTok tracks still fetch a fresh
	// playback URL when they start.
	track, err := m.Decode(selected.Source, selected.Info)
	if err != nil {
		return fmt.Errorf("restoring history entry: %w", err)
	}
	return handleTrack(ctx, track)
}
