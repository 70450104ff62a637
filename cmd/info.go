package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show metadata for a Reddit or TikTok video",
	Args:  cobra.ExactArgs(1),
	RunE:  infoRun,
}

func infoRun(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	track, err := resolve(cmd.Context(), m, args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), track)
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return writePlain(cmd.OutOrStdout(), track)
	}

	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 80
	}
	_, err = cmd.OutOrStdout().Write([]byte(renderCard(track, width) + "\n"))
	return err
}
