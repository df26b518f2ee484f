package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	sessionsrender "github.com/kvist-dev/guestpass/internal/adapters/render/sessions"
	"github.com/spf13/cobra"
)

func newSessionsCmd(app *app) *cobra.Command {
	var asJSON bool
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List tracked sessions awaiting cleanup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.status.Sessions(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}

			view := sessionsrender.Render(status, sessionsrender.RenderOptions{
				Now:        app.clock.Now(),
				StaleAfter: staleAfter,
			})
			_, err = fmt.Fprintln(out, view)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", time.Hour, "Highlight sessions older than this")

	return cmd
}
