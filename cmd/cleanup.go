package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sessionsrender "github.com/kvist-dev/guestpass/internal/adapters/render/sessions"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/spf13/cobra"
)

func newCleanupCmd(app *app) *cobra.Command {
	var interval time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete all tracked guest users and workspaces",
		Long:  "Reconciles the session store against the platform: deletes each tracked session's workspace and user, and prunes records whose resources were both confirmed gone. Failed sessions stay tracked and are retried on the next pass.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd, app, interval, asJSON)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Re-run reconciliation on this interval (0 runs once)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runCleanup(cmd *cobra.Command, app *app, interval time.Duration, asJSON bool) error {
	platform, err := app.platform(cmd.Context())
	if err != nil {
		return err
	}
	service := app.cleanupService(platform)

	if interval <= 0 {
		return runCleanupOnce(cmd, app, service, asJSON)
	}

	// Standing in for the cron trigger of the surrounding service. Each tick
	// is an independent pass; the reconciler tolerates overlapping history.
	for {
		if err := runCleanupOnce(cmd, app, service, asJSON); err != nil {
			app.logger.Error("reconciliation pass failed", "err", err)
		}

		if err := app.clock.Sleep(cmd.Context(), interval); err != nil {
			return nil
		}
	}
}

func runCleanupOnce(cmd *cobra.Command, app *app, service cleanupRunner, asJSON bool) error {
	var summary domain.CleanupSummary
	reconcile := func(ctx context.Context) error {
		var err error
		summary, err = service.Reconcile(ctx)
		return err
	}

	var err error
	if asJSON {
		err = reconcile(cmd.Context())
	} else {
		err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Reconciling guest sessions...", reconcile)
	}
	if err != nil {
		return err
	}

	return writeCleanupSummary(cmd, summary, asJSON)
}

type cleanupRunner interface {
	Reconcile(ctx context.Context) (domain.CleanupSummary, error)
}

func writeCleanupSummary(cmd *cobra.Command, summary domain.CleanupSummary, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	_, err := fmt.Fprintln(out, sessionsrender.RenderSummary(summary))
	return err
}
