package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kvist-dev/guestpass/internal/adapters/profiles"
	"github.com/kvist-dev/guestpass/internal/application"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/spf13/cobra"
)

func newProvisionCmd(app *app) *cobra.Command {
	var visitorName string
	var profileName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create a guest user and workspace, print the SSO redirect URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, app, visitorName, profileName, asJSON)
		},
	}

	cmd.Flags().StringVar(&visitorName, "name", "", "Optional visitor label used in the generated username")
	cmd.Flags().StringVar(&profileName, "profile", profiles.DefaultProfile, "Workspace settings profile")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runProvision(cmd *cobra.Command, app *app, visitorName, profileName string, asJSON bool) error {
	platform, err := app.platform(cmd.Context())
	if err != nil {
		return err
	}

	profileSet, err := app.workspaceProfiles()
	if err != nil {
		return err
	}
	settings, err := profileSet.Settings(profileName)
	if err != nil {
		return err
	}

	service := app.provisionService(platform)
	request := application.ProvisionRequest{VisitorName: visitorName, Settings: settings}

	var result domain.ProvisionResult
	provision := func(ctx context.Context) error {
		var err error
		result, err = service.Provision(ctx, request)
		return err
	}

	if asJSON {
		err = provision(cmd.Context())
	} else {
		err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Provisioning guest session...", provision)
	}
	if err != nil {
		var failure *domain.ProvisionFailure
		if errors.As(err, &failure) {
			writeProvisionFailure(cmd, failure)
		}
		return err
	}

	return writeProvisionResult(cmd, result, asJSON)
}

func writeProvisionFailure(cmd *cobra.Command, failure *domain.ProvisionFailure) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "failed at step: %s\n", failure.Step)
	if failure.UserID != "" {
		fmt.Fprintf(out, "user created before failure: %s\n", failure.UserID)
	}
	if failure.WorkspaceSlug != "" {
		fmt.Fprintf(out, "workspace created before failure: %s\n", failure.WorkspaceSlug)
	}
}

func writeProvisionResult(cmd *cobra.Command, result domain.ProvisionResult, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		payload := map[string]any{
			"sessionId":     result.SessionID,
			"userId":        result.UserID,
			"workspaceSlug": result.WorkspaceSlug,
			"redirectUrl":   result.RedirectURL,
			"documents":     stepOutcomeLabel(result.Documents),
			"association":   stepOutcomeLabel(result.Association),
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	fmt.Fprintf(out, "session:     %s\n", result.SessionID)
	fmt.Fprintf(out, "user:        %s\n", result.UserID)
	fmt.Fprintf(out, "workspace:   %s\n", result.WorkspaceSlug)
	fmt.Fprintf(out, "documents:   %s\n", stepOutcomeLabel(result.Documents))
	fmt.Fprintf(out, "association: %s\n", stepOutcomeLabel(result.Association))
	fmt.Fprintf(out, "redirect:    %s\n", result.RedirectURL)

	return nil
}

func stepOutcomeLabel(outcome domain.StepOutcome) string {
	if outcome.Performed {
		return "performed"
	}
	if outcome.Reason == "" {
		return "skipped"
	}

	return "skipped: " + outcome.Reason
}
