package cmd

import "github.com/spf13/cobra"

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored platform API key",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the platform API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.secrets.Put(cmd.Context(), apiKeyName, apiKey)
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "Platform API key (bearer token)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored platform API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.secrets.Delete(cmd.Context(), apiKeyName)
		},
	}
}
