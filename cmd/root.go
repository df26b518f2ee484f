package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "guestpass",
		Short:         "Provision and clean up temporary guest workspaces on an AnythingLLM server",
		Long:          "guestpass creates a throwaway (user, workspace) pair on an AnythingLLM-compatible server, prints an SSO redirect URL into the workspace, tracks every provisioned pair on disk, and reconciles cleanup so each remote resource is eventually deleted.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newProvisionCmd(app),
		newCleanupCmd(app),
		newSessionsCmd(app),
	)

	return rootCmd
}
