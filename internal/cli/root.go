package cli

import (
	"github.com/spf13/cobra"

	"attributioncli/pkg/contracts"
)

// NewRootCmd builds the attribution root command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "attribution",
		Short:         "UTM attribution and engagement metrics from a flat contact export",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
