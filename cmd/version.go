package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "goslice %s\n", version.GetFullVersion())
			return err
		},
	}
}
