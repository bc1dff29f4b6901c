package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List supported OCSF versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := backend.Versions(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := output.Structured(outputFormat(cmd), versions); ok {
			return err
		}

		table := output.NewTable([]string{"Version", "URL Safe", "Default", "Latest", "Loaded"})
		for _, v := range versions {
			table.AddRow([]string{
				v.Version,
				v.URLSafe,
				strconv.FormatBool(v.Default),
				strconv.FormatBool(v.Latest),
				strconv.FormatBool(v.Resident),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
