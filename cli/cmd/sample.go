package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/internal/client"
	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <class>",
	Short: "Generate a conformant sample event",
	Long: `Generate an event for the class holding every required attribute, plus
recommended ones with --recommended. The same --seed gives the same event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recommended, _ := cmd.Flags().GetBool("recommended")
		seed, _ := cmd.Flags().GetInt64("seed")

		s, err := backend.Sample(cmd.Context(), schemaVersion(cmd), client.SampleRequest{
			Class:              args[0],
			IncludeRecommended: recommended,
			Seed:               seed,
		})
		if err != nil {
			return err
		}

		// A sample is a document; tables would flatten it.
		if outputFormat(cmd) == output.FormatYAML {
			return output.YAML(s.Event)
		}
		return output.JSON(s.Event)
	},
}

func init() {
	sampleCmd.Flags().Bool("recommended", false, "include recommended attributes")
	sampleCmd.Flags().Int64("seed", 0, "random seed (0 picks one)")
	rootCmd.AddCommand(sampleCmd)
}
