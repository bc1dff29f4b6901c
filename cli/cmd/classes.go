package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
)

var classesCmd = &cobra.Command{
	Use:     "classes [class]",
	Aliases: []string{"class"},
	Short:   "List event classes, or describe one",
	Long: `List the event classes of an OCSF version ordered by uid. With a class
argument ("Process Activity" or "Process Activity (1007)"), describe that class.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := schemaVersion(cmd)

		if len(args) == 1 {
			class, err := backend.Class(cmd.Context(), version, args[0])
			if err != nil {
				return err
			}
			if ok, err := output.Structured(outputFormat(cmd), class); ok {
				return err
			}
			output.Info("%s (ID: %d)", class.Name, class.ID)
			if class.Category != "" {
				output.Println("Category:", class.Category)
			}
			output.Println(class.Details)
			return nil
		}

		classes, err := backend.Classes(cmd.Context(), version)
		if err != nil {
			return err
		}
		if ok, err := output.Structured(outputFormat(cmd), classes); ok {
			return err
		}
		if len(classes) == 0 {
			output.Info("No event classes found")
			return nil
		}

		table := output.NewTable([]string{"ID", "Name", "Category"})
		for _, c := range classes {
			table.AddRow([]string{strconv.Itoa(c.ID), c.Name, c.Category})
		}
		table.Render()
		output.Info("%d event classes", len(classes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
