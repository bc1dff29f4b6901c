package cmd

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/internal/client"
	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/projection"
)

var projectCmd = &cobra.Command{
	Use:   "project <class> [path...]",
	Short: "Show the schema subset needed for a set of attribute paths",
	Long: `Project an event class onto dotted attribute paths such as process.pid
or actor.user.name. The result holds the class attributes and the object
definitions those paths reach. --mode full keeps every attribute and
--mode summary trims descriptions.`,
	Example: `  ocsfctl project "Process Activity" process.pid actor.user
  ocsfctl project "Authentication (3002)" user.name --mode summary -o yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")

		doc, err := backend.Project(cmd.Context(), schemaVersion(cmd), client.ProjectionRequest{
			Class: args[0],
			Paths: args[1:],
			Mode:  mode,
		})
		if err != nil {
			return err
		}
		if ok, err := output.Structured(outputFormat(cmd), doc); ok {
			return err
		}
		renderProjection(doc)
		return nil
	},
}

func renderProjection(doc *projection.Document) {
	output.Info("%s (%d) - %s projection of %d path(s)", doc.Class.Caption, doc.Class.UID, doc.Mode, len(doc.Paths))

	table := output.NewTable([]string{"Object", "Attribute", "Type", "Requirement", "Array"})
	addRows := func(owner string, attrs map[string]projection.AttributeView) {
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			attr := attrs[name]
			typ := attr.Type
			if attr.ObjectType != "" {
				typ = attr.ObjectType
			}
			table.AddRow([]string{owner, name, typ, attr.Requirement, strconv.FormatBool(attr.IsArray)})
		}
	}

	addRows(doc.Class.Name, doc.Class.Attributes)
	for _, obj := range doc.Objects {
		addRows(obj.Name, obj.Attributes)
	}
	table.Render()
}

func init() {
	projectCmd.Flags().String("mode", "filtered", "projection mode: full, filtered, summary")
	rootCmd.AddCommand(projectCmd)
}
