package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/internal/client"
	"github.com/telhawk-systems/ocsf-mapper/cli/internal/local"
	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
	"github.com/telhawk-systems/ocsf-mapper/common/config"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

var (
	cfg     *config.CLIConfig
	backend client.Backend

	// newBackend is replaced in tests.
	newBackend = defaultBackend
)

var rootCmd = &cobra.Command{
	Use:   "ocsfctl",
	Short: "OCSF schema projection and conformance tool",
	Long: `ocsfctl inspects OCSF schemas and checks events against them.

It projects the schema subset a set of attribute paths needs, validates
candidate events against an event class, and generates conformant samples.
Commands run against a schema service (--server) or load schema exports
directly from a directory (--schema-dir) or schema server (--schema-url).`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format := outputFormat(cmd)
		if !output.ValidFormat(format) {
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
		}
		b, err := newBackend(cmd)
		if err != nil {
			return err
		}
		backend = b
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		output.Error("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("output", "o", "", "output format: table, json, yaml")
	flags.String("server", "", "schema service URL (default: load schemas locally)")
	flags.String("schema-dir", "", "directory of OCSF schema exports")
	flags.String("schema-url", "", "OCSF schema server base URL")
	flags.String("schema-version", "", "OCSF version to use (default from config)")
}

func initConfig() {
	var err error
	cfg, err = config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultCLI()
	}
}

// flagOr returns the named flag when set and fallback otherwise.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if f := cmd.Flag(name); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return fallback
}

func outputFormat(cmd *cobra.Command) string {
	return flagOr(cmd, "output", cfg.Output)
}

func schemaVersion(cmd *cobra.Command) string {
	return flagOr(cmd, "schema-version", cfg.DefaultVersion)
}

func defaultBackend(cmd *cobra.Command) (client.Backend, error) {
	if server := flagOr(cmd, "server", cfg.ServerURL); server != "" {
		return client.NewSchemaClient(server), nil
	}

	def, err := ocsf.ParseVersion(cfg.DefaultVersion)
	if err != nil {
		def = ocsf.DefaultVersion()
	}

	var source loader.Source
	if url := flagOr(cmd, "schema-url", cfg.SchemaURL); url != "" {
		source = loader.NewHTTPSource(url, 30*time.Second)
	} else {
		source = loader.FileSource{Dir: flagOr(cmd, "schema-dir", cfg.SchemaDir)}
	}
	return local.New(source, def), nil
}
