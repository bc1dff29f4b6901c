package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/ocsf-mapper/cli/internal/client"
	"github.com/telhawk-systems/ocsf-mapper/cli/pkg/output"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
)

// errValidationFailed makes ocsfctl exit non-zero for a non-conformant candidate.
var errValidationFailed = errors.New("candidate does not conform")

var validateCmd = &cobra.Command{
	Use:   "validate <class> <candidate.json|->",
	Short: "Check a candidate event against an event class",
	Long: `Validate a JSON candidate event against an event class. Reads the
candidate from a file, or from stdin when the argument is "-". The command
exits non-zero when the candidate does not conform.`,
	Example: `  ocsfctl validate "Process Activity" event.json
  mapper < raw.log | ocsfctl validate "Authentication" - --input "$(cat raw.log)"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidate, err := readCandidate(cmd.InOrStdin(), args[1])
		if err != nil {
			return err
		}
		input, _ := cmd.Flags().GetString("input")

		report, err := backend.Validate(cmd.Context(), schemaVersion(cmd), client.ValidationRequest{
			Class:     args[0],
			Input:     input,
			Candidate: candidate,
		})
		if err != nil {
			return err
		}

		if ok, err := output.Structured(outputFormat(cmd), report); ok {
			if err != nil {
				return err
			}
		} else {
			verbose, _ := cmd.Flags().GetBool("verbose")
			renderReport(report, verbose)
		}

		if !report.Passed {
			return errValidationFailed
		}
		return nil
	},
}

func readCandidate(stdin io.Reader, arg string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("candidate is empty")
	}
	return data, nil
}

func renderReport(report *conformance.Report, verbose bool) {
	for _, e := range report.Entries {
		switch {
		case e.Code == "" && !verbose:
		case e.Code == "":
			output.Info("%s", e.Message)
		case e.Severity == conformance.SeverityWarning:
			output.Warn("%s: %s", e.Code, e.Message)
		default:
			output.Error("%s: %s", e.Code, e.Message)
		}
	}
	if report.Passed {
		output.Success("Candidate conforms")
		return
	}
	output.Error("%d violation(s)", len(report.Failures()))
}

func init() {
	validateCmd.Flags().String("input", "", "source record the candidate was produced from, echoed in the report")
	validateCmd.Flags().BoolP("verbose", "v", false, "show every report entry, not only violations")
	rootCmd.AddCommand(validateCmd)
}
