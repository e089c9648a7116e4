package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/picklenerd/counterfeit/pkg/cli/internal/output"
	"github.com/picklenerd/counterfeit/pkg/mapper"
	"github.com/picklenerd/counterfeit/pkg/mutation"
)

// ValidateResult is the --json output of validate.
type ValidateResult struct {
	Valid       bool     `json:"valid"`
	BaseDir     string   `json:"baseDir"`
	Directories int      `json:"directories"`
	Files       int      `json:"files"`
	Mutations   []string `json:"mutations"`
	Errors      []string `json:"errors,omitempty"`
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	flags := &serverFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and response directory",
		Long: `Check the configuration without starting the server.

This command checks:
  - the config file parses and its values are valid
  - every mutation compiles (globs, when expressions, JSONPaths)
  - the base directory exists and is a directory`,
		Example: `  counterfeit validate --config counterfeit.yaml
  counterfeit validate --base-dir ./fixtures --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			result := ValidateResult{}

			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return report(w, opts.jsonOutput, result, err)
			}
			result.BaseDir = cfg.BaseDir

			var problems []error
			mutations, err := mutation.Build(cfg.Mutations, mutation.Options{})
			if err != nil {
				problems = append(problems, err)
			}
			for _, m := range mutations {
				result.Mutations = append(result.Mutations, m.Name())
			}

			dirs, files, err := countResponses(cfg.BaseDir)
			if err != nil {
				problems = append(problems, err)
			}
			result.Directories, result.Files = dirs, files

			return report(w, opts.jsonOutput, result, errors.Join(problems...))
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func report(w io.Writer, jsonOutput bool, result ValidateResult, err error) error {
	var problems []string
	if err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				problems = append(problems, e.Error())
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	result.Valid = len(problems) == 0
	result.Errors = problems

	if jsonOutput {
		if jerr := output.JSON(w, result); jerr != nil {
			return jerr
		}
	} else if result.Valid {
		output.Success(w, "configuration is valid")
		output.KeyValue(w, "base dir", result.BaseDir)
		output.KeyValue(w, "directories", result.Directories)
		output.KeyValue(w, "response files", result.Files)
		output.KeyValue(w, "mutations", len(result.Mutations))
	} else {
		for _, p := range problems {
			output.Error(w, "%s", p)
		}
	}

	if !result.Valid {
		return &errInvalid{count: len(problems)}
	}
	return nil
}

// countResponses counts the directories under baseDir and the files in
// them that answer at least one common method.
func countResponses(baseDir string) (int, int, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return 0, 0, fmt.Errorf("base directory: %w", err)
	}
	if !info.IsDir() {
		return 0, 0, fmt.Errorf("base directory %s is not a directory", baseDir)
	}

	var dirs, files int
	err = walkDirs(baseDir, func(dir string) error {
		dirs++
		for _, method := range commonMethods {
			names, err := mapper.Candidates(dir, method)
			if err != nil {
				return err
			}
			files += len(names)
		}
		return nil
	})
	return dirs, files, err
}

var commonMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
