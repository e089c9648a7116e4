package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/picklenerd/counterfeit/pkg/cli/internal/output"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	jsonOutput bool
	noColor    bool
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCommand(opts)

	root := &cobra.Command{
		Use:   "counterfeit",
		Short: "Serve canned HTTP responses from a directory tree",
		Long: `counterfeit answers HTTP requests with files from a directory tree.

A request for METHOD /a/b is answered from <base-dir>/a/b. Files whose name
starts with the lowercase method ("get.json", "get_empty.json") are served in
turn. Configuration comes from defaults, a config file, COUNTERFEIT_*
environment variables and flags, in increasing order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				output.SetColor(false)
			}
		},
		RunE: serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		serve,
		newValidateCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// errInvalid marks a failed validation that was already reported.
type errInvalid struct {
	count int
}

func (e *errInvalid) Error() string {
	return fmt.Sprintf("%d problem(s) found", e.count)
}
