package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/picklenerd/counterfeit/pkg/cli/internal/output"
	"github.com/picklenerd/counterfeit/pkg/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigShowCommand(opts))
	return cmd
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	flags := &serverFlags{}
	var showSources bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration the server would run with, after merging the
config file, COUNTERFEIT_* environment variables and flags.`,
		Example: `  counterfeit config show --config counterfeit.toml
  COUNTERFEIT_PORT=8080 counterfeit config show --sources`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if opts.jsonOutput {
				return output.JSON(w, cfg)
			}

			data, err := config.ToYAML(cfg)
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				return err
			}

			if showSources && len(cfg.Sources) > 0 {
				keys := make([]string, 0, len(cfg.Sources))
				for k := range cfg.Sources {
					keys = append(keys, k)
				}
				slices.Sort(keys)

				tw := output.Table(w)
				_, _ = tw.Write([]byte("\nSETTING\tSOURCE\n"))
				for _, k := range keys {
					_, _ = tw.Write([]byte(k + "\t" + cfg.Source(k) + "\n"))
				}
				return tw.Flush()
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&showSources, "sources", false, "List where overridden settings came from")
	return cmd
}
