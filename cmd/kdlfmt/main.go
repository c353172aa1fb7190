package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:           "kdlfmt",
		Short:         "Format and watch KDL documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored diagnostics")

	rootCmd.AddCommand(
		newFmtCmd(&noColor),
		newCheckCmd(&noColor),
		newWatchCmd(&noColor),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFmtCmd(noColor *bool) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Parse a KDL document and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out, err := formatFile(path)
			if err != nil {
				return err
			}
			if write {
				return os.WriteFile(path, out, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the canonical form back to the file instead of stdout")
	return cmd
}

func newCheckCmd(noColor *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Report files whose on-disk form is not canonical",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dirty []string
			for _, path := range args {
				ok, _, err := isCanonical(path)
				if err != nil {
					return err
				}
				if !ok {
					dirty = append(dirty, path)
				}
			}
			if len(dirty) == 0 {
				return nil
			}
			for _, path := range dirty {
				fmt.Fprintln(cmd.OutOrStdout(), colorize(path+": not canonical", colorYellow, !*noColor))
			}
			return fmt.Errorf("%d file(s) not canonical", len(dirty))
		},
	}
}

func newWatchCmd(noColor *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reformat KDL files in place whenever they change on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchDir(cmd.Context(), args[0], cmd.OutOrStdout(), !*noColor)
		},
	}
}
