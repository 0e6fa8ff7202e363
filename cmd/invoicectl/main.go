package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"regnify/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "invoicectl - offline invoice validation and administration",
		Long: `invoicectl validates invoice submissions against the jurisdiction rules,
lists the active rules, and performs administrative tasks against the database.`,
		SilenceUsage: true,
	}
	noColor := rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *noColor {
			color.NoColor = true
		}
	}

	rootCmd.AddCommand(cli.ValidateCmd())
	rootCmd.AddCommand(cli.RulesCmd())
	rootCmd.AddCommand(cli.RevalidateCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
