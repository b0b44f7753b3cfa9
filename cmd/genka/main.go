// Command genka reclassifies monthly construction payments into the budget
// taxonomy, writes the line item, vendor and budget datasets, and checks
// the result against control totals.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"genka/internal/cli"
	"genka/internal/log"
)

type app struct {
	stdout io.Writer
	stderr io.Writer

	envFile  string
	logLevel string
	logJSON  bool
	logger   *log.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "genka",
		Short: "Construction cost reclassification and reconciliation",
		Long: `genka reads the monthly payment export of a construction site, maps every
payment onto the budget taxonomy (直接工事費 / 共通仮設費 / 現場管理費), and
writes the line item, vendor and budget datasets.

Configuration comes from GENKA_* environment variables, an optional .env
file and an optional YAML project profile (GENKA_PROFILE).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.LoadEnvFile(a.envFile); err != nil {
				return err
			}
			level := a.logLevel
			if level == "" {
				level = os.Getenv("GENKA_LOG_LEVEL")
			}
			if level == "" {
				level = "info"
			}
			logger, err := cli.SetupLogger(a.stderr, level, a.logJSON)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load environment from this file (default .env when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $GENKA_LOG_LEVEL or info)")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(
		a.reconcileCmd(),
		a.checkCmd(),
		a.placeholdersCmd(),
		a.runsCmd(),
		a.watchCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
