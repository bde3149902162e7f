package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/reltag/internal/cli"
	"github.com/pthm/reltag/internal/doctor"
)

var doctorVerbose bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check every relation tag and report all problems",
	Long: `Run health checks on the catalog's relation tags. Unlike a schema build,
which stops at the first bad tag, doctor checks every type and suggests a fix
for each problem. It also warns about foreign keys no tag exposes.`,
	Example: `  # Run health checks
  reltag doctor --db postgres://localhost/mydb

  # Run with verbose output
  reltag doctor --snapshot catalog.yaml --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd, resolveBool(doctorVerbose, cfg.Doctor.Verbose))
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}

func runDoctor(cmd *cobra.Command, verboseFlag bool) error {
	ctx := context.Background()

	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	sb, err := newBuilder(c)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		_, _ = fmt.Fprintln(out, "reltag doctor - Relation Health Check")
	}

	report, err := doctor.New(sb).Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(out, verboseFlag)

	if report.HasErrors() {
		return cli.SchemaError("health checks failed", report.Err())
	}
	return nil
}
