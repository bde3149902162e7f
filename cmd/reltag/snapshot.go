package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/reltag/internal/cli"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Dump the catalog to a YAML snapshot file",
	Long: `Introspect the configured schemas and write the catalog, tags included,
as YAML. The file can stand in for the database with --snapshot.`,
	Example: `  # Write a snapshot for offline runs
  reltag snapshot --db postgres://localhost/mydb --schemas app -o catalog.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		c, err := loadCatalog(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		var w io.Writer = cmd.OutOrStdout()
		if snapshotOut != "" && snapshotOut != "-" {
			f, err := os.Create(snapshotOut)
			if err != nil {
				return cli.GeneralError("creating snapshot file", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}

		if err := c.snap.Encode(w); err != nil {
			return cli.GeneralError("writing snapshot", err)
		}
		if snapshotOut != "" && snapshotOut != "-" && !quiet {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d classes to %s\n", len(c.snap.Classes()), snapshotOut)
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "", "output file (default: stdout)")
}
