package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/reltag"
	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/internal/cli"
)

var relationsFormat string

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "List the relation fields inferred from tags",
	Long: `Build the schema and list every relation field that @references and
@foreignKey tags added, grouped by type. Fails on the first bad tag; use
"reltag doctor" to see every problem at once.`,
	Example: `  # From the database
  reltag relations --db postgres://localhost/mydb --schemas app

  # From a snapshot file, as YAML
  reltag relations --snapshot catalog.yaml --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		schema, c, err := buildSchema(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		rels := collectRelations(schema)
		switch relationsFormat {
		case "text", "":
			printRelations(cmd.OutOrStdout(), rels)
			return nil
		case "yaml":
			out, err := yaml.Marshal(rels)
			if err != nil {
				return cli.GeneralError("encoding relations", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		default:
			return cli.ConfigError(fmt.Sprintf("unknown format %q (want text or yaml)", relationsFormat), nil)
		}
	},
}

func init() {
	relationsCmd.Flags().StringVar(&relationsFormat, "format", "text", "output format: text or yaml")
}

// relationInfo is one relation field as listed by the relations command.
type relationInfo struct {
	Type   string   `json:"type"`
	Table  string   `json:"table"`
	Field  string   `json:"field"`
	Target string   `json:"target"`
	Key    string   `json:"key"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

func collectRelations(schema *build.Schema) []relationInfo {
	var out []relationInfo
	for _, ot := range schema.Types() {
		for _, f := range ot.Fields.All() {
			ref, ok := f.Annotations[reltag.AnnotationReference].(*reltag.Reference)
			if !ok {
				continue
			}
			out = append(out, relationInfo{
				Type:   ot.Name,
				Table:  ot.Class.QualifiedName(),
				Field:  f.Name,
				Target: typeName(f),
				Key:    ref.String(),
				Source: ref.Source.String(),
				Tags:   ref.Tags,
			})
		}
	}
	return out
}

func printRelations(w io.Writer, rels []relationInfo) {
	if len(rels) == 0 {
		if !quiet {
			_, _ = fmt.Fprintln(w, "No relations found.")
		}
		return
	}

	current := ""
	for _, r := range rels {
		if r.Type != current {
			if current != "" {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "%s (%s)\n", r.Type, r.Table)
			current = r.Type
		}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", r.Field, r.Target)
		_, _ = fmt.Fprintf(w, "      %s %s\n", r.Source, strings.Join(r.Tags, " | "))
		_, _ = fmt.Fprintf(w, "      %s\n", r.Key)
	}
}
