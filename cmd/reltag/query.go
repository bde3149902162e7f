package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/reltag/internal/cli"
)

var (
	queryFile string
	queryVars string
)

var queryCmd = &cobra.Command{
	Use:   "query [graphql]",
	Short: "Run a GraphQL query against the database",
	Long: `Build the schema, including inferred relations, and execute one GraphQL
request against the database. Root fields read single rows by primary key,
for example postById(id: 1). The result is printed as JSON.`,
	Example: `  reltag query '{ postById(id: 1) { title authorByAuthorId { name } } }'

  reltag query --file post.graphql --vars '{"id": 1}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := readRequest(args)
		if err != nil {
			return err
		}

		var variables map[string]any
		if queryVars != "" {
			if err := json.Unmarshal([]byte(queryVars), &variables); err != nil {
				return cli.ConfigError("parsing --vars", err)
			}
		}

		if resolveString(snapshotFlag, cfg.Snapshot) != "" {
			return cli.ConfigError("query needs a database; it cannot run against a snapshot file", nil)
		}

		ctx := context.Background()
		schema, c, err := buildSchema(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		result := schema.Do(ctx, request, variables)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return cli.GeneralError("encoding result", err)
		}
		if result.HasErrors() {
			return cli.GeneralError("query returned errors", nil)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "read the request from a file")
	queryCmd.Flags().StringVar(&queryVars, "vars", "", "variables as a JSON object")
}

func readRequest(args []string) (string, error) {
	switch {
	case queryFile != "" && len(args) > 0:
		return "", cli.ConfigError("pass the request as an argument or with --file, not both", nil)
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", cli.ConfigError("reading request", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", cli.ConfigError("a GraphQL request is required", nil)
	}
}
