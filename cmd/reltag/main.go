// Command reltag inspects and exercises the forward relations that
// @references and @foreignKey smart tags add to a PostgreSQL schema.
//
// Usage:
//
//	reltag [flags] <command>
//
// The catalog is read from the database (database.* settings or --db) or,
// when --snapshot or the snapshot setting is given, from a YAML file written
// by "reltag snapshot".
package main

func main() {
	Execute()
}
