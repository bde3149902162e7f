// Package reltag infers single-row forward relations between PostgreSQL
// tables from tags and exposes each one as a GraphQL field.
//
// Relations are declared, not discovered: foreign key constraints in the
// catalog are ignored, and only tags decide which fields exist. Constraints
// are consulted only to check that a relation's target is unique.
//
// # Tags
//
// A column tag points one column at another table. The target column
// defaults to the target's primary key:
//
//	COMMENT ON COLUMN p.posts.author_id IS E'@references p.authors';
//	COMMENT ON COLUMN p.posts.editor_id IS E'@references p.authors(id)';
//
// A table tag declares a relation over several columns at once:
//
//	COMMENT ON TABLE p.comments IS
//	  E'@foreignKey (post_id, author_id) references p.post_authorship(post_id, author_id)';
//
// Either tag may appear more than once. Two tags that resolve to the same
// origin columns, target table and target columns describe one relation.
//
// # Fields
//
// Each relation becomes a field on the origin's row type, named by the
// inflector (authorByAuthorId, postAuthorshipByPostIdAndAuthorId). Requesting
// the field adds a correlated sub-select to the parent's query, so a whole
// GraphQL request is answered by one SQL statement:
//
//	SELECT json_build_object('@title', "__local_0__"."title",
//	  '@authorByAuthorId', (SELECT json_build_object('@name', "__local_1__"."name")
//	    FROM "p"."authors" AS "__local_1__"
//	    WHERE "__local_0__"."author_id" = "__local_1__"."id"))
//	FROM "p"."posts" AS "__local_0__" ...
//
// # Usage
//
//	sb := build.NewSchemaBuilder(build.Options{Snapshot: snap, Executor: pool})
//	sb.AddHook(reltag.Plugin)
//	schema, err := sb.Build(ctx)
//
// Every problem with a tag is a build error; see the Err variables.
package reltag
