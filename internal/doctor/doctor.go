// Package doctor reports on the relation tags of a catalog.
//
// A schema build stops at the first bad tag. The doctor instead runs every
// type on its own and reports each problem with a hint on how to fix it, and
// warns about foreign keys that no tag exposes.
//
//	sb := build.NewSchemaBuilder(build.Options{Snapshot: snap})
//	sb.AddHook(reltag.Plugin)
//	report, err := doctor.New(sb).Run(ctx)
package doctor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pthm/reltag"
	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/introspection"
)

// Doctor checks the relation tags of the catalog a SchemaBuilder reads.
type Doctor struct {
	builder *build.SchemaBuilder
	snap    *introspection.Snapshot
}

// New creates a Doctor for a builder that has reltag.Plugin registered.
func New(builder *build.SchemaBuilder) *Doctor {
	return &Doctor{builder: builder, snap: builder.Snapshot()}
}

// Run executes all health checks and returns a report. The returned error is
// only set when the checks themselves could not run.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkCatalog(report)

	results, err := d.builder.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking types: %w", err)
	}
	d.checkRelations(report, results)
	d.checkCoverage(report, results)

	return report, nil
}

func (d *Doctor) checkCatalog(report *Report) {
	tables := d.snap.SelectableClasses()
	if len(tables) == 0 {
		report.AddCheck(CheckResult{
			Category: "catalog",
			Name:     "tables",
			Status:   StatusWarn,
			Message:  "No tables found",
			FixHint:  "check the schemas setting, or the snapshot file",
		})
		return
	}

	var tagged []string
	for _, class := range tables {
		if !class.Tags.Get(reltag.TagForeignKey).IsAbsent() {
			tagged = append(tagged, class.QualifiedName())
		}
		for _, attr := range d.snap.Attributes(class.ID) {
			if !attr.Tags.Get(reltag.TagReferences).IsAbsent() {
				tagged = append(tagged, class.QualifiedName()+"."+attr.Name)
			}
		}
	}

	report.AddCheck(CheckResult{
		Category: "catalog",
		Name:     "tables",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d tables, %d reference tags", len(tables), len(tagged)),
		Details:  strings.Join(tagged, "\n"),
	})

	// Tags on classes that never get a type are silently ignored by builds.
	for _, class := range d.snap.Classes() {
		if class.Kind.IsSelectable() {
			continue
		}
		if !class.Tags.Get(reltag.TagForeignKey).IsAbsent() {
			report.AddCheck(CheckResult{
				Category: "catalog",
				Name:     "ignored-tag",
				Status:   StatusWarn,
				Message:  fmt.Sprintf("@%s on %s is ignored", reltag.TagForeignKey, class.QualifiedName()),
				Details:  fmt.Sprintf("relkind %q is not a table, view or foreign table", class.Kind),
				FixHint:  "move the tag to the table the relation starts from",
			})
		}
	}
}

func (d *Doctor) checkRelations(report *Report, results []build.TypeCheck) {
	for _, res := range results {
		name := res.Type.Name
		if res.Err != nil {
			report.AddCheck(CheckResult{
				Category: "relations",
				Name:     name,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s: %v", name, res.Err),
				FixHint:  FixHint(res.Err),
				Err:      fmt.Errorf("%s: %w", name, res.Err),
			})
			continue
		}

		var lines []string
		for _, ref := range relations(res.Fields) {
			lines = append(lines, fmt.Sprintf("%s (%s)", ref.field, ref.reference))
		}
		if len(lines) == 0 {
			continue
		}
		report.AddCheck(CheckResult{
			Category: "relations",
			Name:     name,
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s: %d relations", name, len(lines)),
			Details:  strings.Join(lines, "\n"),
		})
	}
}

// checkCoverage warns about foreign key constraints whose columns no
// relation starts from.
func (d *Doctor) checkCoverage(report *Report, results []build.TypeCheck) {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		var covered [][]int
		for _, rel := range relations(res.Fields) {
			covered = append(covered, attributeNums(rel.reference.OriginColumns))
		}

		for _, con := range d.snap.Constraints(res.Type.Class.ID) {
			if con.Type != introspection.ConstraintForeignKey {
				continue
			}
			nums := slices.Clone(con.KeyAttributeNums)
			slices.Sort(nums)
			if slices.ContainsFunc(covered, func(c []int) bool { return slices.Equal(c, nums) }) {
				continue
			}

			var cols []string
			for _, attr := range d.snap.KeyAttributes(con) {
				cols = append(cols, attr.Name)
			}
			report.AddCheck(CheckResult{
				Category: "coverage",
				Name:     con.Name,
				Status:   StatusWarn,
				Message: fmt.Sprintf("foreign key %s on %s(%s) has no relation",
					con.Name, res.Type.Class.QualifiedName(), strings.Join(cols, ", ")),
				FixHint: "add a @references tag to the column, or a @foreignKey tag to the table",
			})
		}
	}
}

type relation struct {
	field     string
	reference *reltag.Reference
}

func relations(fields *build.Fields) []relation {
	if fields == nil {
		return nil
	}
	var out []relation
	for _, f := range fields.All() {
		ref, ok := f.Annotations[reltag.AnnotationReference].(*reltag.Reference)
		if ok {
			out = append(out, relation{field: f.Name, reference: ref})
		}
	}
	return out
}

func attributeNums(attrs []*introspection.Attribute) []int {
	nums := make([]int, len(attrs))
	for i, a := range attrs {
		nums[i] = a.Num
	}
	slices.Sort(nums)
	return nums
}

// FixHint suggests how to resolve a relation build error.
func FixHint(err error) string {
	switch {
	case reltag.IsMalformedReferenceTagErr(err), reltag.IsMalformedIdentifierErr(err):
		return "use @references ns.table, @references ns.table(column) or @foreignKey (a, b) references ns.table(x, y)"
	case reltag.IsUnknownForeignTableErr(err):
		return "check the target namespace and table name; names are case sensitive"
	case reltag.IsUnknownOriginColumnErr(err):
		return "the columns in @foreignKey (...) must exist on the tagged table"
	case reltag.IsUnknownTargetColumnErr(err):
		return "check the target column names"
	case reltag.IsAmbiguousImplicitKeyErr(err):
		return "name the target columns explicitly"
	case reltag.IsTargetNotUniqueErr(err):
		return "add a primary key or unique constraint covering exactly the target columns"
	case reltag.IsFieldNameCollisionErr(err):
		return "rename the relation with a @fieldName tag on its column"
	case reltag.IsMissingOutputTypeErr(err):
		return "include the target table's schema in the schemas setting"
	default:
		return ""
	}
}
