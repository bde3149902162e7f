package build

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/graphql-go/graphql"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/reltag/inflection"
	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
)

// AnnotationIntrospection is the annotation key holding the catalog object
// (*introspection.Attribute or *introspection.Class) a field was built from.
const AnnotationIntrospection = "introspection"

// Options configures a SchemaBuilder.
type Options struct {
	Snapshot *introspection.Snapshot
	// Inflector defaults to inflection.Default.
	Inflector inflection.Inflector
	// Aliases defaults to a pgsql.SequenceAllocator.
	Aliases pgsql.AliasAllocator
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// Executor runs root queries. A schema built without one can still be
	// inspected but its root fields return ErrNoExecutor.
	Executor Executor
	// Namespaces limits which namespaces get types. Empty means all.
	Namespaces []string
	// Concurrency caps how many types run hooks at once. Zero means no cap.
	Concurrency int
}

// SchemaBuilder builds GraphQL schemas from a snapshot.
type SchemaBuilder struct {
	opts  Options
	hooks []Hook
}

// NewSchemaBuilder returns a builder with defaults applied to opts.
func NewSchemaBuilder(opts Options) *SchemaBuilder {
	if opts.Inflector == nil {
		opts.Inflector = inflection.Default{}
	}
	if opts.Aliases == nil {
		opts.Aliases = &pgsql.SequenceAllocator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &SchemaBuilder{opts: opts}
}

// Snapshot returns the catalog the builder reads.
func (b *SchemaBuilder) Snapshot() *introspection.Snapshot {
	return b.opts.Snapshot
}

// AddHook registers a hook. Hooks run in registration order for each type.
func (b *SchemaBuilder) AddHook(h Hook) {
	b.hooks = append(b.hooks, h)
}

// ObjectType is a built object type.
type ObjectType struct {
	Name   string
	Class  *introspection.Class
	Object *graphql.Object
	// Fields is nil until the type's hooks have run.
	Fields *Fields
}

// Build runs every hook for every type and assembles the schema. Types are
// processed in parallel; the first failing hook cancels the rest and its
// error is returned.
func (b *SchemaBuilder) Build(ctx context.Context) (*Schema, error) {
	st, err := newState(b.opts)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if b.opts.Concurrency > 0 {
		g.SetLimit(b.opts.Concurrency)
	}
	for _, ot := range st.types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fields, err := b.runHooks(st, ot)
			if err != nil {
				return err
			}
			ot.Fields = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: st.queryType()})
	if err != nil {
		return nil, fmt.Errorf("assembling graphql schema: %w", err)
	}

	st.opts.Logger.Debug("schema built", "types", len(st.types))
	return &Schema{GraphQL: schema, state: st}, nil
}

// TypeCheck is the outcome of running hooks for one type.
type TypeCheck struct {
	Type   *ObjectType
	Fields *Fields
	Err    error
}

// Check runs the hooks of every type independently and reports each
// outcome, instead of stopping at the first failure like Build.
func (b *SchemaBuilder) Check(ctx context.Context) ([]TypeCheck, error) {
	st, err := newState(b.opts)
	if err != nil {
		return nil, err
	}

	results := make([]TypeCheck, len(st.types))
	var g errgroup.Group
	if b.opts.Concurrency > 0 {
		g.SetLimit(b.opts.Concurrency)
	}
	for i, ot := range st.types {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = TypeCheck{Type: ot, Err: err}
				return nil
			}
			fields, err := b.runHooks(st, ot)
			results[i] = TypeCheck{Type: ot, Fields: fields, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

func (b *SchemaBuilder) runHooks(st *buildState, ot *ObjectType) (*Fields, error) {
	fields, err := st.columnFields(ot)
	if err != nil {
		return nil, err
	}

	scope := Scope{
		IsRowType: true,
		Table:     ot.Class,
		Self:      ot.Object,
		TypeName:  ot.Name,
	}
	for _, h := range b.hooks {
		fields, err = h(fields, st, scope)
		if err != nil {
			return nil, err
		}
	}

	st.opts.Logger.Debug("type built", "type", ot.Name, "fields", fields.Len())
	return fields, nil
}

// buildState is the Build handed to hooks. It is read-only once newState
// returns, apart from each ObjectType's Fields, which only its own goroutine
// writes.
type buildState struct {
	opts     Options
	types    []*ObjectType
	byTypeID map[uint32]*ObjectType
	byName   map[string]*ObjectType
}

var _ Build = (*buildState)(nil)

func newState(opts Options) (*buildState, error) {
	if opts.Snapshot == nil {
		return nil, fmt.Errorf("build: no snapshot")
	}

	st := &buildState{
		opts:     opts,
		byTypeID: make(map[uint32]*ObjectType),
		byName:   make(map[string]*ObjectType),
	}

	for _, class := range opts.Snapshot.SelectableClasses() {
		if len(opts.Namespaces) > 0 && !slices.Contains(opts.Namespaces, class.NamespaceName) {
			continue
		}
		if len(opts.Snapshot.Attributes(class.ID)) == 0 {
			opts.Logger.Debug("skipping class without columns", "class", class.QualifiedName())
			continue
		}

		name := opts.Inflector.TableType(class)
		if prev, dup := st.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateType, name,
				prev.Class.QualifiedName(), class.QualifiedName())
		}

		ot := &ObjectType{Name: name, Class: class}
		ot.Object = graphql.NewObject(graphql.ObjectConfig{
			Name:        name,
			Description: class.Description,
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				return ot.Fields.graphqlFields()
			}),
		})

		st.types = append(st.types, ot)
		st.byName[name] = ot
		if class.TypeID != 0 {
			st.byTypeID[class.TypeID] = ot
		}
	}

	return st, nil
}

func (s *buildState) Snapshot() *introspection.Snapshot { return s.opts.Snapshot }

func (s *buildState) Inflector() inflection.Inflector { return s.opts.Inflector }

func (s *buildState) Aliases() pgsql.AliasAllocator { return s.opts.Aliases }

func (s *buildState) Logger() *slog.Logger { return s.opts.Logger }

func (s *buildState) SafeAlias(alias string) string { return SafeAlias(alias) }

func (s *buildState) SafeAliasFromResolveInfo(info graphql.ResolveInfo) string {
	return SafeAliasFromResolveInfo(info)
}

func (s *buildState) TypeByTypeID(typeID uint32, mod Modifier) graphql.Output {
	ot, ok := s.byTypeID[typeID]
	if !ok {
		return nil
	}
	switch mod {
	case ModifierNonNull:
		return graphql.NewNonNull(ot.Object)
	case ModifierList:
		return graphql.NewList(graphql.NewNonNull(ot.Object))
	default:
		return ot.Object
	}
}
