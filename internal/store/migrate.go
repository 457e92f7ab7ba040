package store

import (
	"context"
	"fmt"
	"reflect"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/lingo/ent/schema"
)

// exchangeTable is the journal table; ent pluralizes ExchangeEvent the same way.
const exchangeTable = "exchange_events"

// entity is the part of an ent schema the journal tables are built from.
type entity interface {
	Mixin() []ent.Mixin
	Fields() []ent.Field
	Indexes() []ent.Index
}

// tableFor builds the SQL table described by an ent schema: an
// auto-increment id followed by the mixin fields, then the schema fields.
// Index names follow ent's <type>_<field> convention.
func tableFor(name, prefix string, e entity) (*sqlschema.Table, error) {
	t := sqlschema.NewTable(name)
	t.AddPrimary(&sqlschema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range e.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.Fields()...)
	indexes = append(indexes, e.Indexes()...)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s: %w", d.Name, d.Err)
		}
		c := &sqlschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Comment:  d.Comment,
		}
		if d.StorageKey != "" {
			c.Name = d.StorageKey
		}
		// Function defaults run in Go at insert time.
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			c.Default = d.Default
		}
		t.AddColumn(c)
	}

	for _, i := range indexes {
		d := i.Descriptor()
		idx := d.StorageKey
		if idx == "" {
			idx = prefix
			for _, f := range d.Fields {
				idx += "_" + f
			}
		}
		for _, f := range d.Fields {
			if !t.HasColumn(f) {
				return nil, fmt.Errorf("index %s: unknown field %s", idx, f)
			}
		}
		t.AddIndex(idx, d.Unique, d.Fields)
	}
	return t, nil
}

// journalTables returns the tables of the journal database.
func journalTables() ([]*sqlschema.Table, error) {
	exchanges, err := tableFor(exchangeTable, "exchangeevent", schema.ExchangeEvent{})
	if err != nil {
		return nil, err
	}
	return []*sqlschema.Table{exchanges}, nil
}

// migrate creates or extends the journal tables in append-only mode.
func migrate(ctx context.Context, drv dialect.Driver) error {
	tables, err := journalTables()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	m, err := sqlschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}
