package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// exchangeRepo implements ExchangeRepo with ent's SQL builders over the
// table described by schema.ExchangeEvent.
type exchangeRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

var exchangeColumns = []string{
	"id", "timestamp", "session_id", "endpoint", "request_body",
	"response_body", "latency_ms", "success", "error_message",
}

func (r *exchangeRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *exchangeRepo) AppendExchange(ctx context.Context, data ExchangeEventData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(exchangeTable).
		Columns(exchangeColumns[1:]...).
		Values(
			r.clock().UTC(),
			data.SessionID,
			data.Endpoint,
			data.RequestBody,
			data.ResponseBody,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save exchange event: %w", err)
	}
	return nil
}

func (r *exchangeRepo) QueryExchanges(ctx context.Context, opts QueryOpts) ([]ExchangeEvent, error) {
	sel := r.selectExchanges()
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Endpoint != "" {
		sel.Where(entsql.EQ("endpoint", opts.Endpoint))
	}
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	events, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query exchange events: %w", err)
	}
	return events, nil
}

func (r *exchangeRepo) GetExchange(ctx context.Context, id int) (*ExchangeEvent, error) {
	sel := r.selectExchanges().Where(entsql.EQ("id", id))
	events, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get exchange event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *exchangeRepo) selectExchanges() *entsql.Selector {
	b := entsql.Dialect(dialect.SQLite)
	return b.Select(exchangeColumns...).From(b.Table(exchangeTable))
}

func (r *exchangeRepo) query(ctx context.Context, sel *entsql.Selector) ([]ExchangeEvent, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ExchangeEvent
	for rows.Next() {
		e, err := scanExchange(&rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(s scanner) (*ExchangeEvent, error) {
	var e ExchangeEvent
	err := s.Scan(
		&e.ID,
		&e.Timestamp,
		&e.SessionID,
		&e.Endpoint,
		&e.RequestBody,
		&e.ResponseBody,
		&e.LatencyMs,
		&e.Success,
		&e.ErrorMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("scan exchange event: %w", err)
	}
	return &e, nil
}
