package store

import (
	"context"
	"time"
)

// QueryOpts configures exchange queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	SessionID string // only exchanges from this session ("" = all)
	Endpoint  string // only exchanges against this endpoint ("" = all)
}

// ExchangeEventData captures a single request/response round trip with the
// tutoring service.
type ExchangeEventData struct {
	SessionID    string
	Endpoint     string
	RequestBody  string
	ResponseBody string
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// ExchangeEvent is a stored exchange.
type ExchangeEvent struct {
	ID        int
	Timestamp time.Time
	ExchangeEventData
}

// ExchangeRepo provides append and query access to the request journal.
type ExchangeRepo interface {
	// AppendExchange records one exchange.
	AppendExchange(ctx context.Context, data ExchangeEventData) error

	// QueryExchanges returns exchanges newest first.
	QueryExchanges(ctx context.Context, opts QueryOpts) ([]ExchangeEvent, error)

	// GetExchange returns the exchange with the given ID, or nil if absent.
	GetExchange(ctx context.Context, id int) (*ExchangeEvent, error)
}
