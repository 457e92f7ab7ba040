package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExchangeEvent records one round trip with the tutoring service.
type ExchangeEvent struct {
	ent.Schema
}

func (ExchangeEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ExchangeEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Comment("Session that made the call"),
		field.String("endpoint").
			Comment("Service path: /chat, /vocab-exercise, /record-progress"),
		field.Text("request_body").
			Default("").
			Comment("JSON request as sent"),
		field.Text("response_body").
			Default("").
			Comment("Raw response body, empty on transport failure"),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time for the request"),
		field.Bool("success").
			Comment("Whether the request succeeded"),
		field.String("error_message").
			Default("").
			Comment("Error message if failed"),
	}
}

func (ExchangeEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("endpoint"),
	}
}
