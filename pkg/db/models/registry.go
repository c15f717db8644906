package models

// All lists every persisted model, in dependency order, for schema bootstrap
// on dialects that do not run the SQL migrations.
func All() []any {
	return []any{
		&Product{},
		&Staff{},
		&Cart{},
		&Booking{},
		&Sequence{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
