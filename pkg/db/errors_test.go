package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_products_sku"}
	wrapped := fmt.Errorf("insert product: %w", pgErr)

	if !IsUniqueViolation(wrapped, "") {
		t.Fatalf("expected pg unique violation to match")
	}
	if !IsUniqueViolation(wrapped, "ux_products_sku") {
		t.Fatalf("expected constraint name to match")
	}
	if IsUniqueViolation(wrapped, "ux_staff_phone") {
		t.Fatalf("different constraint should not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: staff.phone"), "ux_staff_phone") {
		t.Fatalf("expected sqlite message to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatalf("unexpected match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is never a violation")
	}
}
