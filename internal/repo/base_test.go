package repo

import (
	"context"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/homeservices-backend/pkg/db/dbtest"
)

type ctxKey struct{}

func TestDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	if got := base.DB(ctx).Statement.Context; got != ctx {
		t.Fatalf("context did not flow through, got %v", got)
	}
	if base.DB(nil) != conn {
		t.Fatalf("nil context should return the raw connection")
	}
}

func TestBoundSwitchesToTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	if base.Bound(nil).DB(nil) != conn {
		t.Fatalf("nil tx should keep the base connection")
	}
	err := conn.Transaction(func(tx *gorm.DB) error {
		if base.Bound(tx).DB(nil) != tx {
			t.Fatalf("expected repository bound to tx")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestForUpdateAddsLockingClause(t *testing.T) {
	base := NewBase(dbtest.Open(t))

	stmt := base.ForUpdate(context.Background()).Statement
	c, ok := stmt.Clauses["FOR"]
	if !ok {
		t.Fatalf("expected FOR clause, got %v", stmt.Clauses)
	}
	lock, ok := c.Expression.(clause.Locking)
	if !ok || lock.Strength != clause.LockingStrengthUpdate {
		t.Fatalf("unexpected locking expression %#v", c.Expression)
	}
}
