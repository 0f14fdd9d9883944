package db

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/angelmondragon/attribution-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationByCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"})
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err, "orders_pkey") {
		t.Fatal("expected unique violation for named constraint")
	}
	if IsUniqueViolation(err, "ga_events_pkey") {
		t.Fatal("did not expect match on different constraint")
	}
}

func TestIsUniqueViolationFallsBackToMessage(t *testing.T) {
	err := errors.New(`ERROR: duplicate key value violates unique constraint "orders_pkey"`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected message-based unique violation match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	if !IsForeignKeyViolation(err) {
		t.Fatal("expected foreign key violation")
	}
	if IsForeignKeyViolation(errors.New("timeout")) {
		t.Fatal("did not expect FK violation for unrelated error")
	}
}

func TestMapIntegrityError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if typed := pkgerrors.As(MapIntegrityError(unique, "insert order")); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", typed)
	}

	fk := &pgconn.PgError{Code: "23503"}
	if typed := pkgerrors.As(MapIntegrityError(fk, "insert order")); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", typed)
	}

	if typed := pkgerrors.As(MapIntegrityError(errors.New("conn refused"), "query")); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", typed)
	}

	if MapIntegrityError(nil, "noop") != nil {
		t.Fatal("expected nil passthrough")
	}
}
