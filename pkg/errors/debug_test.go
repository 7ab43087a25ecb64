package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpNilError(t *testing.T) {
	dump := Dump(nil)
	if dump.TopMessage != "" || len(dump.Chain) != 0 {
		t.Fatalf("nil error must produce an empty dump, got %+v", dump)
	}
}

func TestDumpWalksChainAndCode(t *testing.T) {
	root := errors.New("connection refused")
	err := Wrap(CodeDependency, fmt.Errorf("querying users: %w", root), "listing users")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code got %s", dump.Code)
	}
	if dump.TopMessage == "" {
		t.Fatal("expected a top message")
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected the full unwrap chain, got %d entries: %v", len(dump.Chain), dump.Chain)
	}
	if dump.PGCode != "" {
		t.Fatalf("no driver error in the chain, got pg_code %q", dump.PGCode)
	}
}

func TestDumpExtractsPgxDriverFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "users_email_key",
		TableName:      "users",
		ColumnName:     "email",
		Detail:         "Key (email)=(a@b.c) already exists.",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("creating user: %w", pgErr), "user exists")

	dump := Dump(err)
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505 got %q", dump.PGCode)
	}
	if dump.PGConstraint != "users_email_key" || dump.PGTable != "users" || dump.PGColumn != "email" {
		t.Fatalf("driver fields not extracted: %+v", dump)
	}
}

func TestDumpExtractsLibPQFields(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23503",
		Constraint: "notifications_user_id_fkey",
		Table:      "notifications",
		Detail:     "Key (user_id) is not present in table users.",
		Message:    "foreign key violation",
	}
	err := fmt.Errorf("inserting notification: %w", pqErr)

	dump := Dump(err)
	if dump.PGCode != "23503" {
		t.Fatalf("expected pg code 23503 got %q", dump.PGCode)
	}
	if dump.PGConstraint != "notifications_user_id_fkey" || dump.PGTable != "notifications" {
		t.Fatalf("driver fields not extracted: %+v", dump)
	}
}
