package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pathwise/pathwise-lms/internal/db"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, err := svc.IssueJWT("u1", "teacher")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "u1" || c.Role != "teacher" {
		t.Fatalf("claims = %+v", c)
	}

	if _, err := NewAuthService("other-secret").Parse(tok); err == nil {
		t.Fatal("token signed with another key must not parse")
	}
}

func TestSubjectContext(t *testing.T) {
	ctx := WithSubject(context.Background(), "u1")
	if got := SubjectFromContext(ctx); got != "u1" {
		t.Fatalf("SubjectFromContext = %q", got)
	}
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Fatalf("empty context subject = %q", got)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	defer dbh.Close()

	if err := EnsureAdmin(ctx, dbh, "admin", "$2a$12$fakehashfortest"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	var role string
	if err := dbh.QueryRowContext(ctx,
		`SELECT role FROM users WHERE username=$1`, "admin").Scan(&role); err != nil {
		t.Fatalf("admin row: %v", err)
	}
	if role != "admin" {
		t.Fatalf("role = %q", role)
	}

	// idempotent: a second boot keeps the existing row
	if err := EnsureAdmin(ctx, dbh, "admin", "$2a$12$otherhash"); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	var n int
	if err := dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username=$1`, "admin").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("admin rows = %d", n)
	}
	var hash string
	if err := dbh.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username=$1`, "admin").Scan(&hash); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash != "$2a$12$fakehashfortest" {
		t.Fatalf("seeding overwrote the existing hash: %q", hash)
	}

	// empty settings are a no-op
	if err := EnsureAdmin(ctx, dbh, "", ""); err != nil {
		t.Fatalf("empty EnsureAdmin: %v", err)
	}
}
