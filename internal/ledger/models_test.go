package ledger

import (
	"strings"
	"testing"
)

func TestResolvedRejectsNonPositive(t *testing.T) {
	if y := Resolved(0); y.State != YearUnknown {
		t.Fatalf("Resolved(0) = %v, want unknown", y)
	}
	if y := Resolved(-3); y.State != YearUnknown {
		t.Fatalf("Resolved(-3) = %v, want unknown", y)
	}
	if y := Resolved(1999); !y.Known() || y.String() != "1999" {
		t.Fatalf("Resolved(1999) = %v", y)
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Year
		want     bool
	}{
		{Pending(), Resolved(2001), true},
		{Pending(), Unknown(), true},
		{Pending(), Errored(), true},
		{Pending(), Pending(), false},
		{Pending(), Year{State: YearResolved}, false},
		{Resolved(2001), Unknown(), false},
		{Unknown(), Resolved(2001), false},
		{Errored(), Errored(), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%v -> %v = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMaxYear(t *testing.T) {
	tests := []struct {
		a, b, want Year
	}{
		{Resolved(2001), Resolved(1998), Resolved(2001)},
		{Resolved(1998), Resolved(2005), Resolved(2005)},
		{Unknown(), Resolved(1998), Resolved(1998)},
		{Resolved(1998), Errored(), Resolved(1998)},
		{Unknown(), Unknown(), Unknown()},
		{Errored(), Pending(), Unknown()},
	}
	for _, tt := range tests {
		if got := MaxYear(tt.a, tt.b); got != tt.want {
			t.Errorf("MaxYear(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDialectStatements(t *testing.T) {
	for _, d := range []dialect{sqliteDialect, mysqlDialect} {
		stmts := d.statements()
		if len(stmts) < 2 {
			t.Fatalf("%s: expected schema statements, got %d", d.name, len(stmts))
		}
		for _, stmt := range stmts {
			if stmt == "" {
				t.Fatalf("%s: empty statement", d.name)
			}
		}
	}
	if _, err := dialectFor("postgres"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestPathKeyScopesRoot(t *testing.T) {
	if pathKey("/a", "/a/x") == pathKey("/b", "/a/x") {
		t.Fatal("expected different keys per root")
	}
	if len(pathKey("/a", "/a/x")) != 64 {
		t.Fatal("expected hex sha256 key")
	}
}

func TestRedactDSN(t *testing.T) {
	got := RedactDSN("mysql", "mmove:secret@tcp(db:3306)/mmove")
	if strings.Contains(got, "secret") || !strings.Contains(got, "xxxxx") {
		t.Fatalf("password not redacted: %q", got)
	}
	if got := RedactDSN("sqlite", "/tmp/mmove.db"); got != "/tmp/mmove.db" {
		t.Fatalf("sqlite dsn changed: %q", got)
	}
}
