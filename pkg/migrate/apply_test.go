package migrate

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
)

type stubExecer struct {
	executed []string
	failOn   map[int]error
}

func (s *stubExecer) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	idx := len(s.executed)
	s.executed = append(s.executed, query)
	if err, ok := s.failOn[idx]; ok {
		return nil, err
	}
	return nil, nil
}

func writeTempSQL(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sql")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp sql: %v", err)
	}
	return path
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE cakes (id uuid PRIMARY KEY);
INSERT INTO cakes VALUES ('a;b');
CREATE FUNCTION noop() RETURNS void AS $fn$
BEGIN
  PERFORM 1; -- inner semicolon
END;
$fn$ LANGUAGE plpgsql;
`
	stmts := SplitStatements(script)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %#v", len(stmts), stmts)
	}
	if stmts[1] != "INSERT INTO cakes VALUES ('a;b')" {
		t.Fatalf("quoted semicolon split incorrectly: %q", stmts[1])
	}
}

func TestApplyFailFastStopsAtFirstError(t *testing.T) {
	path := writeTempSQL(t, "SELECT 1;\nSELECT 2;\nSELECT 3;")
	execer := &stubExecer{failOn: map[int]error{1: errors.New("boom")}}

	err := Apply(context.Background(), execer, nil, path, PolicyFailFast)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(execer.executed) != 2 {
		t.Fatalf("expected 2 executed statements, got %d", len(execer.executed))
	}
}

func TestApplyBestEffortRunsAllAndAggregates(t *testing.T) {
	path := writeTempSQL(t, "SELECT 1;\nSELECT 2;\nSELECT 3;")
	execer := &stubExecer{failOn: map[int]error{0: errors.New("first"), 2: errors.New("third")}}

	err := Apply(context.Background(), execer, nil, path, PolicyBestEffort)
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if len(execer.executed) != 3 {
		t.Fatalf("expected all statements executed, got %d", len(execer.executed))
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", got)
	}
}

func TestApplyBestEffortCleanRunReturnsNil(t *testing.T) {
	path := writeTempSQL(t, "SELECT 1;")
	execer := &stubExecer{}
	if err := Apply(context.Background(), execer, nil, path, PolicyBestEffort); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestParseApplyPolicy(t *testing.T) {
	if _, err := ParseApplyPolicy("halt"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
	policy, err := ParseApplyPolicy(" Best-Effort ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if policy != PolicyBestEffort {
		t.Fatalf("unexpected policy %q", policy)
	}
}
