package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

// ApplyPolicy controls how Apply reacts to a failing statement.
type ApplyPolicy string

const (
	// PolicyFailFast aborts on the first statement error.
	PolicyFailFast ApplyPolicy = "fail-fast"
	// PolicyBestEffort logs each statement error, keeps going, and returns
	// the aggregate so the exit code still reflects the failures.
	PolicyBestEffort ApplyPolicy = "best-effort"
)

// ParseApplyPolicy converts raw input into an ApplyPolicy.
func ParseApplyPolicy(value string) (ApplyPolicy, error) {
	switch ApplyPolicy(strings.TrimSpace(strings.ToLower(value))) {
	case PolicyFailFast:
		return PolicyFailFast, nil
	case PolicyBestEffort:
		return PolicyBestEffort, nil
	}
	return "", fmt.Errorf("invalid apply policy %q (expected fail-fast|best-effort)", value)
}

// StatementExecer is the surface Apply needs from a database handle.
type StatementExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply runs every statement of a raw SQL file against the database. Unlike
// goose migrations the file carries no version bookkeeping; this exists for
// one-off maintenance scripts.
func Apply(ctx context.Context, execer StatementExecer, logg *logger.Logger, path string, policy ApplyPolicy) error {
	if execer == nil {
		return fmt.Errorf("db execer is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sql file %q: %w", path, err)
	}

	statements := SplitStatements(string(raw))
	if len(statements) == 0 {
		return fmt.Errorf("no statements found in %q", path)
	}

	var failures error
	for i, stmt := range statements {
		if _, err := execer.ExecContext(ctx, stmt); err != nil {
			wrapped := fmt.Errorf("statement %d: %w", i+1, err)
			if policy == PolicyFailFast {
				return wrapped
			}
			if logg != nil {
				logg.Error(logg.WithField(ctx, "statement", i+1), "apply statement failed", err)
			}
			failures = multierr.Append(failures, wrapped)
		}
	}
	return failures
}

// SplitStatements breaks a SQL script on statement boundaries. Semicolons
// inside single-quoted strings, dollar-quoted bodies, and comments are
// preserved.
func SplitStatements(script string) []string {
	var (
		statements []string
		sb         strings.Builder
		inString   bool
		inLineCmt  bool
		inBlockCmt bool
		dollarTag  string
	)

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		sb.WriteRune(ch)

		switch {
		case inLineCmt:
			if ch == '\n' {
				inLineCmt = false
			}
		case inBlockCmt:
			if ch == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				sb.WriteRune(runes[i+1])
				i++
				inBlockCmt = false
			}
		case dollarTag != "":
			if ch == '$' {
				if tag, ok := readDollarTag(runes, i); ok && tag == dollarTag {
					sb.WriteString(tag[1:])
					i += len(tag) - 1
					dollarTag = ""
				}
			}
		case inString:
			if ch == '\'' {
				// doubled quote is an escaped quote, stay inside
				if i+1 < len(runes) && runes[i+1] == '\'' {
					sb.WriteRune(runes[i+1])
					i++
				} else {
					inString = false
				}
			}
		default:
			switch ch {
			case '\'':
				inString = true
			case '-':
				if i+1 < len(runes) && runes[i+1] == '-' {
					inLineCmt = true
				}
			case '/':
				if i+1 < len(runes) && runes[i+1] == '*' {
					inBlockCmt = true
				}
			case '$':
				if tag, ok := readDollarTag(runes, i); ok {
					dollarTag = tag
					sb.WriteString(tag[1:])
					i += len(tag) - 1
				}
			case ';':
				stmt := strings.TrimSpace(strings.TrimSuffix(sb.String(), ";"))
				if stmt != "" && !isCommentOnly(stmt) {
					statements = append(statements, stmt)
				}
				sb.Reset()
			}
		}
	}

	if rest := strings.TrimSpace(sb.String()); rest != "" && !isCommentOnly(rest) {
		statements = append(statements, rest)
	}
	return statements
}

// readDollarTag reports the $tag$ starting at position i, if any.
func readDollarTag(runes []rune, i int) (string, bool) {
	j := i + 1
	for j < len(runes) && (runes[j] == '_' || isAlnum(runes[j])) {
		j++
	}
	if j < len(runes) && runes[j] == '$' {
		return string(runes[i : j+1]), true
	}
	return "", false
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		return false
	}
	return true
}
