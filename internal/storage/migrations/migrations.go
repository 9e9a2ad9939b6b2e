// Package migrations carries the embedded schema for the PostgreSQL and
// ClickHouse stores and applies it statement by statement.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

// script is one migration file split into executable statements.
type script struct {
	name       string
	statements []string
}

// load returns the .sql files under dir ordered by name.
func load(fsys fs.FS, dir string) ([]script, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list %s migrations: %w", dir, err)
	}
	sort.Strings(names)

	scripts := make([]script, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		stmts := splitStatements(string(data))
		if len(stmts) == 0 {
			continue
		}
		scripts = append(scripts, script{name: path.Base(name), statements: stmts})
	}
	return scripts, nil
}

// apply runs every statement of every script through exec, stopping at the first failure.
func apply(ctx context.Context, scripts []script, exec func(context.Context, string) error) error {
	for _, s := range scripts {
		for i, stmt := range s.statements {
			if err := exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s statement %d: %w", s.name, i+1, err)
			}
		}
	}
	return nil
}

// splitStatements cuts SQL text on semicolons that sit outside single-quoted
// literals. Line comments are dropped; '' inside a literal is an escaped quote.
func splitStatements(sql string) []string {
	var stmts []string
	var cur strings.Builder
	quoted := false
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quoted:
			cur.WriteByte(c)
			if c == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					quoted = false
				}
			}
		case c == '\'':
			quoted = true
			cur.WriteByte(c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return stmts
}
