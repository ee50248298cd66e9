// Package report keeps a history of executions in SQLite: for each run,
// the final variable table, the declared program names and the error that
// stopped it, if any.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/vci/vm"
)

var log = commonlog.GetLogger("vci.report")

// ErrSessionNotFound indicates the requested session doesn't exist
var ErrSessionNotFound = errors.New("session not found")

// timeLayout sorts lexically in time order for UTC times.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var schema = []string{`
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT ''
)`, `
CREATE TABLE IF NOT EXISTS variables (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
)`, `
CREATE TABLE IF NOT EXISTS programs (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	name       TEXT NOT NULL,
	line       INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
)`,
}

// Variable is one entry of a saved variable table.
type Variable struct {
	Name  string
	Kind  vm.Kind
	Value string // printed form
}

// Program is one saved program-name declaration.
type Program struct {
	Name string
	Line int
}

// Session is the outcome of one execution.
type Session struct {
	ID        string
	Name      string // source file, or "repl"
	StartedAt time.Time
	Error     string // empty when the run completed
	Variables []Variable
	Programs  []Program
}

// SessionFrom snapshots the tables an executor left behind. runErr is the
// error that aborted the run, or nil.
func SessionFrom(name string, vars *vm.VariableTable, programs *vm.ProgramTable, runErr error) *Session {
	s := &Session{Name: name, StartedAt: time.Now().UTC()}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	for _, n := range vars.Names() {
		v, _ := vars.Get(n)
		s.Variables = append(s.Variables, Variable{Name: n, Kind: v.Kind(), Value: v.String()})
	}
	for _, d := range programs.Declarations() {
		s.Programs = append(s.Programs, Program{Name: d.Name, Line: d.Line})
	}
	return s
}

// Restore writes the saved variables back into vars and returns their
// names in order.
func (s *Session) Restore(vars *vm.VariableTable) ([]string, error) {
	names := make([]string, 0, len(s.Variables))
	for _, v := range s.Variables {
		val, err := v.RuntimeValue()
		if err != nil {
			return nil, err
		}
		vars.Set(v.Name, val)
		names = append(names, v.Name)
	}
	return names, nil
}

// RuntimeValue converts the saved form back into a value.
func (v Variable) RuntimeValue() (vm.Value, error) {
	switch v.Kind {
	case vm.KindNull:
		return vm.Null, nil
	case vm.KindString:
		return vm.StringValue(v.Value), nil
	case vm.KindNumber:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return vm.Null, fmt.Errorf("variable %s: bad number %q", v.Name, v.Value)
		}
		return vm.NumberValue(n), nil
	case vm.KindBool:
		b, err := strconv.ParseBool(v.Value)
		if err != nil {
			return vm.Null, fmt.Errorf("variable %s: bad boolean %q", v.Name, v.Value)
		}
		return vm.BoolValue(b), nil
	}
	return vm.Null, fmt.Errorf("variable %s: cannot restore %s", v.Name, v.Kind)
}

// Store handles SQLite storage for sessions
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the report database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	log.Debugf("opened report store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (st *Store) Path() string {
	return st.path
}

// Close closes the database connection
func (st *Store) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}

// Save persists s, assigning it an ID and start time when missing.
func (st *Store) Save(ctx context.Context, s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, name, started_at, error) VALUES (?, ?, ?, ?)",
		s.ID, s.Name, s.StartedAt.UTC().Format(timeLayout), s.Error,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	for i, v := range s.Variables {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO variables (session_id, seq, name, kind, value) VALUES (?, ?, ?, ?, ?)",
			s.ID, i, v.Name, v.Kind.String(), v.Value,
		)
		if err != nil {
			return fmt.Errorf("saving variable %s: %w", v.Name, err)
		}
	}
	for i, p := range s.Programs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO programs (session_id, seq, name, line) VALUES (?, ?, ?, ?)",
			s.ID, i, p.Name, p.Line,
		)
		if err != nil {
			return fmt.Errorf("saving program %s: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	log.Infof("saved session %s (%d variables, %d programs)", s.ID, len(s.Variables), len(s.Programs))
	return nil
}

// Load retrieves a session with its tables.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var (
		s       Session
		started string
	)
	err := st.db.QueryRowContext(ctx,
		"SELECT id, name, started_at, error FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &started, &s.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	if s.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("session %s: bad start time: %w", id, err)
	}

	if s.Variables, err = st.loadVariables(ctx, id); err != nil {
		return nil, err
	}
	if s.Programs, err = st.loadPrograms(ctx, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (st *Store) loadVariables(ctx context.Context, id string) ([]Variable, error) {
	rows, err := st.db.QueryContext(ctx,
		"SELECT name, kind, value FROM variables WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("querying variables: %w", err)
	}
	defer rows.Close()

	var vars []Variable
	for rows.Next() {
		var (
			v    Variable
			kind string
		)
		if err := rows.Scan(&v.Name, &kind, &v.Value); err != nil {
			return nil, fmt.Errorf("scanning variable: %w", err)
		}
		k, ok := vm.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("variable %s: unknown kind %q", v.Name, kind)
		}
		v.Kind = k
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

func (st *Store) loadPrograms(ctx context.Context, id string) ([]Program, error) {
	rows, err := st.db.QueryContext(ctx,
		"SELECT name, line FROM programs WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.Name, &p.Line); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// Summary is a row of List.
type Summary struct {
	ID        string
	Name      string
	StartedAt time.Time
	Error     string
}

// List returns every session, newest first.
func (st *Store) List(ctx context.Context) ([]Summary, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rows, err := st.db.QueryContext(ctx,
		"SELECT id, name, started_at, error FROM sessions ORDER BY started_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s       Summary
			started string
		)
		if err := rows.Scan(&s.ID, &s.Name, &started, &s.Error); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("session %s: bad start time: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a session and its tables.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	res, err := st.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
