package session

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"carscout/internal/profile"
	"carscout/internal/uihealth"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	state_json  TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	turn_id       TEXT NOT NULL,
	user_text     TEXT NOT NULL,
	intent        TEXT NOT NULL,
	confidence    REAL NOT NULL,
	route_json    TEXT NOT NULL,
	content_json  TEXT NOT NULL,
	offer_count   INTEGER NOT NULL DEFAULT 0,
	reply         TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	turn_id       TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	details_json  TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ui_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	event_ts    TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ui_events_session ON ui_events(session_id);
`

// #endregion schema

// #region store-struct

// Store persists session preference state, turn history, routing decisions,
// and UI telemetry in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
//
// The pragmas ride in the DSN so every pooled connection gets them:
// busy_timeout in particular, because concurrent report handlers write
// telemetry rows and would otherwise fail with SQLITE_BUSY instead of
// waiting.
func NewStore(dbPath string) (*Store, error) {
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region state-blob

// LoadState loads the preference state blob for a session.
// found=false means the session has no persisted state yet.
func (s *Store) LoadState(sessionID string) (profile.Data, bool, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT state_json FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return profile.Data{}, false, nil
	}
	if err != nil {
		return profile.Data{}, false, fmt.Errorf("load state: %w", err)
	}
	var data profile.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return profile.Data{}, false, fmt.Errorf("decode state: %w", err)
	}
	return data, true, nil
}

// SaveState upserts the preference state blob for a session.
func (s *Store) SaveState(sessionID string, data profile.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(
		`INSERT INTO sessions (session_id, state_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		sessionID, string(raw), now, now,
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// #endregion state-blob

// #region turns

// TurnRecord is one completed conversation turn.
type TurnRecord struct {
	SessionID   string
	TurnID      string
	UserText    string
	Intent      string
	Confidence  float64
	RouteJSON   string
	ContentJSON string
	OfferCount  int
	Reply       string
	CreatedAt   time.Time
}

// RecordTurn persists a single turn row.
func (s *Store) RecordTurn(rec TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, turn_id, user_text, intent, confidence, route_json, content_json, offer_count, reply, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.TurnID, rec.UserText, rec.Intent, rec.Confidence,
		rec.RouteJSON, rec.ContentJSON, rec.OfferCount, nullIfEmpty(rec.Reply),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// TurnCount returns the number of recorded turns for a session.
func (s *Store) TurnCount(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("turn count: %w", err)
	}
	return n, nil
}

// #endregion turns

// #region decision-log

// DecisionEntry is one provenance row for a routing decision.
type DecisionEntry struct {
	SessionID   string
	TurnID      string
	TriggerType string
	Decision    string
	Reason      string
	DetailsJSON string
	CreatedAt   time.Time
}

// LogDecision writes a provenance entry to the decision_log table.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO decision_log (session_id, turn_id, trigger_type, decision, reason, details_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.TurnID, entry.TriggerType, entry.Decision,
		nullIfEmpty(entry.Reason), nullIfEmpty(entry.DetailsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion decision-log

// #region ui-events

// RecordUIEvents persists reported UI failure events for telemetry.
// The in-memory aggregator owns the health judgment; these rows exist for
// offline analysis only.
func (s *Store) RecordUIEvents(sessionID string, events []uihealth.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		ts := e.TS
		if ts.IsZero() {
			ts = now
		}
		_, err := tx.Exec(
			`INSERT INTO ui_events (session_id, event_type, event_ts, created_at)
			 VALUES (?, ?, ?, ?)`,
			sessionID, string(e.Type), ts.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("record ui event: %w", err)
		}
	}
	return tx.Commit()
}

// #endregion ui-events

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
