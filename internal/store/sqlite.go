package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, creating the parent
// directory if needed, and configures WAL mode. Failure here is fatal to
// the process: nothing works without the persistence layer.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Timestamps are stored as ISO-8601 text so the database file stays
// compatible with data written by earlier versions of the system. The
// fraction is fixed-width so lexicographic column order matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// legacyTimeLayout matches zone-less timestamps found in pre-existing
// database files.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS policies (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	category        TEXT NOT NULL,
	target_audience TEXT NOT NULL,
	description     TEXT,
	status          TEXT DEFAULT 'draft',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_contents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	policy_id    INTEGER NOT NULL,
	content_type TEXT NOT NULL,
	content_data TEXT NOT NULL,
	metadata     TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (policy_id) REFERENCES policies(id)
);

CREATE TABLE IF NOT EXISTS policy_performance (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	policy_id        INTEGER NOT NULL,
	view_count       INTEGER DEFAULT 0,
	engagement_score REAL DEFAULT 0.0,
	feedback_data    TEXT,
	metrics_data     TEXT,
	updated_at       TEXT NOT NULL,
	FOREIGN KEY (policy_id) REFERENCES policies(id)
);

CREATE TABLE IF NOT EXISTS generated_media (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	policy_id         INTEGER NOT NULL,
	media_type        TEXT NOT NULL,
	media_url         TEXT,
	media_data        BLOB,
	prompt            TEXT,
	generation_params TEXT,
	created_at        TEXT NOT NULL,
	FOREIGN KEY (policy_id) REFERENCES policies(id)
);

CREATE INDEX IF NOT EXISTS idx_policies_created_at ON policies(created_at);
CREATE INDEX IF NOT EXISTS idx_policy_contents_policy_id ON policy_contents(policy_id);
CREATE INDEX IF NOT EXISTS idx_generated_media_policy_id ON generated_media(policy_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const policyColumns = `id, title, category, target_audience, description, status, created_at, updated_at`

func (s *SQLiteStore) CreatePolicy(ctx context.Context, title, category string, audience model.TargetAudience, description string) (*model.Policy, error) {
	now := time.Now().UTC()
	ts := now.Format(timeLayout)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO policies (title, category, target_audience, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, category, string(audience), description, string(model.StatusDraft), ts, ts,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert policy")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}

	return &model.Policy{
		ID:             id,
		Title:          title,
		Category:       category,
		TargetAudience: audience,
		Description:    description,
		Status:         model.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *SQLiteStore) UpdatePolicyStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE policies SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update policy status %d", id)
	}
	return checkRowsAffected(res, "policy", id)
}

func (s *SQLiteStore) GetPolicy(ctx context.Context, id int64) (*model.Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = ?`, id,
	)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) ListRecentPolicies(ctx context.Context, limit int) ([]model.Policy, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM policies ORDER BY created_at DESC, id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recent policies")
	}
	return collectPolicies(rows)
}

func (s *SQLiteStore) ListPoliciesByDate(ctx context.Context, day time.Time) ([]model.Policy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM policies
		 WHERE date(created_at) = date(?)
		 ORDER BY created_at DESC, id ASC`,
		day.Format(time.DateOnly),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list policies by date")
	}
	return collectPolicies(rows)
}

func (s *SQLiteStore) ListPoliciesByDateRange(ctx context.Context, start, end time.Time) ([]model.Policy, error) {
	startDay := start.Format(time.DateOnly)
	endDay := end.Format(time.DateOnly)
	// BETWEEN with reversed bounds is undefined behavior we must not lean
	// on; a reversed range is defined to be empty.
	if startDay > endDay {
		return []model.Policy{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM policies
		 WHERE date(created_at) BETWEEN date(?) AND date(?)
		 ORDER BY created_at DESC, id ASC`,
		startDay, endDay,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list policies by date range")
	}
	return collectPolicies(rows)
}

func (s *SQLiteStore) SaveContent(ctx context.Context, policyID int64, contentType string, payload any, metadata map[string]any) (*model.PolicyContent, error) {
	dataJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal content data")
	}

	var metaJSON sql.NullString
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal content metadata")
		}
		metaJSON = sql.NullString{String: string(b), Valid: true}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_contents (policy_id, content_type, content_data, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		policyID, contentType, string(dataJSON), metaJSON, now.Format(timeLayout),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert content for policy %d", policyID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}

	var data map[string]any
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, eris.Wrap(err, "sqlite: round-trip content data")
	}

	return &model.PolicyContent{
		ID:          id,
		PolicyID:    policyID,
		ContentType: contentType,
		Data:        data,
		Metadata:    metadata,
		CreatedAt:   now,
	}, nil
}

func (s *SQLiteStore) GetContents(ctx context.Context, policyID int64) ([]model.PolicyContent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy_id, content_type, content_data, metadata, created_at
		 FROM policy_contents WHERE policy_id = ?
		 ORDER BY created_at DESC, id DESC`,
		policyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get contents")
	}
	defer rows.Close() //nolint:errcheck

	var contents []model.PolicyContent
	for rows.Next() {
		var (
			c        model.PolicyContent
			dataJSON string
			metaJSON sql.NullString
			created  string
		)
		if err := rows.Scan(&c.ID, &c.PolicyID, &c.ContentType, &dataJSON, &metaJSON, &created); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan content")
		}
		// A corrupt row must not abort the whole listing; drop it and
		// let the remaining history through.
		if err := json.Unmarshal([]byte(dataJSON), &c.Data); err != nil {
			continue
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &c.Metadata); err != nil {
				continue
			}
		}
		c.CreatedAt = parseTimestamp(created)
		contents = append(contents, c)
	}
	return contents, eris.Wrap(rows.Err(), "sqlite: get contents iterate")
}

func (s *SQLiteStore) SaveMedia(ctx context.Context, policyID int64, in model.MediaInput) (*model.GeneratedMedia, error) {
	var paramsJSON sql.NullString
	if in.Params != nil {
		b, err := json.Marshal(in.Params)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal generation params")
		}
		paramsJSON = sql.NullString{String: string(b), Valid: true}
	}

	var url sql.NullString
	if in.URL != "" {
		url = sql.NullString{String: in.URL, Valid: true}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_media (policy_id, media_type, media_url, media_data, prompt, generation_params, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		policyID, in.MediaType, url, in.Data, in.Prompt, paramsJSON, now.Format(timeLayout),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert media for policy %d", policyID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}

	return &model.GeneratedMedia{
		ID:        id,
		PolicyID:  policyID,
		MediaType: in.MediaType,
		URL:       in.URL,
		Data:      in.Data,
		Prompt:    in.Prompt,
		Params:    in.Params,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetMedia(ctx context.Context, policyID int64, mediaType string) ([]model.GeneratedMedia, error) {
	query := `SELECT id, policy_id, media_type, media_url, media_data, prompt, generation_params, created_at
		 FROM generated_media WHERE policy_id = ?`
	args := []any{policyID}
	if mediaType != "" {
		query += ` AND media_type = ?`
		args = append(args, mediaType)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get media")
	}
	defer rows.Close() //nolint:errcheck

	var media []model.GeneratedMedia
	for rows.Next() {
		var (
			m          model.GeneratedMedia
			url        sql.NullString
			prompt     sql.NullString
			paramsJSON sql.NullString
			created    string
		)
		if err := rows.Scan(&m.ID, &m.PolicyID, &m.MediaType, &url, &m.Data, &prompt, &paramsJSON, &created); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan media")
		}
		m.URL = url.String
		m.Prompt = prompt.String
		if paramsJSON.Valid && paramsJSON.String != "" {
			// The bytes are still usable when only the params column is
			// corrupt; keep the row with nil params.
			_ = json.Unmarshal([]byte(paramsJSON.String), &m.Params)
		}
		m.CreatedAt = parseTimestamp(created)
		media = append(media, m)
	}
	return media, eris.Wrap(rows.Err(), "sqlite: get media iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %d", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPolicy(row scannable) (*model.Policy, error) {
	var (
		p           model.Policy
		description sql.NullString
		created     string
		updated     string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Category, &p.TargetAudience, &description, &p.Status, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan policy")
	}
	p.Description = description.String
	p.CreatedAt = parseTimestamp(created)
	p.UpdatedAt = parseTimestamp(updated)
	return &p, nil
}

func collectPolicies(rows *sql.Rows) ([]model.Policy, error) {
	defer rows.Close() //nolint:errcheck

	var policies []model.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}
	return policies, eris.Wrap(rows.Err(), "sqlite: iterate policies")
}

// parseTimestamp reads an ISO-8601 timestamp, accepting both the RFC 3339
// form this implementation writes and the zone-less form found in databases
// written by earlier versions. Unparseable values collapse to the zero time
// rather than failing the read.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(legacyTimeLayout, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
