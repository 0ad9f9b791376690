package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool. It exists for deployments
// that outgrow the single SQLite file; the SQLite backend remains the
// default.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS policies (
	id              BIGSERIAL PRIMARY KEY,
	title           TEXT NOT NULL,
	category        TEXT NOT NULL,
	target_audience TEXT NOT NULL,
	description     TEXT,
	status          TEXT DEFAULT 'draft',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_contents (
	id           BIGSERIAL PRIMARY KEY,
	policy_id    BIGINT NOT NULL REFERENCES policies(id),
	content_type TEXT NOT NULL,
	content_data TEXT NOT NULL,
	metadata     TEXT,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_performance (
	id               BIGSERIAL PRIMARY KEY,
	policy_id        BIGINT NOT NULL REFERENCES policies(id),
	view_count       BIGINT DEFAULT 0,
	engagement_score DOUBLE PRECISION DEFAULT 0.0,
	feedback_data    TEXT,
	metrics_data     TEXT,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS generated_media (
	id                BIGSERIAL PRIMARY KEY,
	policy_id         BIGINT NOT NULL REFERENCES policies(id),
	media_type        TEXT NOT NULL,
	media_url         TEXT,
	media_data        BYTEA,
	prompt            TEXT,
	generation_params TEXT,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_policies_created_at ON policies(created_at);
CREATE INDEX IF NOT EXISTS idx_policy_contents_policy_id ON policy_contents(policy_id);
CREATE INDEX IF NOT EXISTS idx_generated_media_policy_id ON generated_media(policy_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreatePolicy(ctx context.Context, title, category string, audience model.TargetAudience, description string) (*model.Policy, error) {
	now := time.Now().UTC()

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO policies (title, category, target_audience, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		title, category, string(audience), description, string(model.StatusDraft), now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert policy")
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

func (s *PostgresStore) UpdatePolicyStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE policies SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update policy status %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("policy not found: %d", id)
	}
	return nil
}

func (s *PostgresStore) GetPolicy(ctx context.Context, id int64) (*model.Policy, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = $1`, id,
	)
	p, err := scanPgPolicy(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *PostgresStore) ListRecentPolicies(ctx context.Context, limit int) ([]model.Policy, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+policyColumns+` FROM policies ORDER BY created_at DESC, id ASC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recent policies")
	}
	return collectPgPolicies(rows)
}

func (s *PostgresStore) ListPoliciesByDate(ctx context.Context, day time.Time) ([]model.Policy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+policyColumns+` FROM policies
		 WHERE created_at::date = $1::date
		 ORDER BY created_at DESC, id ASC`,
		day.Format(time.DateOnly),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list policies by date")
	}
	return collectPgPolicies(rows)
}

func (s *PostgresStore) ListPoliciesByDateRange(ctx context.Context, start, end time.Time) ([]model.Policy, error) {
	startDay := start.Format(time.DateOnly)
	endDay := end.Format(time.DateOnly)
	if startDay > endDay {
		return []model.Policy{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+policyColumns+` FROM policies
		 WHERE created_at::date BETWEEN $1::date AND $2::date
		 ORDER BY created_at DESC, id ASC`,
		startDay, endDay,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list policies by date range")
	}
	return collectPgPolicies(rows)
}

func (s *PostgresStore) SaveContent(ctx context.Context, policyID int64, contentType string, payload any, metadata map[string]any) (*model.PolicyContent, error) {
	dataJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal content data")
	}

	var metaJSON *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal content metadata")
		}
		s := string(b)
		metaJSON = &s
	}

	now := time.Now().UTC()
	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO policy_contents (policy_id, content_type, content_data, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		policyID, contentType, string(dataJSON), metaJSON, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert content for policy %d", policyID)
	}

	var data map[string]any
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, eris.Wrap(err, "postgres: round-trip content data")
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

func (s *PostgresStore) GetContents(ctx context.Context, policyID int64) ([]model.PolicyContent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, policy_id, content_type, content_data, metadata, created_at
		 FROM policy_contents WHERE policy_id = $1
		 ORDER BY created_at DESC, id DESC`,
		policyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get contents")
	}
	defer rows.Close()

	var contents []model.PolicyContent
	for rows.Next() {
		var (
			c        model.PolicyContent
			dataJSON string
			metaJSON *string
		)
		if err := rows.Scan(&c.ID, &c.PolicyID, &c.ContentType, &dataJSON, &metaJSON, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan content")
		}
		if err := json.Unmarshal([]byte(dataJSON), &c.Data); err != nil {
			continue
		}
		if metaJSON != nil && *metaJSON != "" {
			if err := json.Unmarshal([]byte(*metaJSON), &c.Metadata); err != nil {
				continue
			}
		}
		contents = append(contents, c)
	}
	return contents, eris.Wrap(rows.Err(), "postgres: get contents iterate")
}

func (s *PostgresStore) SaveMedia(ctx context.Context, policyID int64, in model.MediaInput) (*model.GeneratedMedia, error) {
	var paramsJSON *string
	if in.Params != nil {
		b, err := json.Marshal(in.Params)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal generation params")
		}
		s := string(b)
		paramsJSON = &s
	}

	var url *string
	if in.URL != "" {
		url = &in.URL
	}

	now := time.Now().UTC()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO generated_media (policy_id, media_type, media_url, media_data, prompt, generation_params, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		policyID, in.MediaType, url, in.Data, in.Prompt, paramsJSON, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert media for policy %d", policyID)
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

func (s *PostgresStore) GetMedia(ctx context.Context, policyID int64, mediaType string) ([]model.GeneratedMedia, error) {
	query := `SELECT id, policy_id, media_type, media_url, media_data, prompt, generation_params, created_at
		 FROM generated_media WHERE policy_id = $1`
	args := []any{policyID}
	if mediaType != "" {
		query += ` AND media_type = $2`
		args = append(args, mediaType)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get media")
	}
	defer rows.Close()

	var media []model.GeneratedMedia
	for rows.Next() {
		var (
			m          model.GeneratedMedia
			url        *string
			prompt     *string
			paramsJSON *string
		)
		if err := rows.Scan(&m.ID, &m.PolicyID, &m.MediaType, &url, &m.Data, &prompt, &paramsJSON, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan media")
		}
		if url != nil {
			m.URL = *url
		}
		if prompt != nil {
			m.Prompt = *prompt
		}
		if paramsJSON != nil && *paramsJSON != "" {
			_ = json.Unmarshal([]byte(*paramsJSON), &m.Params)
		}
		media = append(media, m)
	}
	return media, eris.Wrap(rows.Err(), "postgres: get media iterate")
}

func scanPgPolicy(row pgx.Row) (*model.Policy, error) {
	var (
		p           model.Policy
		description sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Category, &p.TargetAudience, &description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan policy")
	}
	p.Description = description.String
	return &p, nil
}

func collectPgPolicies(rows pgx.Rows) ([]model.Policy, error) {
	defer rows.Close()

	var policies []model.Policy
	for rows.Next() {
		p, err := scanPgPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}
	return policies, eris.Wrap(rows.Err(), "postgres: iterate policies")
}
