package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
	"trustledger/pkg/platform/sentinel"
	"trustledger/pkg/requestcontext"
)

const pgUniqueViolation = "23505"

// Postgres is the durable Store. Multi-write operations run inside a single
// transaction so counter increments and index writes commit together.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool. Call Migrate before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the ledger schema and seeds the two monotonic counters and
// the pause flag. Safe to run repeatedly.
func (s *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
		`INSERT INTO counters (name, value) VALUES ('namespace_id', 0), ('identity_id', 0)
			ON CONFLICT (name) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS namespaces (
			id         BIGINT PRIMARY KEY,
			controller BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS identities (
			id           BIGINT PRIMARY KEY,
			namespace_id BIGINT NOT NULL REFERENCES namespaces (id),
			owner        BYTEA NOT NULL,
			document     JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			UNIQUE (namespace_id, owner)
		)`,
		`CREATE TABLE IF NOT EXISTS revocations (
			identity_id BIGINT NOT NULL,
			hash        BYTEA NOT NULL,
			PRIMARY KEY (identity_id, hash)
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			namespace_id      BIGINT NOT NULL,
			identity_id       BIGINT NOT NULL,
			total_score       BIGINT NOT NULL,
			number_of_ratings BIGINT NOT NULL,
			PRIMARY KEY (namespace_id, identity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS system_flags (
			name    TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL
		)`,
		`INSERT INTO system_flags (name, enabled) VALUES ('paused', FALSE)
			ON CONFLICT (name) DO NOTHING`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) CreateNamespace(ctx context.Context, controller id.Address) (models.Namespace, error) {
	var ns models.Namespace
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		next, err := nextCounter(ctx, tx, "namespace_id")
		if err != nil {
			return err
		}
		ns = models.Namespace{
			ID:         id.NamespaceID(next),
			Controller: controller,
			CreatedAt:  requestcontext.Now(ctx),
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO namespaces (id, controller, created_at) VALUES ($1, $2, $3)`,
			int64(ns.ID), controller[:], ns.CreatedAt)
		return err
	})
	if err != nil {
		return models.Namespace{}, fmt.Errorf("create namespace: %w", err)
	}
	return ns, nil
}

func (s *Postgres) GetNamespace(ctx context.Context, nsID id.NamespaceID) (models.Namespace, error) {
	var (
		controller []byte
		ns         models.Namespace
	)
	err := s.pool.QueryRow(ctx,
		`SELECT controller, created_at FROM namespaces WHERE id = $1`, int64(nsID)).
		Scan(&controller, &ns.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Namespace{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Namespace{}, fmt.Errorf("get namespace: %w", err)
	}
	ns.ID = nsID
	copy(ns.Controller[:], controller)
	return ns, nil
}

func (s *Postgres) CreateIdentity(ctx context.Context, nsID id.NamespaceID, owner id.Address, doc models.IdentityDocument) (models.Identity, error) {
	var identity models.Identity
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		next, err := nextCounter(ctx, tx, "identity_id")
		if err != nil {
			return err
		}
		identity = models.Identity{
			ID:        id.IdentityID(next),
			Namespace: nsID,
			Owner:     owner,
			Document:  doc,
			CreatedAt: requestcontext.Now(ctx),
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO identities (id, namespace_id, owner, document, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(identity.ID), int64(nsID), owner[:], doc, identity.CreatedAt)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.Identity{}, sentinel.ErrConflict
		}
		return models.Identity{}, fmt.Errorf("create identity: %w", err)
	}
	return identity, nil
}

func (s *Postgres) GetIdentity(ctx context.Context, identityID id.IdentityID) (models.Identity, error) {
	var (
		owner    []byte
		nsID     int64
		identity models.Identity
	)
	err := s.pool.QueryRow(ctx,
		`SELECT namespace_id, owner, document, created_at FROM identities WHERE id = $1`,
		int64(identityID)).
		Scan(&nsID, &owner, &identity.Document, &identity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Identity{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("get identity: %w", err)
	}
	identity.ID = identityID
	identity.Namespace = id.NamespaceID(nsID)
	copy(identity.Owner[:], owner)
	return identity, nil
}

func (s *Postgres) ResolveIdentity(ctx context.Context, nsID id.NamespaceID, owner id.Address) (id.IdentityID, error) {
	var identityID int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM identities WHERE namespace_id = $1 AND owner = $2`,
		int64(nsID), owner[:]).
		Scan(&identityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return id.NoIdentity, nil
	}
	if err != nil {
		return id.NoIdentity, fmt.Errorf("resolve identity: %w", err)
	}
	return id.IdentityID(identityID), nil
}

func (s *Postgres) MarkRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO revocations (identity_id, hash) VALUES ($1, $2)
		 ON CONFLICT (identity_id, hash) DO NOTHING`,
		int64(identityID), hash[:])
	if err != nil {
		return fmt.Errorf("mark revoked: %w", err)
	}
	return nil
}

func (s *Postgres) IsRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) (bool, error) {
	var revoked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revocations WHERE identity_id = $1 AND hash = $2)`,
		int64(identityID), hash[:]).
		Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("is revoked: %w", err)
	}
	return revoked, nil
}

func (s *Postgres) AddVotes(ctx context.Context, nsID id.NamespaceID, votes []models.VoteCast) ([]models.Score, error) {
	updated := make([]models.Score, 0, len(votes))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, v := range votes {
			score := models.Score{Namespace: nsID, Identity: v.Identity}
			err := tx.QueryRow(ctx,
				`INSERT INTO scores (namespace_id, identity_id, total_score, number_of_ratings)
				 VALUES ($1, $2, $3, 1)
				 ON CONFLICT (namespace_id, identity_id) DO UPDATE
				   SET total_score = scores.total_score + EXCLUDED.total_score,
				       number_of_ratings = scores.number_of_ratings + 1
				 RETURNING total_score, number_of_ratings`,
				int64(nsID), int64(v.Identity), int64(v.Vote)).
				Scan(&score.TotalScore, &score.NumberOfRatings)
			if err != nil {
				return err
			}
			updated = append(updated, score)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add votes: %w", err)
	}
	return updated, nil
}

func (s *Postgres) GetScore(ctx context.Context, nsID id.NamespaceID, identityID id.IdentityID) (models.Score, error) {
	score := models.Score{Namespace: nsID, Identity: identityID}
	err := s.pool.QueryRow(ctx,
		`SELECT total_score, number_of_ratings FROM scores
		 WHERE namespace_id = $1 AND identity_id = $2`,
		int64(nsID), int64(identityID)).
		Scan(&score.TotalScore, &score.NumberOfRatings)
	if errors.Is(err, pgx.ErrNoRows) {
		return score, nil
	}
	if err != nil {
		return models.Score{}, fmt.Errorf("get score: %w", err)
	}
	return score, nil
}

func (s *Postgres) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.pool.QueryRow(ctx,
		`SELECT enabled FROM system_flags WHERE name = 'paused'`).
		Scan(&paused)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pause flag: %w", err)
	}
	return paused, nil
}

func (s *Postgres) SetPaused(ctx context.Context, paused bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO system_flags (name, enabled) VALUES ('paused', $1)
		 ON CONFLICT (name) DO UPDATE SET enabled = EXCLUDED.enabled`,
		paused)
	if err != nil {
		return fmt.Errorf("set pause flag: %w", err)
	}
	return nil
}

func nextCounter(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var next int64
	err := tx.QueryRow(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = $1 RETURNING value`, name).
		Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("advance %s counter: %w", name, err)
	}
	return next, nil
}

var _ Store = (*Postgres)(nil)
