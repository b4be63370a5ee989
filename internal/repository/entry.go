package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
	"github.com/hivemindhq/hivemind/internal/service"
)

type EntryRepository struct {
	db dbtx
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{db: pool}
}

func NewEntryRepositoryWithTx(tx pgx.Tx) *EntryRepository {
	return &EntryRepository{db: tx}
}

func (r *EntryRepository) Create(ctx context.Context, e *domain.Entry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO entries (id, space_id, content, source_type, contributor, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.SpaceID, e.Content, e.SourceType, e.Contributor, metadata, e.CreatedAt,
	)
	return err
}

func (r *EntryRepository) GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, space_id, content, source_type, contributor, metadata, created_at
		 FROM entries WHERE space_id = $1 AND id = $2`,
		spaceID, id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *EntryRepository) GetByIDs(ctx context.Context, spaceID string, ids []string) ([]*domain.Entry, error) {
	if len(ids) == 0 {
		return []*domain.Entry{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, space_id, content, source_type, contributor, metadata, created_at
		 FROM entries WHERE space_id = $1 AND id = ANY($2)
		 ORDER BY created_at ASC`,
		spaceID, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntryRows(rows)
}

func (r *EntryRepository) ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*service.EntryPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, space_id, content, source_type, contributor, metadata, created_at
			 FROM entries
			 WHERE space_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			spaceID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, space_id, content, source_type, contributor, metadata, created_at
			 FROM entries
			 WHERE space_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			spaceID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanEntryRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.EntryPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	var metadata []byte
	if err := row.Scan(&e.ID, &e.SpaceID, &e.Content, &e.SourceType, &e.Contributor, &metadata, &e.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func scanEntryRows(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
