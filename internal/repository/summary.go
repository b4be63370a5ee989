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

type SummaryRepository struct {
	db dbtx
}

func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: pool}
}

func NewSummaryRepositoryWithTx(tx pgx.Tx) *SummaryRepository {
	return &SummaryRepository{db: tx}
}

func (r *SummaryRepository) Create(ctx context.Context, s *domain.Summary) error {
	topicSources, err := json.Marshal(s.TopicSources)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO summaries (space_id, id, domain, subtopic, content, topic_sources, contributing_entries, entry_count, version, created_at, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.SpaceID, s.ID, s.Domain, s.Subtopic, s.Content, topicSources, s.ContributingEntries, s.EntryCount, s.Version, s.CreatedAt, s.LastUpdated,
	)
	if isUniqueViolation(err) {
		return domain.ErrSummaryAlreadyExists
	}
	return err
}

func (r *SummaryRepository) GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error) {
	row := r.db.QueryRow(ctx,
		`SELECT space_id, id, domain, subtopic, content, topic_sources, contributing_entries, entry_count, version, created_at, last_updated
		 FROM summaries WHERE space_id = $1 AND id = $2`,
		spaceID, id,
	)
	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, err
	}
	return summary, nil
}

func (r *SummaryRepository) ListBySpace(ctx context.Context, spaceID string) ([]*domain.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT space_id, id, domain, subtopic, content, topic_sources, contributing_entries, entry_count, version, created_at, last_updated
		 FROM summaries WHERE space_id = $1 ORDER BY last_updated DESC`,
		spaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaryRows(rows)
}

func (r *SummaryRepository) ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*service.SummaryPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT space_id, id, domain, subtopic, content, topic_sources, contributing_entries, entry_count, version, created_at, last_updated
			 FROM summaries
			 WHERE space_id = $1 AND (last_updated, id) < ($2, $3)
			 ORDER BY last_updated DESC, id DESC
			 LIMIT $4`,
			spaceID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT space_id, id, domain, subtopic, content, topic_sources, contributing_entries, entry_count, version, created_at, last_updated
			 FROM summaries
			 WHERE space_id = $1
			 ORDER BY last_updated DESC, id DESC
			 LIMIT $2`,
			spaceID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanSummaryRows(rows)
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
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.LastUpdated)
	}

	return &service.SummaryPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// UpdateVersioned persists a summary only if the stored row still carries
// expectedVersion. A concurrent writer that got there first makes the update
// a no-op, reported as ErrVersionConflict so the caller can re-read and
// re-merge instead of silently losing its changes.
func (r *SummaryRepository) UpdateVersioned(ctx context.Context, s *domain.Summary, expectedVersion int64) error {
	topicSources, err := json.Marshal(s.TopicSources)
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE summaries
		 SET content = $1, topic_sources = $2, contributing_entries = $3, entry_count = $4, version = $5, last_updated = $6
		 WHERE space_id = $7 AND id = $8 AND version = $9`,
		s.Content, topicSources, s.ContributingEntries, s.EntryCount, s.Version, s.LastUpdated,
		s.SpaceID, s.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *SummaryRepository) ListDomains(ctx context.Context, spaceID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT domain FROM summaries WHERE space_id = $1 ORDER BY domain ASC`,
		spaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func scanSummary(row pgx.Row) (*domain.Summary, error) {
	var s domain.Summary
	var topicSources []byte
	if err := row.Scan(&s.SpaceID, &s.ID, &s.Domain, &s.Subtopic, &s.Content, &topicSources, &s.ContributingEntries, &s.EntryCount, &s.Version, &s.CreatedAt, &s.LastUpdated); err != nil {
		return nil, err
	}
	if len(topicSources) > 0 {
		if err := json.Unmarshal(topicSources, &s.TopicSources); err != nil {
			return nil, err
		}
	}
	if s.TopicSources == nil {
		s.TopicSources = map[string][]string{}
	}
	if s.ContributingEntries == nil {
		s.ContributingEntries = []string{}
	}
	return &s, nil
}

func scanSummaryRows(rows pgx.Rows) ([]*domain.Summary, error) {
	var summaries []*domain.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
