package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemindhq/hivemind/internal/domain"
)

// QueryLogRepository stores resolved queries for auditing and feedback loops.
type QueryLogRepository struct {
	pool *pgxpool.Pool
}

func NewQueryLogRepository(pool *pgxpool.Pool) *QueryLogRepository {
	return &QueryLogRepository{pool: pool}
}

func (r *QueryLogRepository) Create(ctx context.Context, q *domain.QueryResult) error {
	topicsReferenced, err := json.Marshal(q.TopicsReferenced)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO query_log (id, space_id, query, answer, summaries_used, topics_referenced, original_entries, confidence, insufficient_info, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		q.ID, q.SpaceID, q.Query, q.Answer, q.SummariesUsed, topicsReferenced, q.OriginalEntries, q.Confidence, q.InsufficientInfo, q.CreatedAt,
	)
	return err
}

// ListRecent returns the most recent logged queries for a space.
func (r *QueryLogRepository) ListRecent(ctx context.Context, spaceID string, limit int) ([]*domain.QueryResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, space_id, query, answer, summaries_used, topics_referenced, original_entries, confidence, insufficient_info, created_at
		 FROM query_log WHERE space_id = $1 ORDER BY created_at DESC LIMIT $2`,
		spaceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.QueryResult
	for rows.Next() {
		var q domain.QueryResult
		var topicsReferenced []byte
		if err := rows.Scan(&q.ID, &q.SpaceID, &q.Query, &q.Answer, &q.SummariesUsed, &topicsReferenced, &q.OriginalEntries, &q.Confidence, &q.InsufficientInfo, &q.CreatedAt); err != nil {
			return nil, err
		}
		if len(topicsReferenced) > 0 {
			if err := json.Unmarshal(topicsReferenced, &q.TopicsReferenced); err != nil {
				return nil, err
			}
		}
		results = append(results, &q)
	}
	return results, rows.Err()
}
