package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster-service/internal/seed"
)

// SeedLoader reads the quiz catalog stored as JSONB rows in quiz_seeds.
type SeedLoader struct {
	pool *pgxpool.Pool
}

func NewSeedLoader(pool *pgxpool.Pool) *SeedLoader {
	return &SeedLoader{pool: pool}
}

func (l *SeedLoader) LoadSeeds(ctx context.Context) ([]seed.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, data FROM quiz_seeds WHERE enabled ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query quiz seeds: %w", err)
	}
	defer rows.Close()

	var out []seed.Quiz
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz seed: %w", err)
		}
		var quiz seed.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz seed %s: %w", id, err)
		}
		out = append(out, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz seeds: %w", err)
	}
	return out, nil
}
