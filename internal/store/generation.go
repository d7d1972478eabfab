package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type generationRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

const generationColumns = `id, sequence, created_at, topic, requested, produced, lesson,
	provider, model, input_tokens, output_tokens, latency_ms, error, prompt, reply`

func (r *generationRepo) Append(ctx context.Context, g Generation) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO generations
		(sequence, created_at, topic, requested, produced, lesson, provider, model,
		 input_tokens, output_tokens, latency_ms, error, prompt, reply)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq, time.Now().UnixMilli(), g.Topic, g.Requested, g.Produced, g.Lesson,
		g.Provider, g.Model, g.InputTokens, g.OutputTokens, g.LatencyMs,
		g.Err, g.Prompt, g.Reply,
	)
	if err != nil {
		return fmt.Errorf("save generation: %w", err)
	}
	return nil
}

func (r *generationRepo) Recent(ctx context.Context, opts QueryOpts) ([]GenerationRecord, error) {
	where, args := whereClause(opts, "created_at", "topic", opts.Topic)
	rows, err := r.db.QueryContext(ctx, `SELECT `+generationColumns+` FROM generations`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *generationRepo) Get(ctx context.Context, id int) (*GenerationRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

func (r *generationRepo) StatsByModel(ctx context.Context) ([]ModelStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model, COUNT(*),
		SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
		SUM(produced), SUM(input_tokens), SUM(output_tokens),
		CAST(AVG(latency_ms) AS INTEGER)
		FROM generations GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query generation stats: %w", err)
	}
	defer rows.Close()

	var out []ModelStats
	for rows.Next() {
		var st ModelStats
		if err := rows.Scan(&st.Model, &st.Runs, &st.Failed, &st.TasksProduced,
			&st.InputTokens, &st.OutputTokens, &st.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan generation stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(s rowScanner) (*GenerationRecord, error) {
	var g GenerationRecord
	var ts int64
	err := s.Scan(&g.ID, &g.Sequence, &ts, &g.Topic, &g.Requested, &g.Produced, &g.Lesson,
		&g.Provider, &g.Model, &g.InputTokens, &g.OutputTokens, &g.LatencyMs,
		&g.Err, &g.Prompt, &g.Reply)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan generation: %w", err)
	}
	g.CreatedAt = time.UnixMilli(ts).UTC()
	return &g, nil
}
