package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// attemptRepo implements AttemptRepo with raw SQL and the global sequence.
type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) Append(ctx context.Context, rec AttemptRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("append attempt: missing id")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO attempts
		(id, sequence, lesson, correct, total, percentage, elapsed_seconds, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, seqNum, rec.Lesson, rec.Correct, rec.Total, rec.Percentage,
		rec.ElapsedSeconds, rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	where, args := whereClause(opts, "finished_at", "lesson", opts.Lesson)
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, sequence, lesson, correct, total, percentage, elapsed_seconds, started_at, finished_at
		FROM attempts`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var started, finished int64
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Lesson, &rec.Correct, &rec.Total,
			&rec.Percentage, &rec.ElapsedSeconds, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *attemptRepo) StatsByLesson(ctx context.Context) ([]LessonStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		lesson, COUNT(*), MAX(percentage), AVG(percentage), MAX(finished_at)
		FROM attempts GROUP BY lesson ORDER BY lesson`)
	if err != nil {
		return nil, fmt.Errorf("query lesson stats: %w", err)
	}
	defer rows.Close()

	var out []LessonStats
	for rows.Next() {
		var st LessonStats
		var last int64
		if err := rows.Scan(&st.Lesson, &st.Attempts, &st.BestPercentage, &st.AvgPercentage, &last); err != nil {
			return nil, fmt.Errorf("scan lesson stats: %w", err)
		}
		st.LastAttempt = time.UnixMilli(last).UTC()
		out = append(out, st)
	}
	return out, rows.Err()
}
