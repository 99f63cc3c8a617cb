package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

func (s *SQLStore) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	byTopic, err := encodeCounts(data.ByTopic)
	if err != nil {
		return fmt.Errorf("encode topic scores: %w", err)
	}
	byLevel, err := encodeCounts(data.ByLevel)
	if err != nil {
		return fmt.Errorf("encode level scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_events
			(sequence, created_at, session_id, action, questions, total, possible, duration_secs, by_topic, by_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		seqNum, time.Now().Unix(), data.SessionID, data.Action,
		data.Questions, data.Total, data.Possible, data.DurationSecs,
		byTopic, byLevel,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

// QuerySessionSummaries returns finished sessions, newest first.
func (s *SQLStore) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	where, args := opts.filter([]string{"action = $1"}, []any{ActionFinish})
	query := `SELECT sequence, created_at, session_id, questions, total, possible, duration_secs, by_topic, by_level
		FROM session_events WHERE ` + where + ` ORDER BY sequence DESC` + opts.limitClause()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var (
			r                SessionSummaryRecord
			created          int64
			byTopic, byLevel string
		)
		if err := rows.Scan(&r.Sequence, &created, &r.SessionID, &r.Questions,
			&r.Total, &r.Possible, &r.DurationSecs, &byTopic, &byLevel); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		r.Timestamp = time.Unix(created, 0)
		if r.ByTopic, err = decodeCounts(byTopic); err != nil {
			return nil, fmt.Errorf("decode topic scores: %w", err)
		}
		if r.ByLevel, err = decodeCounts(byLevel); err != nil {
			return nil, fmt.Errorf("decode level scores: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// filter appends the QueryOpts conditions to base, numbering placeholders
// after the existing args.
func (o QueryOpts) filter(base []string, args []any) (string, []any) {
	add := func(cond string, v any) {
		args = append(args, v)
		base = append(base, fmt.Sprintf(cond, len(args)))
	}
	if o.After > 0 {
		add("sequence > $%d", o.After)
	}
	if o.Before > 0 {
		add("sequence < $%d", o.Before)
	}
	if !o.From.IsZero() {
		add("created_at >= $%d", o.From.Unix())
	}
	if !o.To.IsZero() {
		add("created_at <= $%d", o.To.Unix())
	}
	if len(base) == 0 {
		return "1 = 1", args
	}
	return strings.Join(base, " AND "), args
}

func (o QueryOpts) limitClause() string {
	if o.Limit > 0 {
		return fmt.Sprintf(" LIMIT %d", o.Limit)
	}
	return ""
}

func encodeCounts(m map[string]int) (string, error) {
	if m == nil {
		m = map[string]int{}
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func decodeCounts(s string) (map[string]int, error) {
	m := map[string]int{}
	if s == "" {
		return m, nil
	}
	err := json.Unmarshal([]byte(s), &m)
	return m, err
}
