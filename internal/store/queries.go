package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/rulemine/internal/apriori"
)

// timeLayout is fixed width so that created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run operations

// SaveRun stores run together with every frequent itemset of res and every
// rule of sets, in one transaction. Rules keep the order they have in sets.
// run.ID and run.CreatedAt are filled in when empty; the id is returned.
func (s *Store) SaveRun(run *Run, res *apriori.Result, sets []apriori.RuleSet) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, source_path, transaction_count, min_support, max_level, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.SourcePath,
		run.TransactionCount,
		run.MinSupport,
		run.MaxLevel,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", classify(err))
	}

	itemStmt, err := tx.Prepare(`INSERT INTO itemsets (run_id, level, items, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare itemset insert: %w", classify(err))
	}
	defer itemStmt.Close()

	for _, rec := range ItemsetRecords(res) {
		itemsJSON, err := json.Marshal(rec.Items)
		if err != nil {
			return "", fmt.Errorf("failed to marshal itemset: %w", err)
		}
		if _, err := itemStmt.Exec(run.ID, rec.Level, string(itemsJSON), rec.Count); err != nil {
			return "", fmt.Errorf("failed to insert itemset %v: %w", rec.Items, err)
		}
	}

	ruleStmt, err := tx.Prepare(`
		INSERT INTO rules (run_id, level, position, antecedent, consequent, all_freq, left_freq, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare rule insert: %w", classify(err))
	}
	defer ruleStmt.Close()

	for _, rec := range RuleRecords(sets) {
		left, err := json.Marshal(rec.Antecedent)
		if err != nil {
			return "", fmt.Errorf("failed to marshal antecedent: %w", err)
		}
		right, err := json.Marshal(rec.Consequent)
		if err != nil {
			return "", fmt.Errorf("failed to marshal consequent: %w", err)
		}
		_, err = ruleStmt.Exec(run.ID, rec.Level, rec.Position, string(left), string(right),
			rec.AllFreq, rec.LeftFreq, rec.Confidence)
		if err != nil {
			return "", fmt.Errorf("failed to insert rule %v -> %v: %w", rec.Antecedent, rec.Consequent, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return run.ID, nil
}

const runColumns = `id, created_at, source_path, transaction_count, min_support, max_level, duration_ms`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var run Run
	var createdAt string
	var durationMS int64

	err := row.Scan(
		&run.ID,
		&createdAt,
		&run.SourcePath,
		&run.TransactionCount,
		&run.MinSupport,
		&run.MaxLevel,
		&durationMS,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return &run, nil
}

// GetRun retrieves a run by its id or by a unique prefix of it.
func (s *Store) GetRun(id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' ORDER BY id LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, classify(err))
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	}
	if matches[0].ID == id {
		return matches[0], nil
	}
	return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no runs stored", ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", classify(err))
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", classify(err))
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and everything mined in it.
func (s *Store) DeleteRun(id string) error {
	result, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, classify(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return nil
}

// Itemset and rule operations

// GetItemsets returns the frequent itemsets of a run ordered by level, then
// item sequence. Level 0 selects every level.
func (s *Store) GetItemsets(runID string, level int) ([]*ItemsetRecord, error) {
	query := `
		SELECT level, items, count
		FROM itemsets
		WHERE run_id = ? AND (? = 0 OR level = ?)
		ORDER BY level
	`

	rows, err := s.db.Query(query, runID, level, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get itemsets for run %s: %w", runID, classify(err))
	}
	defer rows.Close()

	var records []*ItemsetRecord
	for rows.Next() {
		var rec ItemsetRecord
		var itemsJSON string
		if err := rows.Scan(&rec.Level, &itemsJSON, &rec.Count); err != nil {
			return nil, fmt.Errorf("failed to scan itemset row: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &rec.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal itemset: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itemsets: %w", err)
	}

	sortItemsets(records)
	return records, nil
}

const ruleColumns = `level, position, antecedent, consequent, all_freq, left_freq, confidence`

func (s *Store) queryRules(query string, args ...any) ([]*RuleRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []*RuleRecord
	for rows.Next() {
		var rec RuleRecord
		var left, right string
		err := rows.Scan(
			&rec.Level,
			&rec.Position,
			&left,
			&right,
			&rec.AllFreq,
			&rec.LeftFreq,
			&rec.Confidence,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		if err := json.Unmarshal([]byte(left), &rec.Antecedent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal antecedent: %w", err)
		}
		if err := json.Unmarshal([]byte(right), &rec.Consequent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consequent: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return records, nil
}

// GetRules returns the rules of a run in ranked order, level by level.
// Level 0 selects every level.
func (s *Store) GetRules(runID string, level int) ([]*RuleRecord, error) {
	records, err := s.queryRules(`
		SELECT `+ruleColumns+`
		FROM rules
		WHERE run_id = ? AND (? = 0 OR level = ?)
		ORDER BY level, position
	`, runID, level, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get rules for run %s: %w", runID, err)
	}
	return records, nil
}

// GetRulesByAntecedent returns the rules of a run whose antecedent is
// exactly the given items, best ranked first. items must be in canonical
// order.
func (s *Store) GetRulesByAntecedent(runID string, items []string) ([]*RuleRecord, error) {
	left, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal antecedent: %w", err)
	}

	records, err := s.queryRules(`
		SELECT `+ruleColumns+`
		FROM rules
		WHERE run_id = ? AND antecedent = ?
		ORDER BY confidence DESC, level, position
	`, runID, string(left))
	if err != nil {
		return nil, fmt.Errorf("failed to get rules for {%v}: %w", items, err)
	}
	return records, nil
}

// GetLevelSummaries counts itemsets and rules per level of a run. Levels up
// to the run's max level are always present, even when empty.
func (s *Store) GetLevelSummaries(run *Run) ([]LevelSummary, error) {
	summaries := make([]LevelSummary, run.MaxLevel)
	for i := range summaries {
		summaries[i].Level = i + 1
	}

	fill := func(query string, set func(*LevelSummary, int)) error {
		rows, err := s.db.Query(query, run.ID)
		if err != nil {
			return classify(err)
		}
		defer rows.Close()
		for rows.Next() {
			var level, n int
			if err := rows.Scan(&level, &n); err != nil {
				return err
			}
			if level >= 1 && level <= len(summaries) {
				set(&summaries[level-1], n)
			}
		}
		return rows.Err()
	}

	if err := fill(`SELECT level, COUNT(*) FROM itemsets WHERE run_id = ? GROUP BY level`,
		func(ls *LevelSummary, n int) { ls.Itemsets = n }); err != nil {
		return nil, fmt.Errorf("failed to count itemsets: %w", err)
	}
	if err := fill(`SELECT level, COUNT(*) FROM rules WHERE run_id = ? GROUP BY level`,
		func(ls *LevelSummary, n int) { ls.Rules = n }); err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	return summaries, nil
}
