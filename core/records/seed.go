package records

import (
	"context"
	"fmt"
	"time"
)

// Seed populates the store with a small, deterministic sample dataset so a
// fresh install can answer record queries immediately. Existing rows are left
// alone; seeding an already-populated store is a no-op.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	today := time.Now().Format("2006-01-02")

	statements := []struct {
		query string
		args  []any
	}{
		{"INSERT INTO users (name, email, role, department) VALUES (?, ?, ?, ?)",
			[]any{"Asha Rao", "asha.rao@example.com", "admin", "operations"}},
		{"INSERT INTO users (name, email, role, department) VALUES (?, ?, ?, ?)",
			[]any{"Diego Marin", "diego.marin@example.com", "member", "engineering"}},
		{"INSERT INTO users (name, email, role, department) VALUES (?, ?, ?, ?)",
			[]any{"Mei Lin", "mei.lin@example.com", "member", "engineering"}},
		{"INSERT INTO users (name, email, role, department) VALUES (?, ?, ?, ?)",
			[]any{"Tomas Eriksen", "tomas.eriksen@example.com", "manager", "people"}},

		{"INSERT INTO attendance (user_name, day, status) VALUES (?, ?, ?)",
			[]any{"Asha Rao", today, "present"}},
		{"INSERT INTO attendance (user_name, day, status) VALUES (?, ?, ?)",
			[]any{"Diego Marin", today, "present"}},
		{"INSERT INTO attendance (user_name, day, status) VALUES (?, ?, ?)",
			[]any{"Mei Lin", today, "absent"}},

		{"INSERT INTO leave_requests (user_name, from_day, to_day, status, reason) VALUES (?, ?, ?, ?, ?)",
			[]any{"Mei Lin", today, today, "pending", "medical appointment"}},
		{"INSERT INTO leave_requests (user_name, from_day, to_day, status, reason) VALUES (?, ?, ?, ?, ?)",
			[]any{"Diego Marin", today, today, "approved", "family event"}},

		{"INSERT INTO notices (title, body, posted_at) VALUES (?, ?, ?)",
			[]any{"Quarterly all-hands", "The quarterly all-hands is on Friday at 10:00.", today}},
		{"INSERT INTO notices (title, body, posted_at) VALUES (?, ?, ?)",
			[]any{"Leave policy update", "Leave requests now require two business days notice.", today}},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("seed record store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.log.Info("seeded record store")
	return nil
}
