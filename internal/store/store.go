// Package store is the member store: SQLite behind a small entity API
// (list, create, partial update, cascade delete, aggregation).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// User is a persisted member entity.
type User struct {
	ID       string
	Name     string
	Phone    string
	Password string
	Avatar   string
	Bio      string
	Skills   string
	Location string
	Company  string
	Position string
	Role     string
	IsActive bool
}

// LocationCount is one bucket of the location distribution.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the member database at path.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

const userColumns = "id, name, COALESCE(phone, ''), password, COALESCE(avatar, ''), bio, skills, location, company, position, role, is_active"

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var active int
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Password, &u.Avatar, &u.Bio,
		&u.Skills, &u.Location, &u.Company, &u.Position, &u.Role, &active)
	u.IsActive = active != 0
	return u, err
}

// Users returns all member entities, ordered by creation time.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of member entities.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// CreateUser inserts a member. A missing ID is assigned; an empty phone is
// stored as NULL so the unique index only applies to real values.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "USER"
	}
	var phone any
	if u.Phone != "" {
		phone = u.Phone
	}
	active := 0
	if u.IsActive {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, phone, password, avatar, bio, skills, location, company, position, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, phone, u.Password, nullIfEmpty(u.Avatar), u.Bio, u.Skills,
		u.Location, u.Company, u.Position, u.Role, active)
	if err != nil {
		return User{}, fmt.Errorf("create user %q: %w", u.Name, err)
	}
	return u, nil
}

// Updatable columns for UpdateUserFields. Account role, points and level are
// deliberately absent: reconciliation never overwrites them.
var updatableColumns = map[string]bool{
	"location": true,
	"company":  true,
	"position": true,
	"avatar":   true,
	"bio":      true,
}

// UpdateUserFields applies a partial update restricted to reconciliation-
// sourced columns. Unknown columns are an error, not a silent skip.
func (s *Store) UpdateUserFields(ctx context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	cols := make([]string, 0, len(fields))
	for c := range fields {
		if !updatableColumns[c] {
			return fmt.Errorf("update user %s: column %q is not reconciliation-owned", id, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		set = append(set, c+" = ?")
		if c == "avatar" {
			args = append(args, nullIfEmpty(fields[c]))
		} else {
			args = append(args, fields[c])
		}
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user %s: no such user", id)
	}
	return nil
}

// UpdateUserLocation rewrites only the location column.
func (s *Store) UpdateUserLocation(ctx context.Context, id, location string) error {
	return s.UpdateUserFields(ctx, id, map[string]string{"location": location})
}

// dependentDeletes is the cascade order: every dependent table before the
// entity row. Messages cover both directions.
var dependentDeletes = []struct {
	table string
	where string
}{
	{"bookmarks", "user_id = ?"},
	{"likes", "user_id = ?"},
	{"comments", "author_id = ?"},
	{"posts", "author_id = ?"},
	{"event_participants", "user_id = ?"},
	{"enrollments", "user_id = ?"},
	{"progress", "user_id = ?"},
	{"messages", "sender_id = ? OR receiver_id = ?"},
	{"notifications", "user_id = ?"},
	{"follows", "follower_id = ? OR following_id = ?"},
}

// DeleteUserCascade removes a member and every dependent record in one
// transaction. A failure anywhere rolls the whole entity back.
func (s *Store) DeleteUserCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete of user %s: %w", id, err)
	}
	defer tx.Rollback()

	for _, d := range dependentDeletes {
		args := []any{id}
		if strings.Count(d.where, "?") == 2 {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+d.table+" WHERE "+d.where, args...); err != nil {
			return fmt.Errorf("delete %s for user %s: %w", d.table, id, err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete user %s: no such user", id)
	}
	return tx.Commit()
}

// DeleteImportedUsers removes regular members except the protected names.
// Used by replace mode before a fresh sync. Each member goes through the
// full cascade so dependent rows never orphan.
func (s *Store) DeleteImportedUsers(ctx context.Context, protected []string) (int, error) {
	keep := make(map[string]bool, len(protected))
	for _, n := range protected {
		keep[n] = true
	}
	users, err := s.Users(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, u := range users {
		if u.Role != "USER" || keep[u.Name] {
			continue
		}
		if err := s.DeleteUserCascade(ctx, u.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// LocationDistribution groups members by location, descending by count,
// truncated to top n.
func (s *Store) LocationDistribution(ctx context.Context, n int) ([]LocationCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location, COUNT(*) AS c FROM users
		GROUP BY location ORDER BY c DESC, location LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("location distribution: %w", err)
	}
	defer rows.Close()

	var out []LocationCount
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// CountByLocation counts members with the exact location value.
func (s *Store) CountByLocation(ctx context.Context, location string) (int, error) {
	var c int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE location = ?", location).Scan(&c)
	return c, err
}

// DependentCount sums rows across all dependent tables for one user.
// Only used by tests.
func (s *Store) DependentCount(ctx context.Context, id string) (int, error) {
	total := 0
	for _, d := range dependentDeletes {
		args := []any{id}
		if strings.Count(d.where, "?") == 2 {
			args = append(args, id)
		}
		var c int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+d.table+" WHERE "+d.where, args...).Scan(&c); err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
