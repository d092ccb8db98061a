package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/isdelr/devlink/internal/config"
	"github.com/isdelr/devlink/internal/models"
)

const developerColumns = `d.id, d.owner_id, d.name, d.email, d.phone, d.github, d.linkedin,
	d.domain, d.techstack_json, d.created_at, d.updated_at`

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore wraps an open, migrated connection pool.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Close releases the connection pool.
func (s *SQLStore) Close(_ context.Context) error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateUser inserts a new user.
func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users(id, username, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by normalized email.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLStore) getUser(ctx context.Context, column, value string) (models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE ` + column + ` = ?`
	var u models.User
	err := s.db.QueryRowContext(ctx, s.rebind(query), value).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// CreateDeveloper inserts a developer record and its tech stack terms.
func (s *SQLStore) CreateDeveloper(ctx context.Context, dev *models.Developer) error {
	dev.PrepareForSave()
	const query = `
		INSERT INTO developers(id, owner_id, name, email, phone, github, linkedin, domain,
		                       techstack_json, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(query),
			dev.ID, dev.OwnerID, dev.Name, dev.Email, dev.Phone, dev.GitHub, dev.LinkedIn,
			dev.Domain, dev.TechStackJSON, dev.CreatedAt, dev.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateEmail
			}
			return fmt.Errorf("insert developer: %w", err)
		}
		return s.writeTechStack(ctx, tx, dev)
	})
}

// GetDeveloper retrieves a developer record by id regardless of owner.
func (s *SQLStore) GetDeveloper(ctx context.Context, id string) (models.Developer, error) {
	query := `SELECT ` + developerColumns + ` FROM developers d WHERE d.id = ?`
	dev, err := scanDeveloper(s.db.QueryRowContext(ctx, s.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Developer{}, models.ErrNotFound
		}
		return models.Developer{}, fmt.Errorf("select developer: %w", err)
	}
	return dev, nil
}

// UpdateDeveloper replaces the mutable fields of a record owned by dev.OwnerID.
func (s *SQLStore) UpdateDeveloper(ctx context.Context, dev *models.Developer) error {
	dev.PrepareForSave()
	const query = `
		UPDATE developers
		SET name = ?, email = ?, phone = ?, github = ?, linkedin = ?, domain = ?,
		    techstack_json = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(query),
			dev.Name, dev.Email, dev.Phone, dev.GitHub, dev.LinkedIn, dev.Domain,
			dev.TechStackJSON, dev.UpdatedAt, dev.ID, dev.OwnerID)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateEmail
			}
			return fmt.Errorf("update developer: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update developer: %w", err)
		} else if n == 0 {
			return models.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM developer_techstack WHERE developer_id = ?`), dev.ID); err != nil {
			return fmt.Errorf("clear techstack: %w", err)
		}
		return s.writeTechStack(ctx, tx, dev)
	})
}

// DeleteDeveloper removes a record owned by ownerID.
func (s *SQLStore) DeleteDeveloper(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM developers WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete developer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete developer: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListDevelopers returns the owner's records matching filter, oldest first.
func (s *SQLStore) ListDevelopers(ctx context.Context, ownerID string, filter models.DeveloperFilter) ([]models.Developer, error) {
	query, args := buildDeveloperQuery(s.lowerFunc(), ownerID, filter)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list developers: %w", err)
	}
	defer rows.Close()

	devs := []models.Developer{}
	for rows.Next() {
		dev, err := scanDeveloper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan developer: %w", err)
		}
		devs = append(devs, dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list developers: %w", err)
	}
	return devs, nil
}

// lowerFunc names the SQL function that lower-cases text the way strings.ToLower does.
func (s *SQLStore) lowerFunc() string {
	if s.dialect == config.DriverSQLite {
		return sqliteFold
	}
	return "LOWER"
}

// buildDeveloperQuery renders the owner-scoped listing query with ? placeholders.
// lower is the SQL function applied to stored text before matching.
func buildDeveloperQuery(lower, ownerID string, f models.DeveloperFilter) (string, []interface{}) {
	var (
		where = []string{"d.owner_id = ?"}
		args  = []interface{}{ownerID}
	)

	if f.Domain != "" {
		where = append(where, lower+`(d.domain) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Domain))
	}

	for _, term := range f.LowerTechStack() {
		where = append(where, `EXISTS (SELECT 1 FROM developer_techstack t WHERE t.developer_id = d.id AND `+lower+`(t.term) = ?)`)
		args = append(args, term)
	}

	if f.Search != "" {
		pattern := likePattern(f.Search)
		cols := []string{"d.name", "d.email"}
		if f.SearchDomain {
			cols = append(cols, "d.domain")
		}
		ors := make([]string, len(cols))
		for i, col := range cols {
			ors[i] = lower + `(` + col + `) LIKE ? ESCAPE '\'`
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	query := `SELECT ` + developerColumns + ` FROM developers d WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY d.created_at, d.id`
	return query, args
}

// likePattern lower-cases s, escapes LIKE wildcards and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func (s *SQLStore) writeTechStack(ctx context.Context, tx *sql.Tx, dev *models.Developer) error {
	query := s.rebind(`INSERT INTO developer_techstack(developer_id, ord, term) VALUES(?, ?, ?)`)
	for i, term := range dev.TechStack {
		if _, err := tx.ExecContext(ctx, query, dev.ID, i, term); err != nil {
			return fmt.Errorf("insert techstack: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanDeveloper is a helper to scan a developer from a row or rows object.
func scanDeveloper(scanner interface{ Scan(...interface{}) error }) (models.Developer, error) {
	var dev models.Developer
	err := scanner.Scan(
		&dev.ID, &dev.OwnerID, &dev.Name, &dev.Email, &dev.Phone, &dev.GitHub, &dev.LinkedIn,
		&dev.Domain, &dev.TechStackJSON, &dev.CreatedAt, &dev.UpdatedAt,
	)
	if err != nil {
		return dev, err
	}
	dev.PrepareForAPI()
	return dev, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
