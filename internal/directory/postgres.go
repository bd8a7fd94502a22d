package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the directory needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDirectory serves vehicle, user and service center lookups from Postgres.
type PostgresDirectory struct {
	db Querier
}

// NewPostgresDirectory initializes a directory backed by pgxpool.
func NewPostgresDirectory(db Querier) *PostgresDirectory {
	if db == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresDirectory{db: db}
}

var (
	_ VehicleDirectory = (*PostgresDirectory)(nil)
	_ UserDirectory    = (*PostgresDirectory)(nil)
	_ CenterDirectory  = (*PostgresDirectory)(nil)
)

// FindVehicle fetches a vehicle by exact identifier after trimming whitespace.
func (d *PostgresDirectory) FindVehicle(ctx context.Context, vehicleID string) (*Vehicle, error) {
	query := `
		SELECT vehicle_id, user_id, COALESCE(brand, '')
		FROM vehicles
		WHERE vehicle_id = $1
	`
	row := d.db.QueryRow(ctx, query, strings.TrimSpace(vehicleID))
	var v Vehicle
	if err := row.Scan(&v.ID, &v.UserID, &v.Brand); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("directory: vehicle select failed: %w", err)
	}
	return &v, nil
}

// FindUser fetches a user by identifier.
func (d *PostgresDirectory) FindUser(ctx context.Context, userID string) (*User, error) {
	query := `
		SELECT user_id, COALESCE(phone, '')
		FROM users
		WHERE user_id = $1
	`
	row := d.db.QueryRow(ctx, query, userID)
	var u User
	if err := row.Scan(&u.ID, &u.Phone); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("directory: user select failed: %w", err)
	}
	return &u, nil
}

// FindCentersByBrandPrefix lists centers whose company name starts with the
// brand, case-insensitively, in insertion order.
func (d *PostgresDirectory) FindCentersByBrandPrefix(ctx context.Context, brand string, limit int) ([]ServiceCenter, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT id, name, company_name, location
		FROM service_centers
		WHERE company_name ILIKE $1 || '%'
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := d.db.Query(ctx, query, brand, limit)
	if err != nil {
		return nil, fmt.Errorf("directory: center select failed: %w", err)
	}
	defer rows.Close()

	var centers []ServiceCenter
	for rows.Next() {
		var c ServiceCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.CompanyName, &c.Location); err != nil {
			return nil, fmt.Errorf("directory: center scan failed: %w", err)
		}
		centers = append(centers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: center rows failed: %w", err)
	}
	return centers, nil
}

// FindCenterByID fetches a single center for display purposes.
func (d *PostgresDirectory) FindCenterByID(ctx context.Context, centerID string) (*ServiceCenter, error) {
	query := `
		SELECT id, name, company_name, location
		FROM service_centers
		WHERE id = $1
	`
	row := d.db.QueryRow(ctx, query, centerID)
	var c ServiceCenter
	if err := row.Scan(&c.ID, &c.Name, &c.CompanyName, &c.Location); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("directory: center select failed: %w", err)
	}
	return &c, nil
}
