package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite.
type ResourceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewResourceRepository creates a new SQLite resource repository.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateResource inserts a new resource catalog entry.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource booking.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO resources (id, name, number, kind, sports, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var sports sql.NullString
	if len(resource.Sports) > 0 {
		sports.String = strings.Join(resource.Sports, ",")
		sports.Valid = true
	}

	_, err := r.helper.Exec(ctx, query,
		resource.ID,
		resource.Name,
		resource.Number,
		string(resource.Kind),
		sports,
		resource.CreatedAt.UTC().Format(time.RFC3339),
		resource.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// GetResource retrieves a resource by ID.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (booking.Resource, error) {
	if id == "" {
		return booking.Resource{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, number, kind, sports, created_at, updated_at
		FROM resources
		WHERE id = ?
	`

	resource, err := scanResource(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return booking.Resource{}, r.mapper.MapError(err)
	}
	return resource, nil
}

// ListResources returns all resources ordered by kind then number.
func (r *ResourceRepository) ListResources(ctx context.Context) ([]booking.Resource, error) {
	query := `
		SELECT id, name, number, kind, sports, created_at, updated_at
		FROM resources
		ORDER BY kind ASC, number ASC, name ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var resources []booking.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return resources, nil
}

// DeleteResource removes a resource by ID together with every reservation,
// exception and blackout that references it. The cleanup and the delete
// commit as one transaction so a failure partway leaves the catalog intact.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		cleanup := []string{
			"DELETE FROM blackouts WHERE resource_id = ?",
			"DELETE FROM recurring_exceptions WHERE recurring_id IN (SELECT id FROM recurring_reservations WHERE resource_id = ?)",
			"DELETE FROM recurring_reservations WHERE resource_id = ?",
			"DELETE FROM one_off_reservations WHERE resource_id = ?",
		}
		for _, query := range cleanup {
			if _, err := r.helper.ExecTx(tx, query, id); err != nil {
				return r.mapper.MapError(err)
			}
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM resources WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (booking.Resource, error) {
	var resource booking.Resource
	var kind string
	var sports sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Number,
		&kind,
		&sports,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return booking.Resource{}, err
	}

	resource.Kind = booking.ResourceKind(kind)
	if sports.Valid && sports.String != "" {
		resource.Sports = strings.Split(sports.String, ",")
	}

	if resource.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return booking.Resource{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if resource.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return booking.Resource{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return resource, nil
}
