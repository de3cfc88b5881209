package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// coachColumns is the column list shared by all row scans.
const coachColumns = `
	id, name, created_at,
	bio, profile_image_url, card_image_url, coach_types, hourly_rate,
	certifications, is_verified,
	location_city, location_region, location_country, location,
	online_available, in_person_available,
	review_count, avg_rating, session_count, last_session_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Insert stores a new coach profile.
func (r *PostgresRepository) Insert(ctx context.Context, c *Coach) error {
	query := `
		INSERT INTO coaches (
			id, name, created_at,
			bio, profile_image_url, card_image_url, coach_types, hourly_rate,
			certifications, is_verified,
			location_city, location_region, location_country, location,
			online_available, in_person_available,
			review_count, avg_rating, session_count, last_session_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.CreatedAt,
		c.Bio, c.ProfileImageURL, c.CardImageURL, textArray(c.CoachTypes), c.HourlyRate,
		textArray(c.Certifications), c.Verified,
		nullIfEmpty(c.City), nullIfEmpty(c.Region), nullIfEmpty(c.Country), c.LegacyLocation,
		c.OnlineAvailable, c.InPersonAvailable,
		c.ReviewCount, c.AvgRating, c.SessionCount, c.LastSessionAt,
	)
	if err != nil {
		return fmt.Errorf("insert coach %s: %w", c.ID, err)
	}
	return nil
}

// Update replaces an existing coach profile.
func (r *PostgresRepository) Update(ctx context.Context, c *Coach) error {
	query := `
		UPDATE coaches SET
			name = $2, bio = $3, profile_image_url = $4, card_image_url = $5,
			coach_types = $6, hourly_rate = $7, certifications = $8, is_verified = $9,
			location_city = $10, location_region = $11, location_country = $12, location = $13,
			online_available = $14, in_person_available = $15,
			review_count = $16, avg_rating = $17, session_count = $18, last_session_at = $19
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Bio, c.ProfileImageURL, c.CardImageURL,
		textArray(c.CoachTypes), c.HourlyRate, textArray(c.Certifications), c.Verified,
		nullIfEmpty(c.City), nullIfEmpty(c.Region), nullIfEmpty(c.Country), c.LegacyLocation,
		c.OnlineAvailable, c.InPersonAvailable,
		c.ReviewCount, c.AvgRating, c.SessionCount, c.LastSessionAt,
	)
	if err != nil {
		return fmt.Errorf("update coach %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update coach %s: rows affected: %w", c.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a coach by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Coach, error) {
	query := `SELECT` + coachColumns + ` FROM coaches WHERE id = $1`

	c, err := scanCoach(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coach %s: %w", id, err)
	}
	return c, nil
}

// ListCandidates returns coaches matching the filter's scope, ordered by ID.
// Online-available coaches match at every scope.
func (r *PostgresRepository) ListCandidates(ctx context.Context, f Filter) ([]*Coach, error) {
	query := `SELECT` + coachColumns + ` FROM coaches WHERE `
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.Scope {
	case ScopeCity:
		query += `(online_available OR lower(location_city) = lower(` + arg(f.Searcher.City) + `))`
	case ScopeRegion:
		query += `(online_available OR lower(location_region) IN (lower(` +
			arg(f.Searcher.Region) + `), lower(` + arg(f.Searcher.County) + `)))`
	case ScopeCountry:
		query += `(online_available OR lower(location_country) IN (lower(` +
			arg(f.Searcher.Country) + `), lower(` + arg(f.Searcher.CountryCode) + `)))`
	case ScopeGlobal:
		query += `TRUE`
	default:
		return nil, fmt.Errorf("list candidates: unknown scope %q", f.Scope)
	}

	if f.CoachType != "" {
		query += ` AND EXISTS (SELECT 1 FROM unnest(coach_types) AS t WHERE lower(t) = lower(` +
			arg(f.CoachType) + `))`
	}

	query += ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var out []*Coach
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("list candidates: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanCoach.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanCoach reads one coach row, converting SQL NULLs to zero values or nil
// pointers as appropriate.
func scanCoach(s scanner) (*Coach, error) {
	var (
		c       Coach
		city    sql.NullString
		region  sql.NullString
		country sql.NullString
		types   pq.StringArray
		certs   pq.StringArray
	)

	err := s.Scan(
		&c.ID, &c.Name, &c.CreatedAt,
		&c.Bio, &c.ProfileImageURL, &c.CardImageURL, &types, &c.HourlyRate,
		&certs, &c.Verified,
		&city, &region, &country, &c.LegacyLocation,
		&c.OnlineAvailable, &c.InPersonAvailable,
		&c.ReviewCount, &c.AvgRating, &c.SessionCount, &c.LastSessionAt,
	)
	if err != nil {
		return nil, err
	}

	c.City = city.String
	c.Region = region.String
	c.Country = country.String
	if len(types) > 0 {
		c.CoachTypes = []string(types)
	}
	if len(certs) > 0 {
		c.Certifications = []string(certs)
	}
	return &c, nil
}

// nullIfEmpty maps empty strings to SQL NULL so partial locations stay
// distinguishable from empty ones.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// textArray converts a string slice to a driver value, writing an empty
// array rather than NULL when the field is unset.
func textArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}
