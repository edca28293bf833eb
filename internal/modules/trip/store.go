// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wayfare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, user_id, title, destination, start_date,
			duration_days, travelers, plan, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(t.ID),
		string(t.UserID),
		t.Title,
		t.Destination,
		t.StartDate,
		t.DurationDays,
		t.Travelers,
		t.Plan,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, destination, start_date,
		       duration_days, travelers, plan, created_at, updated_at
		FROM trips
		WHERE id = $1`, string(id),
	)
	var t Trip
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Destination, &t.StartDate,
		&t.DurationDays, &t.Travelers, &t.Plan, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]*Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, destination, start_date,
		       duration_days, travelers, plan, created_at, updated_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Destination, &t.StartDate,
			&t.DurationDays, &t.Travelers, &t.Plan, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}
	return trips, rows.Err()
}

func (s *Store) Update(ctx context.Context, t *Trip) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET title = $1,
		    destination = $2,
		    start_date = $3,
		    duration_days = $4,
		    travelers = $5,
		    plan = $6,
		    updated_at = $7
		WHERE id = $8`,
		t.Title,
		t.Destination,
		t.StartDate,
		t.DurationDays,
		t.Travelers,
		t.Plan,
		t.UpdatedAt,
		string(t.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
