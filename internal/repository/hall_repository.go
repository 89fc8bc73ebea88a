package repository // repository holds data access logic for halls and their seating schemes

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions

	"github.com/iliyamo/hall-scheme-editor/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// HallRepo provides methods to create, read and update halls.  It expects
// the following table.  scheme_data is text rather than JSON so MySQL hands
// the payload back exactly as it was submitted:
//
//	CREATE TABLE halls (
//	  id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
//	  cinema_id   BIGINT UNSIGNED NOT NULL,
//	  name        VARCHAR(20) NOT NULL,
//	  description TEXT NULL,
//	  scheme_data LONGTEXT NULL,
//	  created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	  updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	  UNIQUE KEY uq_halls_cinema_name (cinema_id, name)
//	);
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = `id, cinema_id, name, description, scheme_data, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHall(s rowScanner) (*model.Hall, error) {
	var (
		h    model.Hall
		desc sql.NullString
		data []byte
	)
	if err := s.Scan(&h.ID, &h.CinemaID, &h.Name, &desc, &data, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Description = desc.String
	if len(data) > 0 {
		h.SchemeData = data
	}
	return &h, nil
}

// Create inserts a new hall.  After insert the hall is read back so the
// timestamps set by the database are populated.  A duplicate (cinema, name)
// pair yields ErrConflict.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const q = `INSERT INTO halls (cinema_id, name, description, scheme_data) VALUES (?, ?, ?, ?)`
	var desc sql.NullString
	if h.Description != "" {
		desc = sql.NullString{String: h.Description, Valid: true}
	}
	var data any
	if h.HasScheme() {
		data = []byte(h.SchemeData)
	}
	res, err := r.db.ExecContext(ctx, q, h.CinemaID, h.Name, desc, data)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*h = *stored
	return nil
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	q := `SELECT ` + hallColumns + ` FROM halls WHERE id = ?`
	h, err := scanHall(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return h, nil
}

// ListByCinema returns all halls of a cinema ordered by id.
func (r *HallRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]*model.Hall, error) {
	q := `SELECT ` + hallColumns + ` FROM halls WHERE cinema_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Hall
	for rows.Next() {
		h, err := scanHall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateScheme replaces the stored seating scheme of a hall with the
// serialised payload.  Returns ErrHallNotFound when the hall does not exist.
func (r *HallRepo) UpdateScheme(ctx context.Context, id uint64, payload []byte) error {
	const q = `UPDATE halls SET scheme_data = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, payload, id)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when the value is unchanged, so a
	// missing hall is confirmed with a lookup.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a hall.  Returns ErrHallNotFound when nothing was deleted.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM halls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}
