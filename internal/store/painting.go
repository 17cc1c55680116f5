package store

import (
	"database/sql"
	"errors"
	"time"
)

// Painting is a saved painting file.
type Painting struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	TextCount int       `json:"text_count"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// PaintingRepository provides CRUD operations for paintings.
type PaintingRepository struct {
	db *sql.DB
}

// Paintings returns the painting repository for this store.
func (s *Store) Paintings() *PaintingRepository {
	return &PaintingRepository{db: s.db}
}

// Create inserts a painting. CreatedAt is set when zero.
func (r *PaintingRepository) Create(p *Painting) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO paintings (id, path, format, width, height, text_count, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Path, p.Format, p.Width, p.Height, p.TextCount, p.SizeBytes, p.CreatedAt,
	)
	return err
}

// GetByID retrieves a painting by its ID.
func (r *PaintingRepository) GetByID(id string) (*Painting, error) {
	p := &Painting{}
	err := r.db.QueryRow(
		`SELECT id, path, format, width, height, text_count, size_bytes, created_at
		 FROM paintings WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Path, &p.Format, &p.Width, &p.Height, &p.TextCount, &p.SizeBytes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns paintings newest first. A limit <= 0 returns all of them.
func (r *PaintingRepository) List(limit int) ([]*Painting, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, path, format, width, height, text_count, size_bytes, created_at
		 FROM paintings ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paintings []*Painting
	for rows.Next() {
		p := &Painting{}
		if err := rows.Scan(&p.ID, &p.Path, &p.Format, &p.Width, &p.Height, &p.TextCount, &p.SizeBytes, &p.CreatedAt); err != nil {
			return nil, err
		}
		paintings = append(paintings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return paintings, nil
}

// Count returns the number of saved paintings.
func (r *PaintingRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM paintings`).Scan(&n)
	return n, err
}

// Delete removes a painting record by its ID. The file itself is left alone.
func (r *PaintingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM paintings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
