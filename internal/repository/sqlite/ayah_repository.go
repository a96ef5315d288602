package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type ayahRepository struct {
	db *sql.DB
}

// NewAyahRepository creates a new AyahRepository implementation.
func NewAyahRepository(db *sql.DB) repository.AyahRepository {
	return &ayahRepository{db: db}
}

const ayahColumns = `id, surah_number, ayah_number, juz_number, page_number, hizb_quarter, text_uthmani`

func scanAyah(scanner interface{ Scan(...any) error }) (models.Ayah, error) {
	var a models.Ayah
	err := scanner.Scan(&a.ID, &a.SurahNumber, &a.AyahNumber, &a.JuzNumber, &a.PageNumber, &a.HizbQuarter, &a.TextUthmani)
	return a, err
}

func (r *ayahRepository) Get(ctx context.Context, id int) (*models.Ayah, error) {
	log := logger.FromContext(ctx).WithPrefix("ayah_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+ayahColumns+` FROM ayahs WHERE id = ?`, id)
	a, err := scanAyah(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get ayah: %v", err)
		return nil, err
	}
	return &a, nil
}

func (r *ayahRepository) List(ctx context.Context) ([]models.Ayah, error) {
	log := logger.FromContext(ctx).WithPrefix("ayah_repo")
	rows, err := r.db.QueryContext(ctx, `SELECT `+ayahColumns+` FROM ayahs ORDER BY id`)
	if err != nil {
		log.Error("failed to list ayahs: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.Ayah
	for rows.Next() {
		a, err := scanAyah(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ayahRepository) ListByPage(ctx context.Context, pageNumber int) ([]models.Ayah, error) {
	log := logger.FromContext(ctx).WithPrefix("ayah_repo")
	rows, err := r.db.QueryContext(ctx, `SELECT `+ayahColumns+` FROM ayahs WHERE page_number = ? ORDER BY id`, pageNumber)
	if err != nil {
		log.Error("failed to list ayahs by page: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.Ayah
	for rows.Next() {
		a, err := scanAyah(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ayahRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ayahs`).Scan(&n)
	return n, err
}
