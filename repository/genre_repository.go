package repository

import (
	"fmt"

	"masta/model"

	"gorm.io/gorm"
)

// GenreRepository defines the interface for genre data operations.
type GenreRepository interface {
	List() ([]*model.Genre, error)
}

type gormGenreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates a GenreRepository backed by GORM.
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &gormGenreRepository{db: db}
}

func (r *gormGenreRepository) List() ([]*model.Genre, error) {
	var genres []*model.Genre
	if err := r.db.Order("name").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}
