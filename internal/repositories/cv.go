package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cv-formatter/internal/models"
	"cv-formatter/internal/services"
)

type CVRepository interface {
	Create(record *models.CVRecord) error
	FindByID(id uuid.UUID) (*models.CVRecord, error)
	FindAll() ([]models.CVRecord, error)
}

type cvRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) CVRepository {
	return &cvRepository{db: db}
}

// Create implements CVRepository.
func (r *cvRepository) Create(record *models.CVRecord) error {
	if err := r.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create cv record: %w", err)
	}

	return nil
}

// FindByID implements CVRepository.
func (r *cvRepository) FindByID(id uuid.UUID) (*models.CVRecord, error) {
	var record models.CVRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}

		return nil, fmt.Errorf("failed to find cv record: %w", err)
	}

	return &record, nil
}

// FindAll implements CVRepository. Records come back newest first.
func (r *cvRepository) FindAll() ([]models.CVRecord, error) {
	var records []models.CVRecord
	if err := r.db.Order("upload_date DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list cv records: %w", err)
	}

	return records, nil
}
