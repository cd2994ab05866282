package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/KarimImran/quadcast2-go/internal/database/models"
)

// PresetRepository handles preset data access.
type PresetRepository struct {
	db *gorm.DB
}

// NewPresetRepository creates a new PresetRepository.
func NewPresetRepository(db *gorm.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// FindAll returns all presets ordered by name.
func (r *PresetRepository) FindAll(ctx context.Context) ([]models.Preset, error) {
	var presets []models.Preset
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&presets)
	return presets, result.Error
}

// FindByID returns a preset by ID, or nil when no such preset exists.
func (r *PresetRepository) FindByID(ctx context.Context, id string) (*models.Preset, error) {
	var preset models.Preset
	result := r.db.WithContext(ctx).First(&preset, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &preset, nil
}

// FindByName returns a preset by name, or nil when no such preset exists.
func (r *PresetRepository) FindByName(ctx context.Context, name string) (*models.Preset, error) {
	var preset models.Preset
	result := r.db.WithContext(ctx).First(&preset, "name = ?", name)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &preset, nil
}

// Create stores a preset, assigning a cuid when the ID is empty.
func (r *PresetRepository) Create(ctx context.Context, preset *models.Preset) error {
	if preset.ID == "" {
		preset.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(preset).Error
}

// Delete removes a preset by ID.
func (r *PresetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Preset{}, "id = ?", id).Error
}
