// Package models contains the database model definitions.
// These models map directly to the SQLite database tables.
package models

import (
	"time"
)

// Preset represents a named snapshot of the LED settings. Presets are applied
// only on explicit request, the live settings always start from defaults.
// Table: presets
type Preset struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;uniqueIndex" json:"name"`
	Enabled    bool      `gorm:"column:enabled" json:"enabled"`
	ZoneMode   string    `gorm:"column:zone_mode" json:"zoneMode"`
	Effect     string    `gorm:"column:effect" json:"effect"`
	Brightness int       `gorm:"column:brightness" json:"brightness"` // percent, 0-100
	WaveSpeed  int       `gorm:"column:wave_speed" json:"waveSpeed"`  // slider step, 1-50
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Preset) TableName() string { return "presets" }
