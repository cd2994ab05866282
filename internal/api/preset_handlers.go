package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/KarimImran/quadcast2-go/internal/database/models"
	"github.com/KarimImran/quadcast2-go/internal/services/settings"
)

const bundleVersion = "1.0"

// PresetBundle is the portable export format for the preset library.
type PresetBundle struct {
	Version  string          `json:"version"`
	Metadata *BundleMetadata `json:"metadata,omitempty"`
	Presets  []BundlePreset  `json:"presets"`
}

// BundleMetadata contains export metadata.
type BundleMetadata struct {
	ExportedAt string `json:"exportedAt"`
}

// BundlePreset is a preset stripped of database identity so bundles can move
// between installations.
type BundlePreset struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	ZoneMode   string `json:"zoneMode"`
	Effect     string `json:"effect"`
	Brightness int    `json:"brightness"`
	WaveSpeed  int    `json:"waveSpeed"`
}

// ImportStats reports what an import actually did.
type ImportStats struct {
	PresetsCreated int      `json:"presetsCreated"`
	PresetsSkipped int      `json:"presetsSkipped"`
	Warnings       []string `json:"warnings,omitempty"`
}

type createPresetRequest struct {
	Name string `json:"name"`
}

// handleListPresets returns all presets ordered by name.
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.FindAll(r.Context())
	if err != nil {
		logger.With(zap.Error(err)).Error("preset list failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if presets == nil {
		presets = []models.Preset{}
	}
	respondJSON(w, http.StatusOK, presets)
}

// handleCreatePreset captures the current settings under a new name.
func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := s.presets.FindByName(r.Context(), name)
	if err != nil {
		logger.With(zap.Error(err)).Error("preset lookup failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "preset name already exists")
		return
	}

	view := s.store.View()
	preset := models.Preset{
		Name:       name,
		Enabled:    view.Enabled,
		ZoneMode:   string(view.ZoneMode),
		Effect:     string(view.Effect),
		Brightness: view.Brightness,
		WaveSpeed:  view.WaveSpeed,
	}
	if err := s.presets.Create(r.Context(), &preset); err != nil {
		logger.With(zap.Error(err)).Error("preset create failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	respondJSON(w, http.StatusCreated, preset)
}

// handleGetPreset returns one preset by ID.
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.presets.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logger.With(zap.Error(err)).Error("preset lookup failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if preset == nil {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

// handleApplyPreset writes a preset's fields through the settings store.
// Each field goes through the same validation and clamping as a live write.
func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.presets.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logger.With(zap.Error(err)).Error("preset lookup failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if preset == nil {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}

	s.store.SetEnabled(preset.Enabled)
	s.store.SetZoneMode(settings.ZoneMode(preset.ZoneMode))
	s.store.SetEffect(settings.Effect(preset.Effect))
	s.store.SetBrightness(preset.Brightness)
	s.store.SetWaveSpeed(preset.WaveSpeed)

	respondJSON(w, http.StatusOK, s.store.View())
}

// handleDeletePreset removes a preset.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	preset, err := s.presets.FindByID(r.Context(), id)
	if err != nil {
		logger.With(zap.Error(err)).Error("preset lookup failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if preset == nil {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}

	if err := s.presets.Delete(r.Context(), id); err != nil {
		logger.With(zap.Error(err)).Error("preset delete failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExportPresets returns the whole preset library as a portable bundle.
func (s *Server) handleExportPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.FindAll(r.Context())
	if err != nil {
		logger.With(zap.Error(err)).Error("preset export failed")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	bundle := PresetBundle{
		Version: bundleVersion,
		Metadata: &BundleMetadata{
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Presets: make([]BundlePreset, 0, len(presets)),
	}
	for _, p := range presets {
		bundle.Presets = append(bundle.Presets, BundlePreset{
			Name:       p.Name,
			Enabled:    p.Enabled,
			ZoneMode:   p.ZoneMode,
			Effect:     p.Effect,
			Brightness: p.Brightness,
			WaveSpeed:  p.WaveSpeed,
		})
	}

	respondJSON(w, http.StatusOK, bundle)
}

// handleImportPresets creates presets from a bundle. Entries that are invalid
// or collide with an existing name are skipped, and each skip is reported in
// the warnings.
func (s *Server) handleImportPresets(w http.ResponseWriter, r *http.Request) {
	var bundle PresetBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stats := ImportStats{}
	if bundle.Version != "" && bundle.Version != bundleVersion {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf("Unknown bundle version %q, importing anyway", bundle.Version))
	}

	for _, p := range bundle.Presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, "Skipped preset with empty name")
			continue
		}
		if _, err := settings.ParseZoneMode(p.ZoneMode); err != nil {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("Skipped preset %q: %v", name, err))
			continue
		}
		if _, err := settings.ParseEffect(p.Effect); err != nil {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("Skipped preset %q: %v", name, err))
			continue
		}
		if p.Brightness < 0 || p.Brightness > settings.MaxBrightnessPercent {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("Skipped preset %q: brightness %d out of range", name, p.Brightness))
			continue
		}
		if p.WaveSpeed < settings.MinWaveSpeedStep || p.WaveSpeed > settings.MaxWaveSpeedStep {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("Skipped preset %q: waveSpeed %d out of range", name, p.WaveSpeed))
			continue
		}

		existing, err := s.presets.FindByName(r.Context(), name)
		if err != nil {
			logger.With(zap.Error(err)).Error("preset import lookup failed")
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if existing != nil {
			stats.PresetsSkipped++
			stats.Warnings = append(stats.Warnings, "Skipped existing preset: "+name)
			continue
		}

		preset := models.Preset{
			Name:       name,
			Enabled:    p.Enabled,
			ZoneMode:   p.ZoneMode,
			Effect:     p.Effect,
			Brightness: p.Brightness,
			WaveSpeed:  p.WaveSpeed,
		}
		if err := s.presets.Create(r.Context(), &preset); err != nil {
			logger.With(zap.Error(err)).Error("preset import create failed")
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		stats.PresetsCreated++
	}

	respondJSON(w, http.StatusOK, stats)
}
