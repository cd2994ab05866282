package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/KarimImran/quadcast2-go/internal/services/settings"
)

// settingsPatch carries the optional fields of a PATCH /api/settings body.
// Pointers distinguish "absent" from zero values.
type settingsPatch struct {
	Enabled    *bool   `json:"enabled"`
	ZoneMode   *string `json:"zoneMode"`
	Effect     *string `json:"effect"`
	Brightness *int    `json:"brightness"`
	WaveSpeed  *int    `json:"waveSpeed"`
}

// handleGetSettings returns the current settings in both control-scale and
// device-native units.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.View())
}

// handlePatchSettings applies the fields present in the body. Each field is
// an independent write, so the valid fields of a partially invalid request
// still take effect; the response is then a 400 naming the rejected ones.
func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var errs []string

	if patch.Enabled != nil {
		s.store.SetEnabled(*patch.Enabled)
	}
	if patch.ZoneMode != nil {
		if mode, err := settings.ParseZoneMode(*patch.ZoneMode); err != nil {
			errs = append(errs, err.Error())
		} else {
			s.store.SetZoneMode(mode)
		}
	}
	if patch.Effect != nil {
		if effect, err := settings.ParseEffect(*patch.Effect); err != nil {
			errs = append(errs, err.Error())
		} else {
			s.store.SetEffect(effect)
		}
	}
	if patch.Brightness != nil {
		if *patch.Brightness < 0 || *patch.Brightness > settings.MaxBrightnessPercent {
			errs = append(errs, fmt.Sprintf("brightness %d out of range 0-%d", *patch.Brightness, settings.MaxBrightnessPercent))
		} else {
			s.store.SetBrightness(*patch.Brightness)
		}
	}
	if patch.WaveSpeed != nil {
		if *patch.WaveSpeed < settings.MinWaveSpeedStep || *patch.WaveSpeed > settings.MaxWaveSpeedStep {
			errs = append(errs, fmt.Sprintf("waveSpeed %d out of range %d-%d", *patch.WaveSpeed, settings.MinWaveSpeedStep, settings.MaxWaveSpeedStep))
		} else {
			s.store.SetWaveSpeed(*patch.WaveSpeed)
		}
	}

	if len(errs) > 0 {
		respondError(w, http.StatusBadRequest, strings.Join(errs, "; "))
		return
	}

	respondJSON(w, http.StatusOK, s.store.View())
}

// handleGetStatus returns the control loop status.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.controller.Status())
}
