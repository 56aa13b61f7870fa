package handlers

import (
	"net/http"

	"viaqris/internal/domain"
)

type settingsResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Config  domain.Settings `json:"config"`
}

func (a *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.Settings.Load(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, cfg)
}

func (a *App) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if !a.decode(w, r, defaultMaxBody, &patch) {
		return
	}
	cfg, err := a.Settings.Save(r.Context(), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger().Info().Str("branding", cfg.BrandingName).Msg("settings updated")
	a.json(w, http.StatusOK, settingsResponse{
		Success: true,
		Message: a.printer(r).Sprintf(msgSettingsSaved),
		Config:  cfg,
	})
}
