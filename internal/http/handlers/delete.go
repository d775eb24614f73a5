package handlers

import (
	"encoding/json"
	"net/http"

	"mediabox/internal/domain"
	"mediabox/internal/editor"
)

type deleteRequest struct {
	PublicID string `json:"publicId"`
}

// Delete removes an asset through an edit session, which also marks the
// directory stale so the gallery reconciles on its next read.
func (a *App) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.PublicID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "publicId required")
		return
	}

	s := editor.NewSession(a.Client, a.Directory, a.LibraryTag, domain.Asset{PublicID: req.PublicID})
	result, err := s.Delete(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Str("public_id", req.PublicID).Msg("delete failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "delete failed")
		return
	}

	a.data(w, http.StatusOK, result)
}
