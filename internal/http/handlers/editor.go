package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediabox/internal/domain"
	"mediabox/internal/editor"
	"mediabox/internal/transform"
)

type editRequest struct {
	AssetID     string `json:"assetId"`
	Enhancement string `json:"enhancement"`
	Crop        string `json:"crop"`
	Filter      int    `json:"filter"`
}

// editSession resolves the asset behind an edit request and opens a session
// with the requested choices applied. Validation happens before the provider
// lookup so a malformed request never costs a network call.
func (a *App) editSession(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return nil, false
	}
	enhancement, ok := parseEnhancement(req.Enhancement)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown enhancement")
		return nil, false
	}
	crop, ok := parseCrop(req.Crop)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown crop")
		return nil, false
	}

	asset, err := a.Client.AssetByAssetID(r.Context(), req.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "resource not found")
			return nil, false
		}
		a.Logger.Error().Err(err).Str("asset_id", req.AssetID).Msg("resource lookup failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "failed to load resource")
		return nil, false
	}

	s := editor.NewSession(a.Client, a.Directory, a.LibraryTag, *asset)
	s.SetEnhancement(enhancement)
	s.SetCrop(crop)
	s.SetFilter(req.Filter)
	return s, true
}

// PreviewEdit returns the rendering URL for the requested edit choices.
func (a *App) PreviewEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := a.editSession(w, r)
	if !ok {
		return
	}
	a.data(w, http.StatusOK, s.PreviewURL())
}

// SaveEdit overwrites the asset in place with the rendered edit choices.
func (a *App) SaveEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := a.editSession(w, r)
	if !ok {
		return
	}
	if err := s.Save(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("edit save failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "save failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveEditCopy commits the rendered edit as a brand-new library asset.
func (a *App) SaveEditCopy(w http.ResponseWriter, r *http.Request) {
	s, ok := a.editSession(w, r)
	if !ok {
		return
	}
	asset, err := s.SaveAsCopy(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("edit save-copy failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "save failed")
		return
	}
	a.data(w, http.StatusOK, asset)
}

func parseEnhancement(s string) (transform.Enhancement, bool) {
	switch e := transform.Enhancement(s); e {
	case "", transform.EnhancementNone:
		return transform.EnhancementNone, true
	case transform.EnhancementImprove, transform.EnhancementRestore, transform.EnhancementRemoveBackground:
		return e, true
	}
	return "", false
}

func parseCrop(s string) (transform.Crop, bool) {
	switch c := transform.Crop(s); c {
	case "", transform.CropOriginal:
		return transform.CropOriginal, true
	case transform.CropSquare, transform.CropLandscape, transform.CropPortrait:
		return c, true
	}
	return "", false
}
