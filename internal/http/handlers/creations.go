package handlers

import (
	"encoding/json"
	"net/http"

	"mediabox/internal/domain"
)

type colorPopRequest struct {
	PublicID string `json:"publicId"`
}

// CreateColorPop runs the asynchronous background-removal workflow for a
// single asset and returns the final composite URL once the provider-side
// render is ready.
func (a *App) CreateColorPop(w http.ResponseWriter, r *http.Request) {
	var req colorPopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	url, err := a.Engine.ColorPop(r.Context(), domain.NewSelection(req.PublicID))
	if err != nil {
		a.Logger.Error().Err(err).Str("public_id", req.PublicID).Msg("color-pop failed")
		a.workflowError(w, err)
		return
	}
	a.data(w, http.StatusOK, url)
}

type compositionRequest struct {
	PublicIDs []string `json:"publicIds"`
}

// CreateCollage composes a collage URL from two or more selected assets.
func (a *App) CreateCollage(w http.ResponseWriter, r *http.Request) {
	var req compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	url, err := a.Engine.Collage(domain.NewSelection(req.PublicIDs...))
	if err != nil {
		a.workflowError(w, err)
		return
	}
	a.data(w, http.StatusOK, url)
}

// CreateAnimation composes an animated-sequence URL from the selection.
func (a *App) CreateAnimation(w http.ResponseWriter, r *http.Request) {
	var req compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	url, err := a.Engine.Animation(domain.NewSelection(req.PublicIDs...))
	if err != nil {
		a.workflowError(w, err)
		return
	}
	a.data(w, http.StatusOK, url)
}

// SaveCreation confirms the in-flight creation: the render is materialized,
// committed as a new library asset, and the slot cleared.
func (a *App) SaveCreation(w http.ResponseWriter, r *http.Request) {
	asset, err := a.Engine.Save(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("creation save failed")
		a.workflowError(w, err)
		return
	}
	a.data(w, http.StatusOK, asset)
}

// GetCreation exposes the creation slot for the dialog to render spinners
// and previews from.
func (a *App) GetCreation(w http.ResponseWriter, r *http.Request) {
	creation := a.Engine.Snapshot()
	if creation == nil {
		creation = &domain.Creation{State: domain.CreationIdle}
	}
	a.data(w, http.StatusOK, creation)
}

// CancelCreation clears the slot; closing the dialog abandons the creation.
func (a *App) CancelCreation(w http.ResponseWriter, r *http.Request) {
	a.Engine.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
