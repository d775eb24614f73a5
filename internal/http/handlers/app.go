package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediabox/internal/creations"
	"mediabox/internal/directory"
	"mediabox/internal/domain"
	"mediabox/internal/infra"
	"mediabox/internal/providers/cloudinary"
)

// App is the handler container: every route handler hangs off it and reaches
// the provider client, the resource directory, and the creation engine
// through explicit fields instead of package globals.
type App struct {
	Logger     infra.Logger
	Client     *cloudinary.Client
	Directory  *directory.Directory
	Engine     *creations.Engine
	LibraryTag string
}

func NewApp(logger infra.Logger, client *cloudinary.Client, dir *directory.Directory, engine *creations.Engine, libraryTag string) *App {
	return &App{
		Logger:     logger,
		Client:     client,
		Directory:  dir,
		Engine:     engine,
		LibraryTag: libraryTag,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// data wraps a payload in the {"data": ...} envelope every route uses.
func (a *App) data(w http.ResponseWriter, code int, v any) {
	a.json(w, code, map[string]any{"data": v})
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// workflowError maps domain sentinels onto the HTTP surface.
func (a *App) workflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSelectionTooSmall), errors.Is(err, domain.ErrSelectionTooLarge):
		a.error(w, http.StatusBadRequest, "bad_selection", err.Error())
	case errors.Is(err, domain.ErrCreationInFlight):
		a.error(w, http.StatusConflict, "creation_in_flight", err.Error())
	case errors.Is(err, domain.ErrNoCreation):
		a.error(w, http.StatusConflict, "no_creation", err.Error())
	case errors.Is(err, domain.ErrPollTimeout):
		a.error(w, http.StatusGatewayTimeout, "render_timeout", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.error(w, http.StatusBadGateway, "provider_failure", err.Error())
	}
}
