package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediabox/internal/domain"
	"mediabox/pkg/format"
)

// ListResources serves the gallery list. Reads scoped to the library tag go
// through the directory cache; an explicit foreign tag bypasses it.
func (a *App) ListResources(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")

	var (
		assets []domain.Asset
		err    error
	)
	if tag == "" || tag == a.LibraryTag {
		assets, err = a.Directory.List(r.Context())
	} else {
		assets, err = a.Client.ListAssets(r.Context(), tag)
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("list resources failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "failed to list resources")
		return
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	a.data(w, http.StatusOK, assets)
}

type resourceInfo struct {
	ID          string `json:"id"`
	DateCreated string `json:"date_created"`
	Width       string `json:"width"`
	Height      string `json:"height"`
	Format      string `json:"format"`
	Size        string `json:"size"`
	Tags        string `json:"tags"`
}

// GetResource serves the viewer page's asset lookup by routing identifier,
// with a formatted info block for the metadata panel.
func (a *App) GetResource(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")
	asset, err := a.Client.AssetByAssetID(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		a.Logger.Error().Err(err).Str("asset_id", assetID).Msg("resource lookup failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "failed to load resource")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"data": asset,
		"info": resourceInfo{
			ID:          asset.PublicID,
			DateCreated: asset.CreatedAt.Local().Format("1/2/2006, 3:04:05 PM"),
			Width:       format.AddCommas(asset.Width),
			Height:      format.AddCommas(asset.Height),
			Format:      asset.Format,
			Size:        format.Bytes(asset.Bytes),
			Tags:        joinTags(asset.Tags),
		},
	})
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}
