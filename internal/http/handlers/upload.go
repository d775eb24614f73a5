package handlers

import (
	"encoding/json"
	"net/http"

	"mediabox/internal/domain"
	"mediabox/internal/providers/cloudinary"
)

type uploadRequest struct {
	URL      string   `json:"url"`
	PublicID string   `json:"publicId"`
	Tags     []string `json:"tags"`
}

// Upload commits the content behind a URL as a stored asset. A publicId in
// the request means overwrite in place with delivery-cache invalidation;
// otherwise the provider assigns a new ID and the asset joins the library
// under the fixed tag.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.URL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url required")
		return
	}

	params := cloudinary.UploadParams{URL: req.URL}
	if req.PublicID != "" {
		params.PublicID = req.PublicID
		params.Invalidate = true
	} else {
		params.Tags = append([]string{a.LibraryTag}, req.Tags...)
	}

	asset, err := a.Client.Upload(r.Context(), params)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upload failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "upload failed")
		return
	}

	if req.PublicID != "" {
		a.Directory.Invalidate()
	} else {
		a.Directory.Add([]domain.Asset{*asset})
	}
	a.data(w, http.StatusOK, asset)
}
