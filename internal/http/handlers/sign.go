package handlers

import (
	"encoding/json"
	"net/http"
)

type signRequest struct {
	ParamsToSign map[string]string `json:"paramsToSign"`
}

// SignUploadParams issues signed parameters for the browser upload widget so
// the API secret never leaves the server.
func (a *App) SignUploadParams(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ParamsToSign == nil {
		req.ParamsToSign = map[string]string{}
	}
	a.data(w, http.StatusOK, a.Client.SignUploadParams(req.ParamsToSign))
}
