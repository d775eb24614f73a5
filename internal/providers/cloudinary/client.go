package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"mediabox/internal/domain"
)

// Options configures the provider client. BaseURL and HTTPClient exist so
// tests can point the client at an httptest server.
type Options struct {
	CloudName       string
	APIKey          string
	APISecret       string
	BaseURL         string
	DeliveryBaseURL string
	HTTPClient      *http.Client
	Timeout         time.Duration
}

// Client talks to the media provider's REST surface: asset listing, remote
// fetch-upload, deletion, and readiness probing of rendering URLs. The
// provider itself is an opaque remote capability; this client only forwards
// the contracts the workflow needs.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	deliveryBase string
	cloudName    string
	apiKey       string
	apiSecret    string
}

func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.cloudinary.com/v1_1"
	}
	delivery := strings.TrimRight(opts.DeliveryBaseURL, "/")
	if delivery == "" {
		delivery = "https://res.cloudinary.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient:   client,
		baseURL:      base,
		deliveryBase: delivery,
		cloudName:    strings.TrimSpace(opts.CloudName),
		apiKey:       strings.TrimSpace(opts.APIKey),
		apiSecret:    strings.TrimSpace(opts.APISecret),
	}
}

type listResponse struct {
	Resources []domain.Asset `json:"resources"`
	Error     *apiError      `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// ListAssets returns the provider's stored assets, scoped to a tag when one
// is given.
func (c *Client) ListAssets(ctx context.Context, tag string) ([]domain.Asset, error) {
	endpoint := c.baseURL + "/" + c.cloudName + "/resources/image"
	if tag != "" {
		endpoint += "/tags/" + url.PathEscape(tag)
	}
	endpoint += "?tags=true&max_results=100"

	var out listResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Resources, nil
}

// AssetByAssetID looks a single asset up by its secondary routing identifier.
func (c *Client) AssetByAssetID(ctx context.Context, assetID string) (*domain.Asset, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, errors.New("cloudinary: asset id required")
	}
	endpoint := c.baseURL + "/" + c.cloudName + "/resources/by_asset_ids?tags=true&asset_ids[]=" + url.QueryEscape(assetID)

	var out listResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.Resources) == 0 {
		return nil, domain.ErrNotFound
	}
	asset := out.Resources[0]
	return &asset, nil
}

// UploadParams describes a fetch-upload: the provider retrieves URL and
// stores the result as a new asset. A set PublicID means overwrite in place
// with delivery-cache invalidation; an empty one lets the provider assign a
// fresh identifier.
type UploadParams struct {
	URL        string
	PublicID   string
	Invalidate bool
	Tags       []string
}

// Upload commits the content behind params.URL as a stored asset.
func (c *Client) Upload(ctx context.Context, params UploadParams) (*domain.Asset, error) {
	if strings.TrimSpace(params.URL) == "" {
		return nil, errors.New("cloudinary: upload url required")
	}

	signable := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if params.PublicID != "" {
		signable["public_id"] = params.PublicID
	}
	if params.Invalidate {
		signable["invalidate"] = "true"
	}
	if len(params.Tags) > 0 {
		signable["tags"] = strings.Join(params.Tags, ",")
	}

	form := url.Values{}
	for k, v := range signable {
		form.Set(k, v)
	}
	form.Set("file", params.URL)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(signable))

	endpoint := c.baseURL + "/" + c.cloudName + "/image/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		domain.Asset
		Error *apiError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("cloudinary: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
		}
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("cloudinary: %s: %w", out.Error.Message, domain.ErrProviderFailure)
		}
		return nil, fmt.Errorf("cloudinary: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return &out.Asset, nil
}

// DeleteResult reports per-ID deletion outcomes as returned by the provider.
type DeleteResult struct {
	Deleted map[string]string `json:"deleted"`
	Partial bool              `json:"partial"`
}

// Delete removes the asset with the given public ID.
func (c *Client) Delete(ctx context.Context, publicID string) (*DeleteResult, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, errors.New("cloudinary: public id required")
	}
	endpoint := c.baseURL + "/" + c.cloudName + "/resources/image/upload?public_ids[]=" + url.QueryEscape(publicID)

	var out struct {
		DeleteResult
		Error *apiError `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, endpoint, &out); err != nil {
		return nil, err
	}
	return &out.DeleteResult, nil
}

// Probe fetches a rendering URL. It reports true when the provider has the
// render ready (2xx), false when the render is still pending, and an error
// only on transport failure.
func (c *Client) Probe(ctx context.Context, renderURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, renderURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// SignedParams carries everything the browser upload widget needs to perform
// a signed direct upload.
type SignedParams struct {
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
}

// SignUploadParams issues a parameter signature for a client-side upload.
// The timestamp parameter is filled in when the caller did not supply one.
func (c *Client) SignUploadParams(params map[string]string) SignedParams {
	signable := make(map[string]string, len(params)+1)
	for k, v := range params {
		signable[k] = v
	}
	if signable["timestamp"] == "" {
		signable["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	}
	return SignedParams{
		Signature: c.sign(signable),
		Timestamp: signable["timestamp"],
		APIKey:    c.apiKey,
		CloudName: c.cloudName,
	}
}

// sign computes the provider's parameter signature: parameters serialized in
// key order, secret appended, SHA-1 hex digest.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("cloudinary: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
		}
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("cloudinary: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	return nil
}
