package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"mediabox/internal/creations"
	"mediabox/internal/directory"
	"mediabox/internal/domain"
	"mediabox/internal/http/handlers"
	"mediabox/internal/infra"
	"mediabox/internal/providers/cloudinary"
)

// fakeProvider stands in for the remote media API: it serves the admin
// endpoints the client calls and answers 200 to everything else, which makes
// every render probe succeed immediately.
type fakeProvider struct {
	mu          sync.Mutex
	resources   []domain.Asset
	listPaths   []string
	uploadForms []url.Values
	deleteCalls int
}

func (f *fakeProvider) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/demo/resources/"):
			f.listPaths = append(f.listPaths, r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{"resources": f.resources})
		case r.Method == http.MethodPost && r.URL.Path == "/demo/image/upload":
			_ = r.ParseForm()
			f.uploadForms = append(f.uploadForms, r.PostForm)
			_ = json.NewEncoder(w).Encode(domain.Asset{PublicID: "uploaded-1", AssetID: "aid-up", Width: 800, Height: 600})
		case r.Method == http.MethodDelete && r.URL.Path == "/demo/resources/image/upload":
			f.deleteCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{
				"deleted": map[string]string{r.URL.Query().Get("public_ids[]"): "deleted"},
			})
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
}

func (f *fakeProvider) lastUploadForm(t *testing.T) url.Values {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.uploadForms) == 0 {
		t.Fatalf("no uploads recorded")
	}
	return f.uploadForms[len(f.uploadForms)-1]
}

func newTestHandler(t *testing.T, fake *fakeProvider) http.Handler {
	t.Helper()
	ts := httptest.NewServer(fake.handler())
	t.Cleanup(ts.Close)

	logger := infra.NewLogger("test")
	client := cloudinary.New(cloudinary.Options{
		CloudName:       "demo",
		APIKey:          "key",
		APISecret:       "secret",
		BaseURL:         ts.URL,
		DeliveryBaseURL: ts.URL,
	})
	dir := directory.New(client, "media-library", logger, nil)
	engine := creations.NewEngine(creations.Options{
		Provider:        client,
		Directory:       dir,
		Logger:          logger,
		LibraryTag:      "media-library",
		PollInterval:    time.Millisecond,
		PollMaxAttempts: 3,
	})
	app := handlers.NewApp(logger, client, dir, engine, "media-library")
	cfg := &infra.Config{RateLimitPerMin: 1000}
	return NewRouter(app, cfg, logger)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListResourcesThroughDirectory(t *testing.T) {
	fake := &fakeProvider{resources: []domain.Asset{{PublicID: "a"}, {PublicID: "b"}}}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodGet, "/api/resources", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data []domain.Asset `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(env.Data) != 2 || env.Data[0].PublicID != "a" {
		t.Fatalf("unexpected list: %+v", env.Data)
	}
	if len(fake.listPaths) != 1 || !strings.HasSuffix(fake.listPaths[0], "/tags/media-library") {
		t.Fatalf("expected a library-tag fetch, got %v", fake.listPaths)
	}

	// Second read is served from the directory cache.
	doJSON(t, h, http.MethodGet, "/api/resources", "")
	if len(fake.listPaths) != 1 {
		t.Fatalf("fresh cache must not refetch, got %v", fake.listPaths)
	}
}

func TestListResourcesForeignTagBypassesCache(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodGet, "/api/resources?tag=background-removed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(fake.listPaths) != 1 || !strings.HasSuffix(fake.listPaths[0], "/tags/background-removed") {
		t.Fatalf("expected a foreign-tag fetch, got %v", fake.listPaths)
	}
}

func TestGetResourceByAssetID(t *testing.T) {
	fake := &fakeProvider{resources: []domain.Asset{{
		PublicID: "photos/sunset",
		AssetID:  "aid-1",
		Width:    1920,
		Height:   1080,
		Format:   "jpg",
		Bytes:    2048,
		Tags:     []string{"media-library", "summer"},
	}}}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodGet, "/api/resources/aid-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data domain.Asset `json:"data"`
		Info struct {
			ID     string `json:"id"`
			Width  string `json:"width"`
			Size   string `json:"size"`
			Tags   string `json:"tags"`
			Format string `json:"format"`
		} `json:"info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Data.PublicID != "photos/sunset" {
		t.Fatalf("unexpected asset: %+v", env.Data)
	}
	if env.Info.Width != "1,920" {
		t.Fatalf("width must be formatted with separators, got %q", env.Info.Width)
	}
	if env.Info.Tags != "media-library, summer" {
		t.Fatalf("unexpected tags: %q", env.Info.Tags)
	}
}

func TestGetResourceNotFound(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := doJSON(t, h, http.MethodGet, "/api/resources/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUploadNewAssetJoinsLibrary(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/upload", `{"url":"https://example.com/photo.jpg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	form := fake.lastUploadForm(t)
	if form.Get("file") != "https://example.com/photo.jpg" {
		t.Fatalf("unexpected file param: %s", form.Get("file"))
	}
	if !strings.HasPrefix(form.Get("tags"), "media-library") {
		t.Fatalf("new uploads must carry the library tag, got %q", form.Get("tags"))
	}
	if form.Get("public_id") != "" {
		t.Fatalf("new uploads must not pin an id")
	}
}

func TestUploadOverwriteInvalidates(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/upload", `{"url":"https://example.com/edit.png","publicId":"photos/sunset"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	form := fake.lastUploadForm(t)
	if form.Get("public_id") != "photos/sunset" {
		t.Fatalf("overwrite must reuse the id, got %q", form.Get("public_id"))
	}
	if form.Get("invalidate") != "true" {
		t.Fatalf("overwrite must invalidate delivery caches")
	}
}

func TestDeleteResource(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodDelete, "/api/delete", `{"publicId":"photos/sunset"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.deleteCalls != 1 {
		t.Fatalf("expected 1 delete, got %d", fake.deleteCalls)
	}
	if !strings.Contains(rec.Body.String(), `"deleted"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignUploadParams(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := doJSON(t, h, http.MethodPost, "/api/sign", `{"paramsToSign":{"timestamp":"1700000000","source":"uw"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data cloudinary.SignedParams `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(env.Data.Signature) != 40 {
		t.Fatalf("expected a sha1 hex signature, got %q", env.Data.Signature)
	}
	if env.Data.APIKey != "key" || env.Data.CloudName != "demo" || env.Data.Timestamp != "1700000000" {
		t.Fatalf("unexpected signed params: %+v", env.Data)
	}
}

func TestCollageSaveRoundTrip(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/creations/collage", `{"publicIds":["a","b"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("collage failed: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(created.Data, "l_b") {
		t.Fatalf("unexpected collage url: %s", created.Data)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/creations", "")
	if !strings.Contains(rec.Body.String(), `"created"`) {
		t.Fatalf("slot should hold a created collage: %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/creations/save", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d %s", rec.Code, rec.Body.String())
	}
	form := fake.lastUploadForm(t)
	if form.Get("file") != created.Data {
		t.Fatalf("save must commit the creation render, got %s", form.Get("file"))
	}
	if form.Get("tags") != "media-library" {
		t.Fatalf("saved creation must join the library, got %q", form.Get("tags"))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/creations", "")
	if !strings.Contains(rec.Body.String(), `"idle"`) {
		t.Fatalf("slot must clear after save: %s", rec.Body.String())
	}
}

func TestColorPopRoundTrip(t *testing.T) {
	fake := &fakeProvider{}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/creations/color-pop", `{"publicId":"photos/subject"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("color-pop failed: %d %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, part := range []string{"e_grayscale", "fl_layer_apply", "l_uploaded-1"} {
		if !strings.Contains(env.Data, part) {
			t.Fatalf("composite url missing %q: %s", part, env.Data)
		}
	}

	// The background-removed cutout was committed with provenance tags.
	form := fake.lastUploadForm(t)
	if form.Get("tags") != "background-removed,original-photos/subject" {
		t.Fatalf("unexpected cutout tags: %q", form.Get("tags"))
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/creations", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel must return 204, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/creations", "")
	if !strings.Contains(rec.Body.String(), `"idle"`) {
		t.Fatalf("slot must clear after cancel: %s", rec.Body.String())
	}
}

func editableAsset() []domain.Asset {
	return []domain.Asset{{PublicID: "photos/sunset", AssetID: "aid-1", Width: 1000, Height: 800}}
}

func TestEditorPreview(t *testing.T) {
	fake := &fakeProvider{resources: editableAsset()}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/editor/preview", `{"assetId":"aid-1","enhancement":"improve"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(env.Data, "e_improve") {
		t.Fatalf("preview url missing enhancement: %s", env.Data)
	}
}

func TestEditorSaveInPlace(t *testing.T) {
	fake := &fakeProvider{resources: editableAsset()}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/editor/save", `{"assetId":"aid-1","filter":1}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	form := fake.lastUploadForm(t)
	if form.Get("public_id") != "photos/sunset" {
		t.Fatalf("save in place must reuse the public id, got %q", form.Get("public_id"))
	}
	if form.Get("invalidate") != "true" {
		t.Fatalf("save in place must invalidate delivery caches")
	}
	if !strings.Contains(form.Get("file"), "e_sepia") {
		t.Fatalf("committed render must carry the filter: %s", form.Get("file"))
	}
}

func TestEditorSaveCopy(t *testing.T) {
	fake := &fakeProvider{resources: editableAsset()}
	h := newTestHandler(t, fake)

	rec := doJSON(t, h, http.MethodPost, "/api/editor/save-copy", `{"assetId":"aid-1","crop":"square"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	form := fake.lastUploadForm(t)
	if form.Get("public_id") != "" {
		t.Fatalf("save as copy must never pin the source identity, got %q", form.Get("public_id"))
	}
	if form.Get("tags") != "media-library" {
		t.Fatalf("the copy must join the library, got %q", form.Get("tags"))
	}
	if !strings.Contains(form.Get("file"), "w_1000,h_1000") {
		t.Fatalf("committed render must carry the square crop: %s", form.Get("file"))
	}
	if !strings.Contains(rec.Body.String(), "uploaded-1") {
		t.Fatalf("copy asset must be returned: %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
