package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/youruser/staffbadge/internal/badge"
	imagepkg "github.com/youruser/staffbadge/internal/image"
	"github.com/youruser/staffbadge/internal/mailer"
	"github.com/youruser/staffbadge/internal/service"
	"github.com/youruser/staffbadge/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Test Helper Functions
// ==========================

type fakeSender struct {
	err   error
	calls int
}

func (f *fakeSender) SendBadge(ctx context.Context, to, filename string, data []byte) error {
	f.calls++
	return f.err
}

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(ctx context.Context, req badge.Request) (*service.Result, error) {
	return nil, f.err
}

type testServer struct {
	router    *gin.Engine
	outputDir string
	sender    *fakeSender
}

type serverOptions struct {
	maxUpload int64
	burst     int
	sendErr   error
	issuer    BadgeIssuer
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	if opts.maxUpload == 0 {
		opts.maxUpload = 1 << 20
	}
	if opts.burst == 0 {
		opts.burst = 100
	}

	log := zaptest.NewLogger(t)
	dir := filepath.Join(t.TempDir(), "output")
	store, err := storage.NewLocalStore(dir, log)
	require.NoError(t, err)

	composer := imagepkg.NewComposer(&imagepkg.VisualAssets{
		Background: solidPNG(t, color.NRGBA{B: 255, A: 255}),
		Logo:       solidPNG(t, color.NRGBA{G: 255, A: 255}),
	})
	sender := &fakeSender{err: opts.sendErr}

	issuer := opts.issuer
	if issuer == nil {
		issuer = service.NewBadgeService(composer, store, sender, time.Second, log)
	}

	h := NewHandler(issuer, "FRONTIER REGIONAL HOSPITAL", opts.maxUpload, log)
	limiter := NewIPRateLimiter(60, opts.burst, log)

	return &testServer{
		router:    NewRouter(h, limiter, dir, log),
		outputDir: dir,
		sender:    sender,
	}
}

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(8, 8, c)))
	return buf.Bytes()
}

func validFields() map[string]string {
	return map[string]string{
		"name":       "Jane Doe",
		"position":   "Nurse",
		"department": "ER",
		"email":      "jane@example.com",
		"photo_size": "2",
	}
}

func (s *testServer) post(t *testing.T, fields map[string]string, photo []byte, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		fw, err := w.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// ==========================
// Core Functionality Tests
// ==========================

func TestBadgeForm(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FRONTIER REGIONAL HOSPITAL")
	assert.Contains(t, rec.Body.String(), `name="photo_size"`)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.get("/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeJSON(t, rec)["status"])
}

func TestSubmitBadge_JSON(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.post(t, validFields(), solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeJSON(t, rec)
	assert.Equal(t, "JANE_DOE.png", out["filename"])
	assert.Equal(t, "/output/JANE_DOE.png", out["url"])
	assert.Equal(t, true, out["email_sent"])
	assert.Equal(t, 1, s.sender.calls)

	img := s.get("/output/JANE_DOE.png")
	require.Equal(t, http.StatusOK, img.Code)
	decoded, err := png.Decode(img.Body)
	require.NoError(t, err)
	assert.Equal(t, 1000, decoded.Bounds().Dx())
	assert.Equal(t, 600, decoded.Bounds().Dy())
}

func TestSubmitBadge_HTML(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.post(t, validFields(), solidPNG(t, color.NRGBA{R: 255, A: 255}), "text/html")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "JANE DOE")
	assert.Contains(t, rec.Body.String(), "/output/JANE_DOE.png")
}

func TestSubmitBadge_EmailFailureStillSucceeds(t *testing.T) {
	for _, sendErr := range []error{mailer.ErrDisabled, errors.New("smtp send: dial tcp: i/o timeout")} {
		s := newTestServer(t, serverOptions{sendErr: sendErr})

		rec := s.post(t, validFields(), solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeJSON(t, rec)["email_sent"])
		assert.Equal(t, []string{"JANE_DOE.png"}, outputFiles(t, s.outputDir))
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestSubmitBadge_MalformedPhoto(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.post(t, validFields(), []byte("GIF89a but not really"), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["error"], "photo")
	assert.Empty(t, outputFiles(t, s.outputDir))
	assert.Zero(t, s.sender.calls)
}

func TestSubmitBadge_BadRequests(t *testing.T) {
	photo := []byte("placeholder")
	tests := []struct {
		name   string
		mutate func(f map[string]string) []byte
		status int
	}{
		{
			name:   "missing name",
			mutate: func(f map[string]string) []byte { delete(f, "name"); return photo },
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid email",
			mutate: func(f map[string]string) []byte { f["email"] = "jane-at-example"; return photo },
			status: http.StatusBadRequest,
		},
		{
			name:   "overlong department",
			mutate: func(f map[string]string) []byte { f["department"] = string(bytes.Repeat([]byte("X"), 81)); return photo },
			status: http.StatusBadRequest,
		},
		{
			name:   "missing photo",
			mutate: func(f map[string]string) []byte { return nil },
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{})
			fields := validFields()
			p := tt.mutate(fields)

			rec := s.post(t, fields, p, "application/json")

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeJSON(t, rec)["error"])
			assert.Empty(t, outputFiles(t, s.outputDir))
		})
	}
}

func TestSubmitBadge_InvalidCustomSize(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	fields := validFields()
	fields["photo_size"] = "4"
	fields["custom_width"] = "0"
	fields["custom_height"] = "300"

	rec := s.post(t, fields, solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, outputFiles(t, s.outputDir))
}

func TestSubmitBadge_NonNumericCustomSizeFallsBack(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	fields := validFields()
	fields["photo_size"] = "4"
	fields["custom_width"] = "wide"

	rec := s.post(t, fields, solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitBadge_PhotoTooLarge(t *testing.T) {
	s := newTestServer(t, serverOptions{maxUpload: 16})

	rec := s.post(t, validFields(), solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSubmitBadge_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, serverOptions{maxUpload: 16})

	rec := s.post(t, validFields(), bytes.Repeat([]byte("x"), 2<<20), "application/json")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "upload is too large", decodeJSON(t, rec)["error"])
	assert.Empty(t, outputFiles(t, s.outputDir))
	assert.Zero(t, s.sender.calls)
}

func TestSubmitBadge_UnsafeName(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	fields := validFields()
	fields["name"] = "../jane"

	rec := s.post(t, fields, solidPNG(t, color.NRGBA{R: 255, A: 255}), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitBadge_InternalError(t *testing.T) {
	s := newTestServer(t, serverOptions{issuer: failingIssuer{err: &imagepkg.DecodeError{Asset: imagepkg.AssetBackground, Err: errors.New("bad jpeg")}}})

	rec := s.post(t, validFields(), []byte("x"), "application/json")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to generate badge", decodeJSON(t, rec)["error"])
}

func TestSubmitBadge_RateLimited(t *testing.T) {
	s := newTestServer(t, serverOptions{burst: 1})
	photo := solidPNG(t, color.NRGBA{R: 255, A: 255})

	first := s.post(t, validFields(), photo, "application/json")
	second := s.post(t, validFields(), photo, "application/json")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
