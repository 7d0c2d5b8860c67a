package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/holoshare/holoshare-backend/internal/asset/biz"
	"github.com/holoshare/holoshare-backend/internal/pkg/blob"
	apperrors "github.com/holoshare/holoshare-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	seq  int
	byID map[biz.AssetID]*biz.Asset
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[biz.AssetID]*biz.Asset)}
}

func (r *memRepo) Insert(_ context.Context, asset *biz.Asset) (biz.AssetID, error) {
	r.seq++
	id := biz.AssetID(fmt.Sprintf("%024x", r.seq))
	copied := *asset
	copied.ID = id
	r.byID[id] = &copied
	return id, nil
}

func (r *memRepo) FindByID(_ context.Context, id biz.AssetID) (*biz.Asset, error) {
	if asset, ok := r.byID[id]; ok {
		return asset, nil
	}
	return nil, apperrors.NewAssetNotFoundError()
}

type memBlobStore struct {
	seq    int
	stored map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{stored: make(map[string][]byte)}
}

func (s *memBlobStore) Store(_ context.Context, filename string, data []byte) (*blob.StoredBlob, error) {
	s.seq++
	name := fmt.Sprintf("20240315103045%06d_%s", s.seq, filename)
	s.stored[name] = data
	return &blob.StoredBlob{
		Name:        name,
		StoragePath: "/srv/uploads/" + name,
		PublicURL:   "/files/" + name,
		Size:        int64(len(data)),
	}, nil
}

func (s *memBlobStore) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	data, ok := s.stored[name]
	if !ok {
		return nil, 0, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func newTestRouter(repo biz.AssetRepo, blobs blob.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	uc := biz.NewAssetUseCase(repo, blobs, 0, zap.NewNop())
	svc := NewAssetService(uc, nil, zap.NewNop())

	router := gin.New()
	svc.RegisterRoutes(router)
	return router
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "HoloShare backend running", got["message"])
}

func TestUploadAndRetrieve(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	content := []byte("0123456789")
	rec := doUpload(t, router, "model.glb", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var up UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}$`), up.ID)
	assert.Regexp(t, regexp.MustCompile(`^/files/\d+_model\.glb$`), up.URL)

	// The url serves the exact submitted bytes
	req := httptest.NewRequest(http.MethodGet, up.URL, nil)
	fileRec := httptest.NewRecorder()
	router.ServeHTTP(fileRec, req)

	require.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, content, fileRec.Body.Bytes())
	assert.Equal(t, "model/gltf-binary", fileRec.Header().Get("Content-Type"))

	// The id resolves to the same url
	req = httptest.NewRequest(http.MethodGet, "/asset/"+up.ID, nil)
	assetRec := httptest.NewRecorder()
	router.ServeHTTP(assetRec, req)

	require.Equal(t, http.StatusOK, assetRec.Code)
	var lookup UploadResponse
	require.NoError(t, json.Unmarshal(assetRec.Body.Bytes(), &lookup))
	assert.Equal(t, up.ID, lookup.ID)
	assert.Equal(t, up.URL, lookup.URL)
}

func TestUploadExtensionValidation(t *testing.T) {
	tests := []struct {
		filename string
		want     int
	}{
		{"model.glb", http.StatusOK},
		{"model.GLB", http.StatusOK},
		{"scene.gltf", http.StatusOK},
		{"scene.GlTf", http.StatusOK},
		{"object.usdz", http.StatusOK},
		{"model.obj", http.StatusBadRequest},
		{"model.fbx", http.StatusBadRequest},
		{"model.glb.exe", http.StatusBadRequest},
		{"model", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			repo := newMemRepo()
			blobs := newMemBlobStore()
			router := newTestRouter(repo, blobs)

			rec := doUpload(t, router, tt.filename, []byte("x"))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.want == http.StatusBadRequest {
				// A rejected upload leaves no file and no record
				assert.Empty(t, blobs.stored)
				assert.Empty(t, repo.byID)

				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body["detail"], ".glb")
			}
		})
	}
}

func TestUploadMissingFileField(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConcurrentSameNameUploads(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	first := doUpload(t, router, "model.glb", []byte("first"))
	second := doUpload(t, router, "model.glb", []byte("second"))
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b UploadResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestServeFileNotFound(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	req := httptest.NewRequest(http.MethodGet, "/files/20240101000000000000_missing.glb", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "File not found", body["detail"])
}

func TestGetAssetErrors(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	// Malformed id
	req := httptest.NewRequest(http.MethodGet, "/asset/not-a-valid-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Well-formed but unknown id
	req = httptest.NewRequest(http.MethodGet, "/asset/ffffffffffffffffffffffff", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadWithoutMetadataStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := biz.NewAssetUseCase(nil, newMemBlobStore(), 0, zap.NewNop())
	svc := NewAssetService(uc, nil, zap.NewNop())
	router := gin.New()
	svc.RegisterRoutes(router)

	rec := doUpload(t, router, "model.glb", []byte("x"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDiagnosticsWithoutDatabase(t *testing.T) {
	router := newTestRouter(newMemRepo(), newMemBlobStore())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got DiagnosticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "running", got.Backend)
	assert.Equal(t, "not available", got.Database)
	assert.Equal(t, "not connected", got.ConnectionStatus)
	assert.NotNil(t, got.Collections)
}

func TestContentTypeForName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.glb", "model/gltf-binary"},
		{"a.GLB", "model/gltf-binary"},
		{"a.gltf", "model/gltf+json"},
		{"a.usdz", "model/vnd.usdz+zip"},
		{"a.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, contentTypeForName(tt.name), "name %s", tt.name)
	}
}
