package service

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/holoshare/holoshare-backend/internal/asset/biz"
	"github.com/holoshare/holoshare-backend/internal/pkg/mongodb"
	"github.com/holoshare/holoshare-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AssetService exposes the HTTP surface of the upload service
type AssetService struct {
	uc     *biz.AssetUseCase
	db     *mongodb.Client // nil when the metadata store is not configured
	logger *zap.Logger
}

func NewAssetService(uc *biz.AssetUseCase, db *mongodb.Client, logger *zap.Logger) *AssetService {
	return &AssetService{
		uc:     uc,
		db:     db,
		logger: logger,
	}
}

// RegisterRoutes wires the endpoints onto the router
func (s *AssetService) RegisterRoutes(r gin.IRouter) {
	r.GET("/", s.Root)
	r.POST("/upload", s.Upload)
	r.GET("/files/:name", s.ServeFile)
	r.GET("/asset/:id", s.GetAsset)
	r.GET("/test", s.Diagnostics)
}

// UploadResponse is the public shape of an upload result
type UploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Root reports liveness
func (s *AssetService) Root(c *gin.Context) {
	response.OK(c, gin.H{"message": "HoloShare backend running"})
}

// Upload accepts one multipart file, stores its bytes and records
// metadata
func (s *AssetService) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "invalid file or field name is not 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("failed to read upload body", zap.Error(err))
		response.InternalError(c, "failed to read file")
		return
	}

	asset, err := s.uc.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, UploadResponse{
		ID:  asset.ID.String(),
		URL: asset.URL,
	})
}

// ServeFile streams a stored file back, byte for byte
func (s *AssetService) ServeFile(c *gin.Context) {
	name := c.Param("name")

	rc, size, err := s.uc.OpenFile(c.Request.Context(), name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, contentTypeForName(name), rc, nil)
}

// GetAsset looks up asset metadata by id
func (s *AssetService) GetAsset(c *gin.Context) {
	asset, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, UploadResponse{
		ID:  asset.ID.String(),
		URL: asset.URL,
	})
}

// DiagnosticsResponse reports service and dependency health. Fields
// degrade individually; the endpoint itself always answers 200.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics probes the metadata store without ever failing the
// request
func (s *AssetService) Diagnostics(c *gin.Context) {
	resp := DiagnosticsResponse{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      envStatus("DATABASE_URL"),
		DatabaseName:     envStatus("DATABASE_NAME"),
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}

	if s.db != nil {
		ctx := c.Request.Context()

		if err := s.db.Ping(ctx); err != nil {
			resp.Database = "error: " + truncate(err.Error(), 50)
		} else {
			resp.Database = "connected"
			resp.ConnectionStatus = "connected"

			names, err := s.db.ListCollectionNames(ctx, 10)
			if err != nil {
				resp.Database = "connected but error: " + truncate(err.Error(), 50)
			} else {
				resp.Collections = names
			}
		}
	}

	response.OK(c, resp)
}

func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// contentTypeForName infers the response content type from the file
// extension so model viewers get the right type
func contentTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb":
		return "model/gltf-binary"
	case ".gltf":
		return "model/gltf+json"
	case ".usdz":
		return "model/vnd.usdz+zip"
	default:
		return "application/octet-stream"
	}
}
