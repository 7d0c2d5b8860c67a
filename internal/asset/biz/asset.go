package biz

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/holoshare/holoshare-backend/internal/pkg/blob"
	apperrors "github.com/holoshare/holoshare-backend/internal/pkg/errors"
	"go.uber.org/zap"
)

// AssetID is the opaque identifier of an asset record: 24 hex
// characters, generated by the metadata store at insert time
type AssetID string

// ParseAssetID validates the identifier format. A malformed id yields
// ErrAssetInvalidID, distinct from a well-formed id that matches no
// record.
func ParseAssetID(s string) (AssetID, error) {
	if len(s) != 24 {
		return "", apperrors.NewInvalidIDError()
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", apperrors.NewInvalidIDError()
	}
	return AssetID(s), nil
}

func (id AssetID) String() string {
	return string(id)
}

// Asset pairs an uploaded file's storage location with its metadata.
// Only ID and URL are exposed through the API.
type Asset struct {
	ID          AssetID
	Filename    string
	ContentType string
	SizeBytes   int64
	URL         string
	StoragePath string
	CreatedAt   time.Time
}

// AssetRepo is the metadata store contract. Insert sets the creation
// timestamp server-side and returns the generated identifier. Records
// expire automatically after the configured retention window.
type AssetRepo interface {
	Insert(ctx context.Context, asset *Asset) (AssetID, error)
	FindByID(ctx context.Context, id AssetID) (*Asset, error)
}

// allowed upload extensions, lower-case
var allowedExtensions = map[string]bool{
	".glb":  true,
	".gltf": true,
	".usdz": true,
}

// AllowedExtension reports whether filename carries a supported 3D
// model extension, case-insensitively
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// AssetUseCase implements the upload and lookup rules. A nil repo means
// the metadata store is not configured; operations that need it fail
// with a database-unavailable error instead of panicking.
type AssetUseCase struct {
	repo           AssetRepo
	blobs          blob.Store
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewAssetUseCase(repo AssetRepo, blobs blob.Store, maxUploadBytes int64, logger *zap.Logger) *AssetUseCase {
	return &AssetUseCase{
		repo:           repo,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload validates the file, persists its bytes, then records metadata.
// The blob write strictly precedes the metadata insert: a failed write
// leaves no record, and a failed insert leaves the blob orphaned but
// returns an error to the caller.
func (uc *AssetUseCase) Upload(ctx context.Context, filename, contentType string, data []byte) (*Asset, error) {
	if !AllowedExtension(filename) {
		return nil, apperrors.New(apperrors.ErrAssetInvalidFileType)
	}

	if uc.maxUploadBytes > 0 && int64(len(data)) > uc.maxUploadBytes {
		return nil, apperrors.New(apperrors.ErrAssetFileTooLarge)
	}

	// Refuse early rather than writing a blob no record will point to
	if uc.repo == nil {
		return nil, apperrors.NewDatabaseUnavailableError()
	}

	stored, err := uc.blobs.Store(ctx, filename, data)
	if err != nil {
		uc.logger.Error("blob write failed",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, apperrors.NewStorageError(err)
	}

	asset := &Asset{
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   stored.Size,
		URL:         stored.PublicURL,
		StoragePath: stored.StoragePath,
	}

	id, err := uc.repo.Insert(ctx, asset)
	if err != nil {
		uc.logger.Error("metadata insert failed, blob orphaned",
			zap.String("storage_path", stored.StoragePath),
			zap.Error(err))
		return nil, err
	}
	asset.ID = id

	uc.logger.Info("asset uploaded",
		zap.String("id", id.String()),
		zap.String("filename", filename),
		zap.Int64("size_bytes", stored.Size))

	return asset, nil
}

// Get looks up an asset record by its identifier
func (uc *AssetUseCase) Get(ctx context.Context, rawID string) (*Asset, error) {
	id, err := ParseAssetID(rawID)
	if err != nil {
		return nil, err
	}

	if uc.repo == nil {
		return nil, apperrors.NewDatabaseUnavailableError()
	}

	return uc.repo.FindByID(ctx, id)
}

// OpenFile resolves a stored file by its generated name
func (uc *AssetUseCase) OpenFile(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	rc, size, err := uc.blobs.Open(ctx, name)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, 0, apperrors.NewFileNotFoundError()
		}
		return nil, 0, apperrors.Wrap(err, apperrors.ErrStorageReadFailed)
	}
	return rc, size, nil
}
