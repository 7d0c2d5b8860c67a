package data

import (
	"context"
	"errors"
	"time"

	"github.com/holoshare/holoshare-backend/internal/asset/biz"
	apperrors "github.com/holoshare/holoshare-backend/internal/pkg/errors"
	"github.com/holoshare/holoshare-backend/internal/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the metadata collection holding asset records
const CollectionName = "asset"

// assetDocument is the persisted shape of an asset record
type assetDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Filename    string             `bson:"filename"`
	ContentType string             `bson:"content_type"`
	SizeBytes   int64              `bson:"size_bytes"`
	URL         string             `bson:"url"`
	StoragePath string             `bson:"storage_path"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func toDocument(asset *biz.Asset) *assetDocument {
	return &assetDocument{
		Filename:    asset.Filename,
		ContentType: asset.ContentType,
		SizeBytes:   asset.SizeBytes,
		URL:         asset.URL,
		StoragePath: asset.StoragePath,
		CreatedAt:   asset.CreatedAt,
	}
}

func toDomain(doc *assetDocument) *biz.Asset {
	return &biz.Asset{
		ID:          biz.AssetID(doc.ID.Hex()),
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		URL:         doc.URL,
		StoragePath: doc.StoragePath,
		CreatedAt:   doc.CreatedAt,
	}
}

// MongoAssetRepo implements biz.AssetRepo on a mongo collection
type MongoAssetRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoAssetRepo(client *mongodb.Client, logger *zap.Logger) *MongoAssetRepo {
	return &MongoAssetRepo{
		coll:   client.Collection(CollectionName),
		logger: logger,
	}
}

// EnsureTTLIndex creates the expiry index on created_at so records are
// purged after the retention window. Expiry removes metadata only; the
// stored file is not reaped. Runs once at startup; the caller logs and
// continues on failure.
func (r *MongoAssetRepo) EnsureTTLIndex(ctx context.Context, retentionDays int) error {
	seconds := int32(retentionDays * 24 * 60 * 60)

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(seconds),
	})
	return err
}

// Insert stores a new asset record with a server-set creation timestamp
// and returns the generated identifier
func (r *MongoAssetRepo) Insert(ctx context.Context, asset *biz.Asset) (biz.AssetID, error) {
	doc := toDocument(asset)
	doc.CreatedAt = time.Now().UTC()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDatabaseQueryFailed)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.NewInternalError("unexpected inserted id type")
	}

	asset.CreatedAt = doc.CreatedAt
	return biz.AssetID(oid.Hex()), nil
}

// FindByID returns the asset record with the given identifier, or a
// not-found error when no record exists (never created, or expired)
func (r *MongoAssetRepo) FindByID(ctx context.Context, id biz.AssetID) (*biz.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, apperrors.NewInvalidIDError()
	}

	var doc assetDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewAssetNotFoundError()
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQueryFailed)
	}

	return toDomain(&doc), nil
}
