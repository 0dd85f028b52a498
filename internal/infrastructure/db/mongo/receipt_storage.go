package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/billed/billed-app/internal/core/domain"
	"github.com/billed/billed-app/internal/core/ports"
)

const receiptsBucket = "receipts"

// ReceiptStorage stores receipt files in a GridFS bucket, keyed by a random
// file name that keeps the original extension.
type ReceiptStorage struct {
	db *mongo.Database
}

func NewReceiptStorage(db *mongo.Database) *ReceiptStorage {
	return &ReceiptStorage{db: db}
}

var _ ports.ReceiptStorage = (*ReceiptStorage)(nil)

// bucket opens a bucket per call: GridFS deadlines are bucket state, so a
// shared bucket would leak one request's deadline into another.
func (s *ReceiptStorage) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(s.db, options.GridFSBucket().SetName(receiptsBucket))
}

func (s *ReceiptStorage) Save(ctx context.Context, file domain.ReceiptFile) (string, error) {
	b, err := s.bucket()
	if err != nil {
		return "", fmt.Errorf("open receipts bucket: %w", err)
	}
	if err := b.SetWriteDeadline(deadline(ctx)); err != nil {
		return "", fmt.Errorf("receipts write deadline: %w", err)
	}

	key := uuid.NewString() + "." + domain.ReceiptExtension(file.Name)
	meta := bson.D{
		{Key: "original_name", Value: domain.BaseFileName(file.Name)},
		{Key: "content_type", Value: domain.ReceiptContentType(file.Name)},
	}

	if _, err := b.UploadFromStream(key, file.Content, options.GridFSUpload().SetMetadata(meta)); err != nil {
		return "", fmt.Errorf("upload receipt: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return key, nil
}

func (s *ReceiptStorage) Open(ctx context.Context, key string) (io.ReadCloser, *domain.ReceiptInfo, error) {
	b, err := s.bucket()
	if err != nil {
		return nil, nil, fmt.Errorf("open receipts bucket: %w", err)
	}
	if err := b.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, nil, fmt.Errorf("receipts read deadline: %w", err)
	}

	stream, err := b.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, domain.ErrReceiptNotFound
		}
		return nil, nil, fmt.Errorf("download receipt: %w: %w", domain.ErrStoreUnavailable, err)
	}

	f := stream.GetFile()
	info := &domain.ReceiptInfo{
		Key:         key,
		Name:        key,
		ContentType: domain.ReceiptContentType(key),
		Size:        f.Length,
	}
	if f.Metadata != nil {
		if name, ok := f.Metadata.Lookup("original_name").StringValueOK(); ok {
			info.Name = name
		}
	}
	return stream, info, nil
}
