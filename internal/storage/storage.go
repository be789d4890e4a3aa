package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the blob side of file storage.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, objectName string) error
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	PublicURL(objectName string) string
}

type Client struct {
	client       *minio.Client
	publicClient *minio.Client
	backend      string
	bucket       string
	region       string
	publicBase   string
	publicRead   bool
}

// New builds a client for the configured backend. The s3 backend falls back
// to IAM credentials when no access key is set.
func New(cfg config.StorageConfig) (*Client, error) {
	var creds *credentials.Credentials
	if cfg.Backend == config.StorageS3 && cfg.AccessKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	publicEndpoint := cfg.PublicEndpoint
	if publicEndpoint == "" {
		publicEndpoint = cfg.Endpoint
	}

	// Presigned URLs embed the host in the signature, so they are minted by a
	// client pointed at the browser-facing endpoint.
	publicClient := client
	if publicEndpoint != cfg.Endpoint {
		publicClient, err = minio.New(publicEndpoint, &minio.Options{
			Creds:  creds,
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, err
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &Client{
		client:       client,
		publicClient: publicClient,
		backend:      cfg.Backend,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		publicBase:   fmt.Sprintf("%s://%s/%s", scheme, strings.TrimSuffix(publicEndpoint, "/"), cfg.Bucket),
		publicRead:   cfg.PublicRead,
	}, nil
}

func (s *Client) logDetails(objectName string) map[string]interface{} {
	return map[string]interface{}{
		"backend":     s.backend,
		"object_name": objectName,
		"bucket":      s.bucket,
	}
}

func (s *Client) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	details := s.logDetails(objectName)
	details["size"] = size
	details["content_type"] = contentType
	if err != nil {
		logger.Error("storage_upload_failed", err, details)
	} else {
		logger.Info("storage_upload_success", details)
	}
	return err
}

func (s *Client) Delete(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Error("storage_delete_failed", err, s.logDetails(objectName))
	} else {
		logger.Info("storage_delete_success", s.logDetails(objectName))
	}
	return err
}

func (s *Client) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	urlValue, err := s.publicClient.PresignedGetObject(ctx, s.bucket, objectName, expiry, url.Values{})
	if err != nil {
		logger.Error("storage_presign_failed", err, s.logDetails(objectName))
		return "", err
	}
	return urlValue.String(), nil
}

// PublicURL is the unsigned object link, or "" when the bucket is not public.
func (s *Client) PublicURL(objectName string) string {
	if !s.publicRead {
		return ""
	}
	return PublicObjectURL(s.publicBase, objectName)
}

func PublicObjectURL(base, objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segments, "/")
}

func (s *Client) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", s.bucket, err)
	}
	logger.Info("storage_bucket_created", map[string]interface{}{"bucket": s.bucket, "backend": s.backend})
	return nil
}
