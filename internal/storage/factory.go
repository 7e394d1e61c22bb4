package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timmy/promptbay/internal/config"
)

// FromConfig converts the application storage section into an S3Config.
func FromConfig(cfg *config.StorageConfig) *S3Config {
	return &S3Config{
		Type:      StorageType(strings.ToLower(cfg.Type)),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	}
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// MinIO endpoints use the native client, memory keeps objects in process,
// everything else goes through the AWS SDK.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	switch cfg.Type {
	case StorageTypeMemory:
		return NewMemoryStorage(cfg.Bucket), nil
	case StorageTypeMinIO:
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:  normalizeEndpoint(cfg.Endpoint),
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			PublicURL: cfg.PublicURL,
		})
	case StorageTypeR2, StorageTypeS3, StorageTypeS3Compatible:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	case strings.Contains(endpoint, "minio"), strings.HasSuffix(endpoint, ":9000"):
		return StorageTypeMinIO
	default:
		return StorageTypeS3Compatible
	}
}

// normalizeEndpoint strips the scheme and any path, leaving host[:port].
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return endpoint
}

func endpointURL(useSSL bool, endpoint string) string {
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// bucketURL is the prefix objects are served under: the public URL when
// set, otherwise the path-style bucket address on the endpoint.
func bucketURL(publicURL string, useSSL bool, endpoint, bucket string) string {
	if p := strings.TrimSuffix(publicURL, "/"); p != "" {
		return p
	}
	return endpointURL(useSSL, endpoint) + "/" + bucket
}

// PutJSON marshals v with indentation and uploads it under key.
func PutJSON(ctx context.Context, store ObjectStorage, key string, v interface{}) (int64, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// GetJSON downloads key and decodes it into v.
func GetJSON(ctx context.Context, store ObjectStorage, key string, v interface{}) error {
	rc, err := store.Download(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
