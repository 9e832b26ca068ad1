package repository

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/smokerelay/smokerelay/internal/config"
	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
	"github.com/smokerelay/smokerelay/internal/repository/httpstore"
	"github.com/smokerelay/smokerelay/internal/repository/postgres"
	"github.com/smokerelay/smokerelay/internal/repository/s3"
)

// Backend names accepted by CONFIG_BACKEND.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

const s3ObjectName = "config.json"

// NewStore builds the config store selected by configuration. The returned
// cleanup releases backend resources and is safe to call once on shutdown.
func NewStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.ConfigStore, func(), error) {
	switch cfg.Store.Backend {
	case BackendHTTP, "":
		return httpstore.New(cfg.Store.URL, cfg.Store.Key, nil, logger), func() {}, nil

	case BackendPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres backend: %w", err)
		}
		return postgres.NewStore(conn), func() { conn.Close() }, nil

	case BackendS3:
		client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		store, err := s3.NewStore(ctx, client, cfg.S3.Bucket, s3ObjectName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3 backend: %w", err)
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown config backend: %s", cfg.Store.Backend)
	}
}
