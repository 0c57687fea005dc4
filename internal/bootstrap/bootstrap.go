// Package bootstrap turns a Config into wired services for the server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"iron-coder/internal/config"
	"iron-coder/internal/repository"
	"iron-coder/internal/repository/flatfile"
	"iron-coder/internal/repository/sqlite"
	"iron-coder/internal/service"
	"iron-coder/internal/storage"
)

// NewLogger returns the logrus logger used across the binaries.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == "" {
		return logger
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("unknown log level %q, using info", level)
	}
	return logger
}

// Store is an initialised credential repository plus whatever must be closed with it.
type Store struct {
	Users repository.UserRepository
	// Path is the file holding the records, for backups.
	Path  string
	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens and initialises the configured backend.
func OpenStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := sqlite.NewUserRepository(db)
		if err := repo.Init(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init user repository: %w", err)
		}
		return &Store{Users: repo, Path: cfg.Store.Path, close: db.Close}, nil

	case config.DriverFile:
		mode, err := repository.ParseParseMode(cfg.Store.ParseMode)
		if err != nil {
			return nil, err
		}
		repo := flatfile.NewUserRepository(cfg.Store.Path, mode, logger)
		if err := repo.Init(ctx); err != nil {
			return nil, fmt.Errorf("init user repository: %w", err)
		}
		return &Store{Users: repo, Path: cfg.Store.Path}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// NewUserService builds the credential service with the configured hasher.
func NewUserService(cfg config.Config, users repository.UserRepository, logger logrus.FieldLogger) (service.UserService, error) {
	hasher, err := service.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.Hasher == service.HasherPlain {
		logger.Warn("passwords are stored in plain text")
	}
	return service.NewUserService(users, hasher, logger), nil
}

// BuildStorage returns the S3 backup target.
func BuildStorage(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (storage.Service, error) {
	if cfg.Backup.Bucket == "" {
		return nil, fmt.Errorf("backup bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Backup.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Backup.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Backup.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Backup.Bucket, cfg.Backup.Region)
	return storage.NewS3Service(client), nil
}
