package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	"firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/banking-backend/internal/config"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	KMS       *gcpkms.KeyManagementClient
	Secrets   *secretmanager.Client
	Storage   *storage.Client
	// Redis is nil when no REDISURL is configured.
	Redis *redis.Client
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.KMS, err = InitKMS(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.Secrets, err = InitSecretManager(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.Storage, err = InitStorage(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.Redis, err = InitRedis(applicationCtx, cfg.RedisURL)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

// Close releases every client that was opened.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Redis != nil {
		errList = append(errList, bs.Redis.Close())
	}
	if bs.Storage != nil {
		errList = append(errList, bs.Storage.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	return errors.Join(errList...)
}

var exit = os.Exit

// ExitOnError logs err, closes whatever clients are open and exits with
// status 1. A nil err is a no-op.
func (bs *Bootstrap) ExitOnError(message string, err error) {
	if err == nil {
		return
	}
	log := bs.Log
	if log == nil {
		log = slog.Default()
	}
	log.Error(message, "error", err)
	if cerr := bs.Close(); cerr != nil {
		log.Error("failed to close clients", "error", cerr)
	}
	exit(1)
}
