package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/GregMSThompson/banking-backend/internal/bootstrap"
	"github.com/GregMSThompson/banking-backend/internal/config"
	"github.com/GregMSThompson/banking-backend/internal/services"
	"github.com/GregMSThompson/banking-backend/internal/store"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

// migrate upgrades every user document to the current schema version and
// prints the report as JSON.
func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	ctx := logger.ToContext(context.Background(), log)

	bs := &bootstrap.Bootstrap{Log: log}
	fs, err := bootstrap.InitFirestore(ctx, cfg.ProjectID)
	bs.ExitOnError("firestore init failed", err)
	bs.Firestore = fs

	report, err := services.NewMigrationService(store.NewUserStore(fs)).Run(ctx)
	bs.ExitOnError("migration failed", err)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	bs.ExitOnError("failed to write report", enc.Encode(report))

	if err := bs.Close(); err != nil {
		log.Error("failed to close firestore", "error", err)
	}
}
