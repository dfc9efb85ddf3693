package services

import (
	"context"

	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type userMSStore interface {
	ForEachRaw(ctx context.Context, fn func(uid string, data map[string]any) error) error
	MergeFields(ctx context.Context, uid string, fields map[string]any) error
}

// MigrationReport counts what one migration run did.
type MigrationReport struct {
	Scanned  int `json:"scanned"`
	Upgraded int `json:"upgraded"`
	Current  int `json:"current"`
}

type migrationService struct {
	users userMSStore
}

func NewMigrationService(users userMSStore) *migrationService {
	return &migrationService{users: users}
}

// Run upgrades every user document to the current schema version. Documents
// already at that version are left untouched, so running it twice is safe.
func (s *migrationService) Run(ctx context.Context) (MigrationReport, error) {
	log := logger.FromContext(ctx)
	var report MigrationReport

	err := s.users.ForEachRaw(ctx, func(uid string, data map[string]any) error {
		report.Scanned++
		patch := UpgradePatch(data)
		if len(patch) == 0 {
			report.Current++
			return nil
		}
		if err := s.users.MergeFields(ctx, uid, patch); err != nil {
			return err
		}
		report.Upgraded++
		log.Debug("user document upgraded", "target_uid", uid, "fields", len(patch))
		return nil
	})
	if err != nil {
		return report, err
	}

	log.Info("migration finished", "scanned", report.Scanned, "upgraded", report.Upgraded, "current", report.Current)
	return report, nil
}

// UpgradePatch returns the fields a raw document needs to reach the current
// schema version, or nil when it is already there.
func UpgradePatch(data map[string]any) map[string]any {
	patch := map[string]any{}
	if v, ok := data["cards"]; !ok || v == nil {
		patch["cards"] = []any{}
	}
	if v, ok := data["transactions"]; !ok || v == nil {
		patch["transactions"] = []any{}
	}
	if v, ok := data["balance"]; !ok || v == nil {
		patch["balance"] = 0.0
	}
	if v, ok := data["role"]; !ok || v == nil || v == "" {
		patch["role"] = models.RoleUser
	}
	if version(data["schemaVersion"]) < models.CurrentSchemaVersion {
		patch["schemaVersion"] = models.CurrentSchemaVersion
	}
	if len(patch) == 0 {
		return nil
	}
	patch["schemaVersion"] = models.CurrentSchemaVersion
	return patch
}

func version(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
