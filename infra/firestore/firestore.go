package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// SetupFirestore enables Firestore, creates the default native database and
// lets Firestore purge expired transaction intents.
func SetupFirestore(ctx *pulumi.Context, prov *gcp.Provider) error {
	svc, err := projects.NewService(ctx, "firestore", &projects.ServiceArgs{
		Service: pulumi.String("firestore.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return err
	}

	db, err := createDatabase(ctx, prov, svc)
	if err != nil {
		return err
	}

	return expireIntents(ctx, prov, db)
}

func createDatabase(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) (*firestore.Database, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	return firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Project:    pulumi.String(projectID),
		Name:       pulumi.String("(default)"),
		LocationId: pulumi.String(region),
		Type:       pulumi.String("FIRESTORE_NATIVE"),

		// point-in-time recovery for account balances
		PointInTimeRecoveryEnablement: pulumi.String("POINT_IN_TIME_RECOVERY_ENABLED"),
		DeleteProtectionState:         pulumi.String("DELETE_PROTECTION_ENABLED"),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
}

// expireIntents turns expiresAt on users/{uid}/transaction_intents into a TTL
// field. Deletion is best effort; the API checks expiry itself.
func expireIntents(ctx *pulumi.Context, prov *gcp.Provider, db *firestore.Database) error {
	_, err := firestore.NewField(ctx, "intentTTL", &firestore.FieldArgs{
		Database:   db.Name,
		Collection: pulumi.String("transaction_intents"),
		Field:      pulumi.String("expiresAt"),
		TtlConfig:  &firestore.FieldTtlConfigArgs{},
	},
		pulumi.Provider(prov),
	)
	return err
}
