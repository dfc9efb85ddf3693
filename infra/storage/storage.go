package storage

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/storage"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// SetupImageBucket enables Cloud Storage and creates the private bucket that
// holds profile images. Returns the bucket name.
func SetupImageBucket(ctx *pulumi.Context, prov *gcp.Provider) (pulumi.StringOutput, error) {
	empty := pulumi.String("").ToStringOutput()

	svc, err := enableStorage(ctx, prov)
	if err != nil {
		return empty, err
	}

	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	bucket, err := storage.NewBucket(ctx, "profileImages", &storage.BucketArgs{
		Name:                     pulumi.String(fmt.Sprintf("%s-profile-images", projectID)),
		Location:                 pulumi.String(region),
		UniformBucketLevelAccess: pulumi.Bool(true),
		PublicAccessPrevention:   pulumi.String("enforced"),
		ForceDestroy:             pulumi.Bool(false),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{svc}),
	)
	if err != nil {
		return empty, err
	}

	return bucket.Name, nil
}

// GrantObjectAccess lets member read and write objects in bucket.
func GrantObjectAccess(ctx *pulumi.Context, prov *gcp.Provider, bucket pulumi.StringOutput, member pulumi.StringOutput) error {
	_, err := storage.NewBucketIAMMember(ctx, "profileImagesObjectAdmin", &storage.BucketIAMMemberArgs{
		Bucket: bucket,
		Role:   pulumi.String("roles/storage.objectAdmin"),
		Member: member,
	},
		pulumi.Provider(prov),
	)
	return err
}

func enableStorage(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "storageService", &projects.ServiceArgs{
		Service: pulumi.String("storage.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}
