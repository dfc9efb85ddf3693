package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/banking-backend/infra/cloudrun"
	"github.com/GregMSThompson/banking-backend/infra/docker"
	"github.com/GregMSThompson/banking-backend/infra/firestore"
	"github.com/GregMSThompson/banking-backend/infra/identity"
	"github.com/GregMSThompson/banking-backend/infra/kms"
	"github.com/GregMSThompson/banking-backend/infra/provider"
	"github.com/GregMSThompson/banking-backend/infra/storage"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// key for card numbers and SSNs at rest
		keys, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyID, err := keys.CreateKey(ctx, "banking", "field-encryption")
		if err != nil {
			return err
		}

		// profile images
		bucket, err := storage.SetupImageBucket(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, cloudrun.Backing{
			Keys:        keys,
			KMSKeyID:    keyID,
			ImageBucket: bucket,
		}, ident, repo)
		if err != nil {
			return err
		}

		ctx.Export("kmsKeyName", keyID)
		ctx.Export("imageBucket", bucket)
		return nil
	})
}
