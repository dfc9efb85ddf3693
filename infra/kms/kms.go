package kms

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/kms"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Keys creates key rings and keys once Cloud KMS is enabled.
type Keys struct {
	prov    *gcp.Provider
	service *projects.Service
}

func SetupKMS(ctx *pulumi.Context, prov *gcp.Provider) (*Keys, error) {
	svc, err := projects.NewService(ctx, "kmsService", &projects.ServiceArgs{
		Service: pulumi.String("cloudkms.googleapis.com"),
	}, pulumi.Provider(prov))
	if err != nil {
		return nil, err
	}

	return &Keys{prov: prov, service: svc}, nil
}

// CreateKey creates a key ring and a symmetric key rotated every 90 days.
// The returned ID has the projects/.../cryptoKeys/... form the app expects
// in KMSKEYNAME.
func (k *Keys) CreateKey(ctx *pulumi.Context, keyRingID, keyID string) (pulumi.StringOutput, error) {
	gcpCfg := config.New(ctx, "gcp")
	location := gcpCfg.Require("region")
	empty := pulumi.String("").ToStringOutput()

	ring, err := kms.NewKeyRing(ctx, fmt.Sprintf("%s-ring", keyRingID), &kms.KeyRingArgs{
		Location: pulumi.String(location),
		Name:     pulumi.String(keyRingID),
	},
		pulumi.Provider(k.prov),
		pulumi.DependsOn([]pulumi.Resource{k.service}),
	)
	if err != nil {
		return empty, err
	}

	key, err := kms.NewCryptoKey(ctx, fmt.Sprintf("%s-key", keyID), &kms.CryptoKeyArgs{
		KeyRing:        ring.ID(),
		Name:           pulumi.String(keyID),
		Purpose:        pulumi.String("ENCRYPT_DECRYPT"),
		RotationPeriod: pulumi.String("7776000s"),
	},
		pulumi.Provider(k.prov),
		// stored SSNs and card numbers become unreadable if the key is lost
		pulumi.Protect(true),
	)
	if err != nil {
		return empty, err
	}

	return key.ID().ToStringOutput(), nil
}

// GrantEncrypterDecrypter lets member encrypt and decrypt with keyID.
func (k *Keys) GrantEncrypterDecrypter(ctx *pulumi.Context, keyID, member pulumi.StringOutput) error {
	_, err := kms.NewCryptoKeyIAMMember(ctx, "fieldKeyEncrypterDecrypter", &kms.CryptoKeyIAMMemberArgs{
		CryptoKeyId: keyID,
		Role:        pulumi.String("roles/cloudkms.cryptoKeyEncrypterDecrypter"),
		Member:      member,
	},
		pulumi.Provider(k.prov),
	)
	return err
}
