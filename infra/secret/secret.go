package secret

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/secretmanager"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Manager creates secrets once Secret Manager is enabled and the API
// account may read them.
type Manager struct {
	prov    *gcp.Provider
	service *projects.Service
}

func SetupSecretManager(ctx *pulumi.Context, prov *gcp.Provider, apiSA *serviceaccount.Account) (*Manager, error) {
	svc, err := projects.NewService(ctx, "secretManagerService", &projects.ServiceArgs{
		Service: pulumi.String("secretmanager.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")

	// The API only reads secrets at boot.
	_, err = projects.NewIAMMember(ctx, "secretManagerAccessor", &projects.IAMMemberArgs{
		Project: pulumi.String(projectID),
		Role:    pulumi.String("roles/secretmanager.secretAccessor"),
		Member: apiSA.Email.ApplyT(func(email string) string {
			return fmt.Sprintf("serviceAccount:%s", email)
		}).(pulumi.StringOutput),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{svc}),
	)
	if err != nil {
		return nil, err
	}

	return &Manager{prov: prov, service: svc}, nil
}

// Service is the API enablement resource, for DependsOn.
func (m *Manager) Service() *projects.Service {
	return m.service
}

// AddSecret stores value as the first version of secretID and returns the
// secret id the app resolves at runtime.
func (m *Manager) AddSecret(ctx *pulumi.Context, resourceName, secretID string, value pulumi.StringInput) (pulumi.StringOutput, error) {
	empty := pulumi.String("").ToStringOutput()

	s, err := secretmanager.NewSecret(ctx, resourceName, &secretmanager.SecretArgs{
		SecretId: pulumi.String(secretID),
		Replication: &secretmanager.SecretReplicationArgs{
			Auto: &secretmanager.SecretReplicationAutoArgs{},
		},
	},
		pulumi.Provider(m.prov),
		pulumi.DependsOn([]pulumi.Resource{m.service}),
	)
	if err != nil {
		return empty, err
	}

	_, err = secretmanager.NewSecretVersion(ctx, resourceName+"Version", &secretmanager.SecretVersionArgs{
		Secret:     s.ID(),
		SecretData: value,
	},
		pulumi.Provider(m.prov),
	)
	if err != nil {
		return empty, err
	}

	return s.SecretId, nil
}
