package cloudrun

import (
	"fmt"
	"strconv"

	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/cloudrun"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/GregMSThompson/banking-backend/infra/common"
	"github.com/GregMSThompson/banking-backend/infra/kms"
	"github.com/GregMSThompson/banking-backend/infra/secret"
	"github.com/GregMSThompson/banking-backend/infra/storage"
)

// Backing holds the resources the API container is pointed at.
type Backing struct {
	Keys        *kms.Keys
	KMSKeyID    pulumi.StringOutput
	ImageBucket pulumi.StringOutput
}

type secretRefs struct {
	stepUpKeyName pulumi.StringOutput
}

func SetupCloudRun(ctx *pulumi.Context, prov *gcp.Provider, backing Backing, res ...pulumi.Resource) (*serviceaccount.Account, error) {
	img, err := buildApiImage(ctx, res...)
	if err != nil {
		return nil, err
	}

	srv, err := enableCloudRun(ctx, prov)
	if err != nil {
		return nil, err
	}

	apiSA, err := createServiceAccount(ctx, prov)
	if err != nil {
		return nil, err
	}

	secrets, err := secret.SetupSecretManager(ctx, prov, apiSA)
	if err != nil {
		return nil, err
	}

	sr, err := createSecrets(ctx, secrets)
	if err != nil {
		return nil, err
	}

	member := serviceAccountMember(apiSA)
	if err := backing.Keys.GrantEncrypterDecrypter(ctx, backing.KMSKeyID, member); err != nil {
		return nil, err
	}
	if err := storage.GrantObjectAccess(ctx, prov, backing.ImageBucket, member); err != nil {
		return nil, err
	}

	svc, err := createCloudRunService(ctx, img, apiSA, sr, backing, prov, srv, secrets.Service())
	if err != nil {
		return nil, err
	}

	err = setIAMAccessPolicy(ctx, svc, prov)
	if err != nil {
		return nil, err
	}

	return apiSA, nil
}

func buildApiImage(ctx *pulumi.Context, res ...pulumi.Resource) (*docker.Image, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	hash, err := common.SourceHash("..")
	if err != nil {
		return nil, err
	}

	return docker.NewImage(ctx, "apiImage", &docker.ImageArgs{
		Build: docker.DockerBuildArgs{
			Platform:   pulumi.String("linux/amd64"),
			Context:    pulumi.String(".."),                    // build from repo root
			Dockerfile: pulumi.String("../cmd/api/Dockerfile"), // Dockerfile path relative to repo root
		},
		ImageName: pulumi.String(fmt.Sprintf("%s-docker.pkg.dev/%s/api/banking-api:%s", region, projectID, hash)),
	},
		pulumi.DependsOn(res),
	)
}

func enableCloudRun(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "cloudRunService", &projects.ServiceArgs{
		Service: pulumi.String("run.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

func serviceAccountMember(sa *serviceaccount.Account) pulumi.StringOutput {
	return sa.Email.ApplyT(func(email string) string {
		return fmt.Sprintf("serviceAccount:%s", email)
	}).(pulumi.StringOutput)
}

func createServiceAccount(ctx *pulumi.Context, prov *gcp.Provider) (*serviceaccount.Account, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")

	apiSA, err := serviceaccount.NewAccount(ctx, "apiServiceAccount", &serviceaccount.AccountArgs{
		AccountId:   pulumi.String("banking-api"),
		DisplayName: pulumi.String("Banking API Service Account"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	_, err = projects.NewIAMMember(ctx, "firestoreAccess", &projects.IAMMemberArgs{
		Role:    pulumi.String("roles/datastore.user"), // Firestore read/write
		Member:  serviceAccountMember(apiSA),
		Project: pulumi.String(projectID),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	// Admin SDK user management (create/update/delete accounts).
	_, err = projects.NewIAMMember(ctx, "firebaseAuthAdmin", &projects.IAMMemberArgs{
		Role:    pulumi.String("roles/firebaseauth.admin"),
		Member:  serviceAccountMember(apiSA),
		Project: pulumi.String(projectID),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	return apiSA, nil
}

func createCloudRunService(ctx *pulumi.Context,
	img *docker.Image,
	apiSA *serviceaccount.Account,
	sr *secretRefs,
	backing Backing,
	prov *gcp.Provider,
	res ...pulumi.Resource) (*cloudrun.Service, error) {
	gcpCfg := config.New(ctx, "gcp")
	crCfg := config.New(ctx, "cloudrun")
	appCfg := config.New(ctx, "banking")

	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")
	minScale := crCfg.Require("minScale")
	maxScale := crCfg.Require("maxScale")
	cpu := crCfg.Require("cpu")
	memory := crCfg.Require("memory")
	concurrency := crCfg.Require("concurrency")
	logLevel := crCfg.Require("logLevel")
	timeout, _ := strconv.Atoi(crCfg.Require("timeout"))
	environment := appCfg.Require("environment")
	corsOrigins := appCfg.Get("corsOrigins")
	redisURL := appCfg.Get("redisUrl")

	envs := cloudrun.ServiceTemplateSpecContainerEnvArray{
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("PROJECTID"),
			Value: pulumi.String(projectID),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("REGION"),
			Value: pulumi.String(region),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("LOGLEVEL"),
			Value: pulumi.String(logLevel),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("ENVIRONMENT"),
			Value: pulumi.String(environment),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("CORSORIGINS"),
			Value: pulumi.String(corsOrigins),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("KMSKEYNAME"),
			Value: backing.KMSKeyID,
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("STORAGEBUCKET"),
			Value: backing.ImageBucket,
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("STEPUPSECRETNAME"),
			Value: sr.stepUpKeyName,
		},
	}
	if redisURL != "" {
		envs = append(envs, &cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("REDISURL"),
			Value: pulumi.String(redisURL),
		})
	}

	return cloudrun.NewService(ctx, "apiService", &cloudrun.ServiceArgs{
		Location: pulumi.String(region),

		Template: &cloudrun.ServiceTemplateArgs{

			Metadata: &cloudrun.ServiceTemplateMetadataArgs{
				// ---- AUTOSCALING + INSTANCE SIZE ----
				Annotations: pulumi.StringMap{
					// Autoscaling bounds
					"autoscaling.knative.dev/minScale": pulumi.String(minScale),
					"autoscaling.knative.dev/maxScale": pulumi.String(maxScale),

					// Instance sizing
					"run.googleapis.com/cpu":    pulumi.String(cpu),
					"run.googleapis.com/memory": pulumi.String(memory),

					// The session stream holds connections open, keep CPU allocated
					"run.googleapis.com/cpu-throttling": pulumi.String("false"),

					// Set the number of concurrent requests per container
					"run.googleapis.com/container-concurrency": pulumi.String(concurrency),
				},
			},

			Spec: &cloudrun.ServiceTemplateSpecArgs{
				ServiceAccountName: apiSA.Email,
				TimeoutSeconds:     pulumi.Int(timeout),

				Containers: cloudrun.ServiceTemplateSpecContainerArray{
					&cloudrun.ServiceTemplateSpecContainerArgs{
						Image: img.ImageName,
						Ports: cloudrun.ServiceTemplateSpecContainerPortArray{
							&cloudrun.ServiceTemplateSpecContainerPortArgs{
								ContainerPort: pulumi.Int(8080),
							},
						},
						Envs: envs,
					},
				},
			},
		},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
}

func setIAMAccessPolicy(ctx *pulumi.Context, svc *cloudrun.Service, prov *gcp.Provider) error {
	gcpCfg := config.New(ctx, "gcp")
	region := gcpCfg.Require("region")

	// Public ingress; the API verifies Firebase ID tokens itself.
	_, err := cloudrun.NewIamMember(ctx, "publicInvoker", &cloudrun.IamMemberArgs{
		Service:  svc.Name,
		Location: pulumi.String(region),
		Role:     pulumi.String("roles/run.invoker"),
		Member:   pulumi.String("allUsers"),
	},
		pulumi.Provider(prov),
	)
	return err
}

func createSecrets(ctx *pulumi.Context, secrets *secret.Manager) (*secretRefs, error) {
	var err error
	sr := new(secretRefs)

	stepUpCfg := config.New(ctx, "stepup")
	signingKey := stepUpCfg.RequireSecret("signingKey")

	sr.stepUpKeyName, err = secrets.AddSecret(ctx, "stepUpSigningKeySecret", "stepUpSigningKey", signingKey)
	if err != nil {
		return nil, err
	}

	return sr, nil
}
