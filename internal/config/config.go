package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	ProjectID   string
	Region      string
	LogLevel    string
	Port        string
	Environment string
	CORSOrigins []string

	KMSKeyName    string
	StorageBucket string
	RedisURL      string

	StepUpSecretName string
	StepUpSigningKey string
	StepUpTTL        time.Duration
	OTPCode          string

	TransactionPIN   string
	PINMaxAttempts   int
	PINAttemptWindow time.Duration

	AllowTransactions bool
	DeclineDelay      time.Duration
	ResetAfter        time.Duration
}

// New reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ProjectID:   os.Getenv("PROJECTID"),
		Region:      os.Getenv("REGION"),
		LogLevel:    os.Getenv("LOGLEVEL"),
		Port:        getString("PORT", "8080"),
		Environment: getString("ENVIRONMENT", EnvProduction),
		CORSOrigins: getList("CORSORIGINS"),

		KMSKeyName:    os.Getenv("KMSKEYNAME"),
		StorageBucket: os.Getenv("STORAGEBUCKET"),
		RedisURL:      os.Getenv("REDISURL"),

		StepUpSecretName: os.Getenv("STEPUPSECRETNAME"),
		StepUpSigningKey: os.Getenv("STEPUPSIGNINGKEY"),
		StepUpTTL:        getDuration("STEPUPTTL", 12*time.Hour),
		OTPCode:          getString("OTPCODE", "6578"),

		TransactionPIN:   getString("TRANSACTIONPIN", "4456"),
		PINMaxAttempts:   getInt("PINMAXATTEMPTS", 5),
		PINAttemptWindow: getDuration("PINATTEMPTWINDOW", 15*time.Minute),

		AllowTransactions: getBool("ALLOWTRANSACTIONS", true),
		DeclineDelay:      getDuration("DECLINEDELAY", 500*time.Millisecond),
		ResetAfter:        getDuration("RESETAFTER", 2*time.Second),
	}
}

// DeclineSimulation reports whether the demo decline toggle is in effect.
// Production always approves.
func (c *Config) DeclineSimulation() bool {
	return c.Environment != EnvProduction && !c.AllowTransactions
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
