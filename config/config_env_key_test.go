package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"auth": map[string]any{
			"bcryptCost":               10,
			"legacyUnauthorizedStatus": false,
		},
		"jwt": map[string]any{
			"key": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "AUTH_BCRYPTCOST", want: "auth.bcryptCost"},
		{envKey: "AUTH_LEGACYUNAUTHORIZEDSTATUS", want: "auth.legacyUnauthorizedStatus"},
		{envKey: "JWT_KEY", want: "jwt.key"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnv_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
storage:
  driver: memory
jwt:
  key: from-file
  issuer: devroots
auth:
  bcryptCost: 12
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testcfg.yaml"), content, 0o600))

	t.Setenv("JWT_KEY", "from-env")
	t.Chdir(dir)

	cfg, err := LoadWithEnv[Config]("testcfg")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Key)
	assert.Equal(t, "devroots", cfg.JWT.Issuer)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("does-not-exist")
	assert.Error(t, err)
}

func TestConfig_ApplyDefaultsAndValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, DefaultPasswordStrength(), cfg.PasswordStrength)
	assert.NotNil(t, cfg.PubSub)

	// No key, no postgres section.
	assert.Error(t, cfg.Validate())

	cfg.JWT.Key = "secret"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = StorageDriverMemory
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}
