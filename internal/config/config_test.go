package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDatabaseDriver, cfg.Database.Driver)
	assert.Equal(t, DefaultStorage, cfg.Storage.Provider)
	assert.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.GoogleEnabled())
}

func TestNewLeavesJWTSecretUnset(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	assert.Empty(t, New().Auth.JWTSecret)
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		secret  string
		wantErr bool
		want    string
	}{
		{name: "mongo without secret", driver: "mongo", secret: "", wantErr: true},
		{name: "mongo with dev secret", driver: "mongo", secret: DevJWTSecret, wantErr: true},
		{name: "mongo with own secret", driver: "mongo", secret: "s3cr3t-value", want: "s3cr3t-value"},
		{name: "memory falls back to dev secret", driver: "memory", secret: "", want: DevJWTSecret},
		{name: "memory keeps own secret", driver: "memory", secret: "s3cr3t-value", want: "s3cr3t-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Database.Driver = tt.driver
			cfg.Auth.JWTSecret = tt.secret

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "JWT_SECRET")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Auth.JWTSecret)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("FILE_UPLOAD_PROVIDER", "gridfs")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("MINIO_USE_SSL", "yes")
	t.Setenv("MAIL_PAGE_SIZE", "not-a-number")

	cfg := New()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Address())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "gridfs", cfg.Storage.Provider)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Storage.MinioUseSSL)
	assert.Equal(t, DefaultMailPageSize, cfg.Mail.PageSize)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docvault.toml")
	body := `
[server]
port = "7000"

[storage]
provider = "s3"
s3_bucket = "docs"

[auth]
token_ttl = "30m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("S3_BUCKET", "override")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "override", cfg.Storage.S3Bucket)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, DefaultMongoDB, cfg.Database.Database)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestMaxUploadBytes(t *testing.T) {
	s := StorageConfig{MaxUploadMB: 2}
	assert.Equal(t, int64(2<<20), s.MaxUploadBytes())

	s.MaxUploadMB = 0
	assert.Equal(t, int64(DefaultMaxUploadMB<<20), s.MaxUploadBytes())
}
