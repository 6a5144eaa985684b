package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "STORE_DRIVER", "JWT_SECRET", "TOKEN_TTL", "MAX_UPLOAD_BYTES", "SHUTDOWN_TIMEOUT", "MONGO_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "odinbook", cfg.MongoDB)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromEnvRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("ENV", "development")

	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TOKEN_TTL")
}
