package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "task_manager", cfg.Mongo.Database)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Cron)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.Window)
	assert.Equal(t, StorageLocal, cfg.Storage.Driver)
	assert.False(t, cfg.Tasks.StrictCustomFields)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "s3cret",
		"ENV":                        "production",
		"TOKEN_TTL":                  "1h",
		"TASKS_STRICT_CUSTOM_FIELDS": "true",
		"STORAGE_DRIVER":             "cloudinary",
		"CLOUDINARY_CLOUD_NAME":      "demo",
		"CLOUDINARY_API_KEY":         "key",
		"CLOUDINARY_API_SECRET":      "secret",
		"REMINDER_TIMEZONE":          "America/Sao_Paulo",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Tasks.StrictCustomFields)
	assert.Equal(t, "demo", cfg.Cloudinary.CloudName)
	assert.Equal(t, "America/Sao_Paulo", cfg.Reminder.Timezone)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"cloudinary without credentials": {"STORAGE_DRIVER": "cloudinary"},
		"unknown storage driver":         {"STORAGE_DRIVER": "s3"},
		"zero upload limit":              {"TASKS_MAX_UPLOAD_MB": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			env["JWT_SECRET"] = "s3cret"
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
		})
	}
}
