package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"orl-assistant/internal/config"
	"orl-assistant/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		App:  config.AppConfig{ClientURL: "http://localhost:3000"},
		Xano: config.XanoConfig{BaseURL: "http://127.0.0.1:1", AuthGroup: "api:test"},
		Storage: config.StorageConfig{
			Driver:   driver,
			TokenKey: "xano_token",
			FilePath: filepath.Join(t.TempDir(), "credentials.json"),
			RedisURL: "redis://127.0.0.1:1",
		},
	}
}

func TestNewContainerDrivers(t *testing.T) {
	for _, driver := range []string{config.StoreFile, config.StoreMemory, config.StoreNone, config.StoreRedis, config.StorePostgres} {
		t.Run(driver, func(t *testing.T) {
			c, err := NewContainer(context.Background(), testConfig(t, driver), logger.NewNopLogger())
			require.NoError(t, err)
			defer c.Close()

			assert.NotNil(t, c.Session)
			assert.NotNil(t, c.Auth)
			assert.NotNil(t, c.Registry)

			c.Session.SetToken(context.Background(), "abc")
			got, ok := c.Session.Token()
			assert.True(t, ok)
			assert.Equal(t, "abc", got)
		})
	}
}

func TestNewContainerRejectsUnknownDriver(t *testing.T) {
	_, err := NewContainer(context.Background(), testConfig(t, "floppy"), logger.NewNopLogger())
	assert.Error(t, err)
}
