package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 300, cfg.Server.TimeoutSeconds)
	require.Equal(t, "https://api.recruitcrm.io/v1", cfg.RecruitCRM.BaseURL)
	require.Equal(t, "https://api.alpharun.com/api/v1", cfg.AlphaRun.BaseURL)
	require.Equal(t, "https://api.fireflies.ai/graphql", cfg.Fireflies.Endpoint)
	require.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	require.Equal(t, 16, cfg.Bulk.QueueDepth)
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
gemini:
  model: gemini-2.0-flash
tasks:
  project_id: proj
  worker_url: https://worker.example/tasks/summary
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "secret", cfg.Auth.APIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	require.Equal(t, "proj", cfg.Tasks.ProjectID)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080, TimeoutSeconds: 300},
		Bulk:   BulkConfig{QueueDepth: 16},
	}

	bad := base
	bad.Server.Port = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.Auth = AuthConfig{Enabled: true}
	require.Error(t, bad.Validate())

	bad = base
	bad.Tasks = TasksConfig{ProjectID: "proj"}
	require.Error(t, bad.Validate())

	require.NoError(t, base.Validate())
}
