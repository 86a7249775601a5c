package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/config"
	"pdfchat/internal/session"
)

func offlineConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
embedder:
  type: tfidf
llm:
  type: openai
  openai:
    api_key_env: PDFCHAT_TEST_OPENAI_KEY
log:
  dir: ` + filepath.Join(t.TempDir(), "logs") + `
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestAssembleOffline(t *testing.T) {
	t.Setenv("PDFCHAT_TEST_OPENAI_KEY", "sk-test")
	cfg := offlineConfig(t)

	a, err := assemble(context.Background(), cfg, true)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.session.Ready())
	notices := a.session.Ask(context.Background(), "anything?")
	assert.Equal(t, []session.Notice{{Level: session.Warning, Text: session.MsgNotReady}}, notices)

	entries, err := os.ReadDir(cfg.Log.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewStoreRequiresDSN(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.VectorStore.Type = "pgvector"
	cfg.VectorStore.Pgvector = &config.PgvectorConfig{DSNEnv: "PDFCHAT_TEST_MISSING_DSN"}
	t.Setenv("PDFCHAT_TEST_MISSING_DSN", "")

	_, err := newStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "PDFCHAT_TEST_MISSING_DSN")
}

func TestNewStorePinecone(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.VectorStore.Type = "pinecone"
	cfg.VectorStore.Pinecone = nil
	config.ApplyEnv(cfg)
	require.NotNil(t, cfg.VectorStore.Pinecone)
	cfg.VectorStore.Pinecone.APIKeyEnv = "PDFCHAT_TEST_PINECONE_KEY"

	t.Setenv("PDFCHAT_TEST_PINECONE_KEY", "")
	_, err := newStore(context.Background(), cfg)
	assert.Error(t, err)

	t.Setenv("PDFCHAT_TEST_PINECONE_KEY", "pc-test")
	store, err := newStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestNewGeneratorOpenAIRequiresKey(t *testing.T) {
	cfg := offlineConfig(t)
	t.Setenv("PDFCHAT_TEST_OPENAI_KEY", "")

	_, err := newGenerator(context.Background(), cfg, &bedrockClients{})
	assert.Error(t, err)
}

func TestRootCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["ingest"])
	assert.True(t, names["ask"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-dir"))
	assert.NotNil(t, askCmd.Flags().Lookup("question"))
}
