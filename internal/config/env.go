package config

import (
	"os"
	"strconv"
)

// ApplyEnv lets PDFCHAT_* variables override the file. It runs after .env
// has been loaded so both sources work.
func ApplyEnv(cfg *AppConfig) {
	cfg.Embedder.Type = getEnv("PDFCHAT_EMBEDDER", cfg.Embedder.Type)
	cfg.VectorStore.Type = getEnv("PDFCHAT_VECTOR_STORE", cfg.VectorStore.Type)
	cfg.VectorStore.Namespace = getEnv("PDFCHAT_NAMESPACE", cfg.VectorStore.Namespace)
	cfg.LLM.Type = getEnv("PDFCHAT_LLM", cfg.LLM.Type)
	cfg.LLM.ModelID = getEnv("PDFCHAT_LLM_MODEL", cfg.LLM.ModelID)
	cfg.LLM.Region = getEnv("AWS_REGION", cfg.LLM.Region)
	cfg.Upload.MaxFiles = getEnvAsInt("PDFCHAT_MAX_FILES", cfg.Upload.MaxFiles)
	cfg.Log.Level = getEnv("PDFCHAT_LOG_LEVEL", cfg.Log.Level)
	applyConfigDefaults(cfg)
	// Runs after defaults so a freshly created bedrock section is covered too.
	if cfg.Embedder.Bedrock != nil {
		cfg.Embedder.Bedrock.Region = getEnv("AWS_REGION", cfg.Embedder.Bedrock.Region)
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
