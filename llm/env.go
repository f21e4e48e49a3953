package llm

import (
	"os"
	"time"

	"github.com/poiesic/traingen/ai"
)

// ConfigFromEnv builds a routing configuration from environment variables,
// the way a deployment without per-organization settings runs.
//
//   - OPENAI_API_KEY: required; gpt-4o-mini default provider and
//     text-embedding-3-small embedding provider
//   - ANTHROPIC_API_KEY: optional; routes roleplay and simulation
//     generation to claude-sonnet-4-20250514
//   - GOOGLE_AI_API_KEY: optional; routes content generation to
//     gemini-2.0-flash
//
// Callers that use .env files load them first (cmd does this with
// godotenv).
func ConfigFromEnv(organizationID string) ServiceConfig {
	cfg := ServiceConfig{
		OrganizationID: organizationID,
		Default: ai.NewConfig(
			ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		),
		Embedding: ai.NewConfig(
			ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
			ai.WithModel("text-embedding-3-small"),
		),
		Tasks: make(map[TaskType]*ai.Config),
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Tasks[TaskRoleplay] = ai.NewConfig(
			ai.WithProvider("anthropic"),
			ai.WithAPIKey(key),
			ai.WithModel("claude-sonnet-4-20250514"),
			ai.WithDefaultTemperature(0.8),
		)
		cfg.Tasks[TaskSimulationGeneration] = ai.NewConfig(
			ai.WithProvider("anthropic"),
			ai.WithAPIKey(key),
			ai.WithModel("claude-sonnet-4-20250514"),
			ai.WithDefaultMaxTokens(8192),
		)
	}

	if key := os.Getenv("GOOGLE_AI_API_KEY"); key != "" {
		cfg.Tasks[TaskContentGeneration] = ai.NewConfig(
			ai.WithProvider("google"),
			ai.WithAPIKey(key),
			ai.WithModel("gemini-2.0-flash"),
			ai.WithDefaultMaxTokens(8192),
			ai.WithTimeout(180*time.Second),
		)
	}

	return cfg
}
