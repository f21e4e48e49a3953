// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the provider abstraction for chat completion and text
// embedding backends.
//
// The core contract is the Provider interface: completion, streaming
// completion, embedding, and token estimation behind a uniform surface, so
// the rest of the system never touches vendor wire formats. Streaming is
// expressed as a receive-only channel of StreamEvent values that is closed
// after the final event.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI chat/embeddings API, also used for Azure OpenAI
//     deployments via an explicit base URL
//   - ai/anthropic: Anthropic Messages API
//   - ai/google: Google Gemini generateContent API
//   - ai/mock: scripted test double with call recording
//
// Public constructors return the Provider interface to keep callers decoupled
// from concrete implementations; the mock package returns its concrete type so
// tests can script behavior and assert on recorded calls.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider("openai"),
//	    ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	provider, err := openai.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	completion, err := provider.Complete(ctx, []ai.Message{
//	    ai.SystemMessage("You are a training content assistant."),
//	    ai.UserMessage("Summarize the incident reporting policy."),
//	}, ai.WithTemperature(0.2))
//
// Per-call options override the configured defaults only for that call; a
// zero temperature is honored as an explicit request for deterministic
// output.
package ai
