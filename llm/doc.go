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


// Package llm routes AI work to providers by task type.
//
// A Service carries one organization's routing table: a default provider, an
// optional override per task type (content generation, roleplay, grading,
// and so on), and an optional dedicated embedding provider. Provider
// instances are cached in a Registry keyed by provider, model, and
// credential identity, so identically configured routes share one instance
// across services.
//
//	registry := llm.NewRegistry()
//	service, err := llm.NewService(llm.ConfigFromEnv("acme"), registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := service.GenerateText(ctx, llm.TaskSummarization, prompt)
//
// Registries and services are plain values wired by the caller. There is no
// package-level singleton: concurrent use is covered by the registry's
// internal locking, and tests install mock providers through
// NewRegistryWithFactory.
package llm
