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

package storage

import (
	"log/slog"
	"os"
)

// Backend names accepted by FromEnv via TRAINGEN_STORE.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPinecone = "pinecone"
)

// EnvConfig is the backend selection read from the environment. FromEnv
// returns it so the caller (the composition root) can construct the chosen
// backend without this package importing its own implementations.
type EnvConfig struct {
	Backend string

	// Pinecone settings, populated when Backend is "pinecone".
	PineconeAPIKey    string
	PineconeIndexHost string

	// Badger data directory, populated when Backend is "badger".
	BadgerPath string
}

// FromEnv selects a vector store backend from the environment. Pinecone is
// chosen when both PINECONE_API_KEY and PINECONE_INDEX_HOST are set, badger
// when TRAINGEN_BADGER_PATH is set, and the in-memory store otherwise.
// TRAINGEN_STORE overrides the detection when set to a known backend name.
func FromEnv() EnvConfig {
	cfg := EnvConfig{
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		BadgerPath:        os.Getenv("TRAINGEN_BADGER_PATH"),
	}

	switch os.Getenv("TRAINGEN_STORE") {
	case BackendMemory:
		cfg.Backend = BackendMemory
		return cfg
	case BackendBadger:
		cfg.Backend = BackendBadger
		return cfg
	case BackendPinecone:
		cfg.Backend = BackendPinecone
		return cfg
	}

	switch {
	case cfg.PineconeAPIKey != "" && cfg.PineconeIndexHost != "":
		cfg.Backend = BackendPinecone
	case cfg.BadgerPath != "":
		cfg.Backend = BackendBadger
	default:
		slog.Warn("no vector store configured, using in-memory store")
		cfg.Backend = BackendMemory
	}
	return cfg
}
