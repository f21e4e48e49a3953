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


// Package storage defines the vector store abstraction.
//
// A Store is a namespaced vector database: upsert records by ID, query by
// similarity with optional exact-match metadata filters, delete by ID or
// whole namespace. Namespaces isolate organizations from each other; every
// upsert and query names one.
//
// # Backends
//
//   - storage/memory: in-memory exact cosine scan, for development and tests
//   - storage/badger: persistent local store on BadgerDB, exact cosine scan
//   - storage/pinecone: managed Pinecone index over its REST data plane
//
// All three are interchangeable behind the Store interface; retrieval code
// never knows which one it is talking to.
//
// # Metadata Conventions
//
// Chunk text travels in the metadata under the "text" key and is surfaced on
// Match.Text. Filters are exact value matches over metadata keys, the common
// denominator the in-memory scan and Pinecone's filter syntax both support.
//
// # Thread Safety
//
// All Store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
