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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a ContentChunk failed validation.
	ErrInvalidChunk = errors.New("invalid content chunk")

	// ErrInvalidMessage indicates a ConversationMessage failed validation.
	ErrInvalidMessage = errors.New("invalid conversation message")

	// ErrInvalidTemplate indicates a ModuleTemplate failed validation.
	ErrInvalidTemplate = errors.New("invalid module template")

	// ErrEmptyOrganizationID indicates a missing organization identifier.
	ErrEmptyOrganizationID = errors.New("organization id cannot be empty")

	// ErrEmptyText indicates chunk text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyContent indicates message content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an unrecognized message role.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrInvalidSimulationType indicates an unrecognized simulation type.
	ErrInvalidSimulationType = errors.New("invalid simulation type")
)
