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

import "fmt"

// ValidateChunk validates a ContentChunk according to domain rules.
//
// Validation rules:
//   - ID and ContentID must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Metadata fields (Source may legitimately be unknown)
func ValidateChunk(chunk *ContentChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ID == "" || chunk.ContentID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	return nil
}

// ValidateMessage validates a ConversationMessage according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be one of system, user, assistant
func ValidateMessage(msg *ConversationMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateTemplate validates a ModuleTemplate according to domain rules.
//
// Validation rules:
//   - ID and Title must not be empty
//   - At least one learning objective
//   - If HasSimulation is set, SimulationType must be valid
func ValidateTemplate(tmpl *ModuleTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidTemplate)
	}

	if tmpl.ID == "" || tmpl.Title == "" {
		return fmt.Errorf("%w: missing id or title", ErrInvalidTemplate)
	}

	if len(tmpl.LearningObjectives) == 0 {
		return fmt.Errorf("%w: at least one learning objective required", ErrInvalidTemplate)
	}

	if tmpl.HasSimulation {
		if err := ValidateSimulationType(tmpl.SimulationType); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}

	return nil
}

// ValidateRole validates that a Role has a recognized value.
func ValidateRole(role Role) error {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

// ValidateSimulationType validates that a SimulationType has a recognized value.
func ValidateSimulationType(t SimulationType) error {
	switch t {
	case SimulationSoftwareInterface, SimulationScenarioBranching, SimulationAIRoleplay:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSimulationType, t)
}
