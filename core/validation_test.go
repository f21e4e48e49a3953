package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *ContentChunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &ContentChunk{
				ID:        "abc123-chunk-0",
				ContentID: "abc123",
				Text:      "Always wear protective equipment.",
				Metadata:  ChunkMetadata{Source: "safety.pdf", Type: "policy"},
			},
			wantErr: nil,
		},
		{
			name: "valid chunk without metadata",
			chunk: &ContentChunk{
				ID:        "abc123-chunk-1",
				ContentID: "abc123",
				Text:      "Report all incidents.",
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty id",
			chunk: &ContentChunk{
				ContentID: "abc123",
				Text:      "Some text",
			},
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty text",
			chunk: &ContentChunk{
				ID:        "abc123-chunk-0",
				ContentID: "abc123",
			},
			wantErr: ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     *ConversationMessage
		wantErr error
	}{
		{
			name:    "valid user message",
			msg:     &ConversationMessage{ID: "m1", Role: RoleUser, Content: "Hello"},
			wantErr: nil,
		},
		{
			name:    "valid assistant message",
			msg:     &ConversationMessage{ID: "m2", Role: RoleAssistant, Content: "Hi there"},
			wantErr: nil,
		},
		{
			name:    "nil message",
			msg:     nil,
			wantErr: ErrInvalidMessage,
		},
		{
			name:    "empty content",
			msg:     &ConversationMessage{ID: "m3", Role: RoleUser},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "unknown role",
			msg:     &ConversationMessage{ID: "m4", Role: Role("moderator"), Content: "Hello"},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.msg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMessage() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	valid := ModuleTemplate{
		ID:                 "workplace-safety-101",
		Title:              "Workplace Safety Fundamentals",
		LearningObjectives: []string{"Identify common workplace hazards"},
	}

	tests := []struct {
		name    string
		mutate  func(*ModuleTemplate)
		wantErr error
	}{
		{
			name:    "valid template",
			mutate:  func(*ModuleTemplate) {},
			wantErr: nil,
		},
		{
			name: "valid with simulation",
			mutate: func(m *ModuleTemplate) {
				m.HasSimulation = true
				m.SimulationType = SimulationAIRoleplay
			},
			wantErr: nil,
		},
		{
			name:    "missing title",
			mutate:  func(m *ModuleTemplate) { m.Title = "" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "no objectives",
			mutate:  func(m *ModuleTemplate) { m.LearningObjectives = nil },
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "simulation without type",
			mutate: func(m *ModuleTemplate) {
				m.HasSimulation = true
			},
			wantErr: ErrInvalidSimulationType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := valid
			tt.mutate(&tmpl)
			err := ValidateTemplate(&tmpl)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTemplate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTemplate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("nil template", func(t *testing.T) {
		if err := ValidateTemplate(nil); !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("ValidateTemplate(nil) error = %v, want %v", err, ErrInvalidTemplate)
		}
	})
}
