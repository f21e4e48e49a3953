package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic identifier from document content
// using BLAKE2b hashing. Identical content always produces the same ID, which
// keeps re-ingestion of the same material idempotent.
func IDFromContent(content []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(content)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// ChunkID builds the identifier for one chunk of an ingested document.
// Chunk IDs are unique within an organization's index.
func ChunkID(contentID string, index int) string {
	return contentID + "-chunk-" + strconv.Itoa(index)
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// OrganizationalContext is the per-tenant profile used to ground generated
// content. The Tools, Concepts, and Compliance lists are populated by
// document analysis and merged on re-ingestion; the remaining fields are
// entered by administrators.
type OrganizationalContext struct {
	OrganizationID string   `json:"organizationId"`
	Name           string   `json:"name"`
	Industry       string   `json:"industry,omitempty"`
	Size           string   `json:"size,omitempty"`
	Tools          []string `json:"tools"`
	Concepts       []string `json:"concepts"`
	Compliance     []string `json:"compliance"`
	Values         []string `json:"values,omitempty"`
	Culture        string   `json:"culture,omitempty"`
	TechStack      []string `json:"techStack,omitempty"`
}

// PlaceholderOrganizationalContext returns the empty-but-valid profile used
// when nothing has been stored for an organization yet. Retrieval never
// surfaces a missing profile as an error.
func PlaceholderOrganizationalContext(organizationID string) *OrganizationalContext {
	return &OrganizationalContext{
		OrganizationID: organizationID,
		Name:           "Unknown Organization",
		Tools:          []string{},
		Concepts:       []string{},
		Compliance:     []string{},
	}
}

// ModuleContext is the metadata for one training module. Generation treats it
// as read-only input.
type ModuleContext struct {
	ModuleID           string   `json:"moduleId"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	TargetAudience     string   `json:"targetAudience,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	LearningObjectives []string `json:"learningObjectives"`
	CustomizationNotes string   `json:"customizationNotes,omitempty"`
}

// ConversationMessage is a single role-tagged message in a conversation.
type ConversationMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChunkMetadata describes the provenance and structural type of a chunk.
type ChunkMetadata struct {
	Source     string `json:"source"`
	PageNumber int    `json:"pageNumber,omitempty"`
	Section    string `json:"section,omitempty"`
	Type       string `json:"type"` // policy, procedure, guideline, technical, general
}

// ContentChunk is one unit of ingested document text, immutable once indexed.
type ContentChunk struct {
	ID        string        `json:"id"`
	ContentID string        `json:"contentId"`
	Text      string        `json:"text"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ScoredChunk pairs a retrieved chunk with its similarity score in [0,1].
type ScoredChunk struct {
	Chunk ContentChunk
	Score float32
}

// RetrievedContext is the aggregate produced by unified context retrieval.
// OrganizationalContext is always non-nil; ModuleContext is nil when no
// module scope was requested.
type RetrievedContext struct {
	Chunks                []ScoredChunk
	OrganizationalContext *OrganizationalContext
	ModuleContext         *ModuleContext
	ConversationHistory   []ConversationMessage
}

// ContentAnalysis is the result of lexical pattern analysis over extracted
// document text. Each list is deduplicated, order of first occurrence.
type ContentAnalysis struct {
	Tools      []string `json:"tools"`
	Concepts   []string `json:"concepts"`
	Compliance []string `json:"compliance"`
}

// SimulationType selects which simulation flavor a module carries.
type SimulationType string

const (
	SimulationSoftwareInterface SimulationType = "software_interface"
	SimulationScenarioBranching SimulationType = "scenario_branching"
	SimulationAIRoleplay        SimulationType = "ai_roleplay"
)

// ModuleTemplate is a blueprint for a training module. Templates are static
// catalog data; generation reads them and never mutates them.
type ModuleTemplate struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Category           string         `json:"category"`
	Difficulty         string         `json:"difficulty"` // beginner, intermediate, advanced
	EstimatedDuration  int            `json:"estimatedDuration"` // minutes
	BloomLevels        []string       `json:"bloomLevels"`
	LearningObjectives []string       `json:"learningObjectives"`
	Prerequisites      []string       `json:"prerequisites,omitempty"`
	TargetAudience     []string       `json:"targetAudience"`
	Keywords           []string       `json:"keywords"`
	HasSimulation      bool           `json:"hasSimulation"`
	SimulationType     SimulationType `json:"simulationType,omitempty"`
}

// Customization records the per-organization choices baked into a generated
// module.
type Customization struct {
	OrganizationID    string   `json:"organizationId"`
	CustomTitle       string   `json:"customTitle,omitempty"`
	CustomDescription string   `json:"customDescription,omitempty"`
	IncludedTools     []string `json:"includedTools"`
	IncludedPolicies  []string `json:"includedPolicies"`
	Tone              string   `json:"tone"` // formal, casual, professional
}

// GeneratedLesson is one fully expanded lesson within a generated module.
type GeneratedLesson struct {
	Title             string `json:"title"`
	Order             int    `json:"order"`
	Content           string `json:"content"` // Markdown body
	Summary           string `json:"summary"`
	EstimatedDuration int    `json:"estimatedDuration"`
	BloomLevel        string `json:"bloomLevel"`
}

// AssessmentQuestion is one generated question. CorrectAnswer is normalized
// to a string regardless of how the model rendered it: the option index for
// multiple choice, "true"/"false" for true/false, and the expected text for
// short answer.
type AssessmentQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"` // multiple_choice, true_false, short_answer
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

// Answer is a correct-answer value that tolerates the loose typing of model
// output. Numbers and booleans unmarshal to their canonical string form.
type Answer string

// UnmarshalJSON accepts strings, numbers, and booleans.
func (a *Answer) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = Answer(v)
		return nil
	}
	if s == "true" || s == "false" {
		*a = Answer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a string, number, or boolean: %w", err)
	}
	*a = Answer(n.String())
	return nil
}

// Assessment groups the generated questions for a module.
type Assessment struct {
	Type      string               `json:"type"` // quiz, knowledge_check
	Questions []AssessmentQuestion `json:"questions"`
}

// BranchOption is one choice at a scenario decision point.
type BranchOption struct {
	Text         string `json:"text"`
	NextBranchID string `json:"nextBranchId,omitempty"`
	Outcome      string `json:"outcome"` // good, neutral, bad
	Feedback     string `json:"feedback"`
}

// ScenarioBranch is one decision point in a branching scenario script.
type ScenarioBranch struct {
	ID        string         `json:"id"`
	Situation string         `json:"situation"`
	Options   []BranchOption `json:"options"`
}

// RoleplayBrief is the character brief driving an AI roleplay simulation.
type RoleplayBrief struct {
	Scenario           string   `json:"scenario"`
	LearnerRole        string   `json:"learnerRole"`
	AIRole             string   `json:"aiRole"`
	AIPersonality      string   `json:"aiPersonality"`
	Objectives         []string `json:"objectives"`
	EvaluationCriteria []string `json:"evaluationCriteria"`
}

// StepFeedback pairs the messages shown for correct and incorrect actions.
type StepFeedback struct {
	Correct   string `json:"correct"`
	Incorrect string `json:"incorrect"`
}

// SimulationStep is one guided task step in a software-interface simulation.
type SimulationStep struct {
	ID             string       `json:"id"`
	Instruction    string       `json:"instruction"`
	ExpectedAction string       `json:"expectedAction"`
	Hints          []string     `json:"hints"`
	Feedback       StepFeedback `json:"feedback"`
}

// SimulationScript carries the type-specific payload of a simulation.
// Exactly one of Steps, Branches, or Roleplay is populated.
type SimulationScript struct {
	Introduction string           `json:"introduction"`
	Steps        []SimulationStep `json:"steps,omitempty"`
	Branches     []ScenarioBranch `json:"branches,omitempty"`
	Roleplay     *RoleplayBrief   `json:"roleplayContext,omitempty"`
}

// Simulation is the generated simulation attached to a module.
type Simulation struct {
	Type        SimulationType   `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Script      SimulationScript `json:"script"`
}

// GeneratedModule is the output of one generation run. Persisting the result
// is the caller's concern.
type GeneratedModule struct {
	Template      ModuleTemplate    `json:"template"`
	Customization Customization     `json:"customization"`
	Lessons       []GeneratedLesson `json:"lessons"`
	Assessments   []Assessment      `json:"assessments"`
	Simulation    *Simulation       `json:"simulation,omitempty"`
}
