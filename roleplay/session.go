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

package roleplay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/traingen/ai"
	"github.com/poiesic/traingen/jsonx"
	"github.com/poiesic/traingen/llm"
)

const (
	defaultMaxTurns     = 10
	defaultPassingScore = 70

	chatTemperature       = 0.8
	evaluationTemperature = 0.2
	evaluationMaxTokens   = 1000
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleLearner Role = "learner"
	RoleAI      Role = "ai"
	RoleSystem  Role = "system"
)

// Message is one entry in the session transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EvaluationCriterion is one weighted rubric dimension.
type EvaluationCriterion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int    `json:"weight"` // percent
	GoodExample string `json:"goodExample,omitempty"`
	PoorExample string `json:"poorExample,omitempty"`
}

// Config defines the character, scenario, and rubric for a session.
type Config struct {
	Scenario           string                `json:"scenario"`
	LearnerRole        string                `json:"learnerRole"`
	AIRole             string                `json:"aiRole"`
	AIName             string                `json:"aiName"`
	AIPersonality      string                `json:"aiPersonality"`
	AIBackground       string                `json:"aiBackground"`
	Objectives         []string              `json:"objectives"`
	EvaluationCriteria []EvaluationCriterion `json:"evaluationCriteria"`
	MaxTurns           int                   `json:"maxTurns"`
	PassingScore       int                   `json:"passingScore"`

	// ContextPrompt carries organization-specific context into the
	// character's system prompt.
	ContextPrompt string `json:"contextPrompt,omitempty"`
}

// CriterionScore is the per-criterion result of an evaluation.
type CriterionScore struct {
	CriterionID string `json:"criterionId"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
}

// Evaluation is the rubric assessment of a completed session.
type Evaluation struct {
	OverallScore        int              `json:"overallScore"`
	Passed              bool             `json:"passed"`
	CriteriaScores      []CriterionScore `json:"criteriaScores"`
	Summary             string           `json:"summary"`
	Strengths           []string         `json:"strengths"`
	AreasForImprovement []string         `json:"areasForImprovement"`
}

// Chatter is the slice of the LLM service a session needs. *llm.Service
// satisfies it.
type Chatter interface {
	StreamChat(ctx context.Context, task llm.TaskType, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error)
	GenerateText(ctx context.Context, task llm.TaskType, prompt string, opts ...ai.CallOption) (string, error)
}

// Session is a stateful roleplay conversation. All methods are safe for
// concurrent use, but a single learner drives one session at a time in
// practice.
type Session struct {
	config Config
	llm    Chatter
	logger *slog.Logger

	mu         sync.Mutex
	messages   []Message
	turns      int
	complete   bool
	evaluation *Evaluation

	started time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets a custom logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger.With("component", "roleplay")
		}
	}
}

// NewSession starts a roleplay session. The transcript opens with the
// scenario briefing shown to the learner.
func NewSession(chatter Chatter, config Config, opts ...SessionOption) (*Session, error) {
	if chatter == nil {
		return nil, ErrChatterRequired
	}
	if config.Scenario == "" || config.AIRole == "" {
		return nil, fmt.Errorf("%w: scenario and aiRole are required", ErrInvalidConfig)
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = defaultMaxTurns
	}
	if config.PassingScore <= 0 {
		config.PassingScore = defaultPassingScore
	}

	s := &Session{
		config:  config,
		llm:     chatter,
		logger:  slog.Default().With("component", "roleplay"),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.messages = []Message{{
		ID:        "intro",
		Role:      RoleSystem,
		Content:   s.buildIntroMessage(),
		Timestamp: s.started,
	}}
	return s, nil
}

func (s *Session) buildIntroMessage() string {
	aiName := s.config.AIName
	if aiName == "" {
		aiName = "AI Character"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.config.Scenario)
	fmt.Fprintf(&b, "**Your Role:** %s\n\n", s.config.LearnerRole)
	fmt.Fprintf(&b, "**You're speaking with:** %s — %s\n\n", aiName, s.config.AIRole)
	b.WriteString("**Your objectives:**\n")
	for i, obj := range s.config.Objectives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, obj)
	}
	b.WriteString("\n---\n\n*When you're ready, start the conversation.*")
	return b.String()
}

// Transcript returns a copy of the session messages.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Turns reports the number of completed learner/AI exchanges.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// Complete reports whether the session has ended.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Evaluation returns the stored evaluation, or nil before End.
func (s *Session) Evaluation() *Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluation
}

// Duration reports elapsed session time.
func (s *Session) Duration() time.Duration {
	return time.Since(s.started)
}

// SendStream records the learner's message and streams the character's
// reply. The reply is appended to the transcript once the stream finishes;
// the session auto-completes when MaxTurns is reached.
func (s *Session) SendStream(ctx context.Context, text string) (<-chan ai.StreamEvent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.complete {
		s.mu.Unlock()
		return nil, ErrSessionComplete
	}
	s.messages = append(s.messages, Message{
		ID:        "learner-" + uuid.NewString(),
		Role:      RoleLearner,
		Content:   text,
		Timestamp: time.Now(),
	})
	chatMessages := s.chatMessagesLocked()
	s.mu.Unlock()

	stream, err := s.llm.StreamChat(ctx, llm.TaskRoleplay, chatMessages,
		ai.WithTemperature(chatTemperature))
	if err != nil {
		return nil, err
	}

	out := make(chan ai.StreamEvent)
	go func() {
		defer close(out)
		var reply strings.Builder
		failed := false
		for event := range stream {
			if event.Err != nil {
				failed = true
			}
			reply.WriteString(event.Content)
			out <- event
		}
		if failed {
			return
		}

		s.mu.Lock()
		s.messages = append(s.messages, Message{
			ID:        "ai-" + uuid.NewString(),
			Role:      RoleAI,
			Content:   reply.String(),
			Timestamp: time.Now(),
		})
		s.turns++
		if s.turns >= s.config.MaxTurns {
			s.complete = true
		}
		s.mu.Unlock()
	}()
	return out, nil
}

// Send records the learner's message and returns the character's full
// reply.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	stream, err := s.SendStream(ctx, text)
	if err != nil {
		return "", err
	}

	var reply strings.Builder
	for event := range stream {
		if event.Err != nil {
			return "", event.Err
		}
		reply.WriteString(event.Content)
	}
	return reply.String(), nil
}

// chatMessagesLocked maps the transcript to provider messages: the system
// prompt leads, learner turns become user messages, character turns become
// assistant messages. Caller holds s.mu.
func (s *Session) chatMessagesLocked() []ai.Message {
	out := []ai.Message{ai.SystemMessage(s.buildSystemPrompt())}
	for _, msg := range s.messages {
		switch msg.Role {
		case RoleLearner:
			out = append(out, ai.UserMessage(msg.Content))
		case RoleAI:
			out = append(out, ai.AssistantMessage(msg.Content))
		}
	}
	return out
}

func (s *Session) buildSystemPrompt() string {
	aiName := s.config.AIName
	if aiName == "" {
		aiName = "the AI character"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.\n\n", aiName, s.config.AIRole)
	fmt.Fprintf(&b, "## Your Personality\n%s\n\n", s.config.AIPersonality)
	fmt.Fprintf(&b, "## Your Background\n%s\n\n", s.config.AIBackground)
	fmt.Fprintf(&b, "## Current Scenario\n%s\n\n", s.config.Scenario)
	if s.config.ContextPrompt != "" {
		fmt.Fprintf(&b, "## Organization Context\n%s\n\n", s.config.ContextPrompt)
	}
	b.WriteString(`## Behavior Guidelines
- Stay completely in character
- Respond naturally and realistically
- React authentically to what the learner says
- Don't break character to give training tips
- Keep responses concise (2-4 sentences)
- If the learner does something well, acknowledge it naturally
- If they make mistakes, react as your character would

The learner needs to demonstrate:
`)
	for i, obj := range s.config.Objectives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, obj)
	}
	return strings.TrimRight(b.String(), "\n")
}

// End marks the session complete and evaluates the conversation against
// the rubric. Evaluation never fails hard: if the grading call or its
// parse fails, a neutral passing result is returned so a model outage
// cannot block a learner from finishing.
func (s *Session) End(ctx context.Context) *Evaluation {
	s.mu.Lock()
	s.complete = true
	transcript := make([]Message, len(s.messages))
	copy(transcript, s.messages)
	s.mu.Unlock()

	evaluation := s.evaluate(ctx, transcript)

	s.mu.Lock()
	s.evaluation = evaluation
	s.mu.Unlock()
	return evaluation
}

func (s *Session) evaluate(ctx context.Context, transcript []Message) *Evaluation {
	prompt := s.buildEvaluationPrompt(transcript)

	response, err := s.llm.GenerateText(ctx, llm.TaskGrading, prompt,
		ai.WithTemperature(evaluationTemperature), ai.WithMaxTokens(evaluationMaxTokens))
	if err != nil {
		s.logger.Warn("evaluation call failed, using neutral result", "err", err)
		return neutralEvaluation()
	}

	var parsed Evaluation
	if err := jsonx.UnmarshalObject(response, &parsed); err != nil {
		s.logger.Warn("evaluation response unparseable, using neutral result", "err", err)
		return neutralEvaluation()
	}

	parsed.Passed = parsed.OverallScore >= s.config.PassingScore
	if parsed.CriteriaScores == nil {
		parsed.CriteriaScores = []CriterionScore{}
	}
	if parsed.Summary == "" {
		parsed.Summary = "Evaluation completed."
	}
	if parsed.Strengths == nil {
		parsed.Strengths = []string{}
	}
	if parsed.AreasForImprovement == nil {
		parsed.AreasForImprovement = []string{}
	}
	return &parsed
}

func neutralEvaluation() *Evaluation {
	return &Evaluation{
		OverallScore:        70,
		Passed:              true,
		CriteriaScores:      []CriterionScore{},
		Summary:             "You completed the roleplay exercise. Review the learning objectives for self-assessment.",
		Strengths:           []string{"Participated in the full exercise"},
		AreasForImprovement: []string{"Continue practicing these skills"},
	}
}

func (s *Session) buildEvaluationPrompt(transcript []Message) string {
	aiName := s.config.AIName
	if aiName == "" {
		aiName = "AI"
	}

	var lines []string
	for _, msg := range transcript {
		switch msg.Role {
		case RoleLearner:
			lines = append(lines, "LEARNER: "+msg.Content)
		case RoleAI:
			lines = append(lines, aiName+": "+msg.Content)
		}
	}

	var b strings.Builder
	b.WriteString("Evaluate this training roleplay conversation.\n\n")
	fmt.Fprintf(&b, "## Scenario\n%s\n\n", s.config.Scenario)
	fmt.Fprintf(&b, "## Learner's Role\n%s\n\n", s.config.LearnerRole)
	b.WriteString("## Learning Objectives\n")
	for i, obj := range s.config.Objectives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, obj)
	}
	b.WriteString("\n## Evaluation Criteria\n")
	for i, c := range s.config.EvaluationCriteria {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n%s\nWeight: %d%%\n", c.Name, c.Description, c.Weight)
	}
	b.WriteString("\n## Conversation Transcript\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString(`

## Evaluation Task
Score each criterion 0-100 and provide specific feedback. Return JSON:

{
  "overallScore": <weighted average>,
  "criteriaScores": [
    {"criterionId": "<id>", "score": <0-100>, "feedback": "<specific feedback>"}
  ],
  "summary": "<2-3 sentence overall assessment>",
  "strengths": ["<specific strength 1>", "<specific strength 2>"],
  "areasForImprovement": ["<specific improvement 1>", "<specific improvement 2>"]
}`)
	return b.String()
}
