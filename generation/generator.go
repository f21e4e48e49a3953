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

package generation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/traingen/ai"
	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/jsonx"
	"github.com/poiesic/traingen/llm"
	"github.com/poiesic/traingen/retrieval"
)

// Retrieval parameters for generation runs; favor precision over recall.
const (
	retrievalMaxChunks    = 10
	retrievalMinRelevance = 0.6
)

// TextGenerator is the slice of the LLM service the generator needs.
// *llm.Service satisfies it.
type TextGenerator interface {
	GenerateText(ctx context.Context, task llm.TaskType, prompt string, opts ...ai.CallOption) (string, error)
}

// ContextRetriever provides the retrieval bundle grounding generated
// content. *retrieval.Manager satisfies it.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, q retrieval.Query) (*core.RetrievedContext, error)
}

// Generator runs the module generation pipeline.
type Generator struct {
	llm       TextGenerator
	retriever ContextRetriever
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithPoolSize sets the worker pool size for concurrent lesson expansion.
func WithPoolSize(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			size = 1
		}
		if g.pool != nil {
			g.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		g.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger != nil {
			g.logger = logger.With("component", "generation")
		}
		return nil
	}
}

// NewGenerator creates a module generator.
func NewGenerator(textGen TextGenerator, retriever ContextRetriever, opts ...Option) (*Generator, error) {
	if textGen == nil {
		return nil, ErrGeneratorRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		llm:       textGen,
		retriever: retriever,
		pool:      pool,
		logger:    slog.Default().With("component", "generation"),
	}
	for _, opt := range opts {
		if optErr := opt(g); optErr != nil {
			g.Release()
			return nil, optErr
		}
	}
	return g, nil
}

// Release releases the worker pool.
func (g *Generator) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}

// GenerateOptions customizes one generation run.
type GenerateOptions struct {
	CustomTitle       string
	CustomDescription string

	// Tone is formal, casual, or professional. Default professional.
	Tone string
}

// GenerateModule produces a complete training module from a template,
// grounded in the organization's retrieved context.
func (g *Generator) GenerateModule(ctx context.Context, template core.ModuleTemplate, organizationID string, opts GenerateOptions) (*core.GeneratedModule, error) {
	if err := core.ValidateTemplate(&template); err != nil {
		return nil, err
	}
	if organizationID == "" {
		return nil, core.ErrEmptyOrganizationID
	}
	if opts.Tone == "" {
		opts.Tone = "professional"
	}

	rc, err := g.retriever.RetrieveContext(ctx, retrieval.Query{
		Text:           template.Title + " " + strings.Join(template.Keywords, " "),
		OrganizationID: organizationID,
		MaxChunks:      retrievalMaxChunks,
		MinRelevance:   retrievalMinRelevance,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	formatted := retrieval.FormatForPrompt(rc)

	lessons := g.generateLessons(ctx, template, formatted, opts.Tone)
	assessments := g.generateAssessments(ctx, template, lessons)

	var simulation *core.Simulation
	if template.HasSimulation && template.SimulationType != "" {
		simulation = g.generateSimulation(ctx, template, formatted)
	}

	var tools []string
	if rc.OrganizationalContext != nil {
		tools = rc.OrganizationalContext.Tools
	}

	return &core.GeneratedModule{
		Template: template,
		Customization: core.Customization{
			OrganizationID:    organizationID,
			CustomTitle:       opts.CustomTitle,
			CustomDescription: opts.CustomDescription,
			IncludedTools:     tools,
			IncludedPolicies:  []string{},
			Tone:              opts.Tone,
		},
		Lessons:     lessons,
		Assessments: assessments,
		Simulation:  simulation,
	}, nil
}

// lessonOutline is the shape the outline prompt asks the model for.
type lessonOutline struct {
	Title             string   `json:"title"`
	Order             int      `json:"order"`
	Summary           string   `json:"summary"`
	EstimatedDuration int      `json:"estimatedDuration"`
	BloomLevel        string   `json:"bloomLevel"`
	ContentOutline    []string `json:"contentOutline"`
}

func (g *Generator) generateLessons(ctx context.Context, template core.ModuleTemplate, contextBlock, tone string) []core.GeneratedLesson {
	prompt := buildLessonOutlinePrompt(template, contextBlock, tone)

	response, err := g.llm.GenerateText(ctx, llm.TaskContentGeneration, prompt,
		ai.WithTemperature(0.7), ai.WithMaxTokens(2000))
	if err != nil {
		g.logger.Warn("lesson outline generation failed, using fallback lesson",
			"template", template.ID, "err", err)
		return fallbackLessons(template)
	}

	var outlines []lessonOutline
	if err := jsonx.UnmarshalArray(response, &outlines); err != nil || len(outlines) == 0 {
		g.logger.Warn("lesson outline response unparseable, using fallback lesson",
			"template", template.ID, "err", err)
		return fallbackLessons(template)
	}

	lessons := make([]core.GeneratedLesson, len(outlines))
	var wg sync.WaitGroup
	for i, outline := range outlines {
		i, outline := i, outline
		wg.Add(1)
		submitErr := g.pool.Submit(func() {
			defer wg.Done()
			lessons[i] = core.GeneratedLesson{
				Title:             outline.Title,
				Order:             outline.Order,
				Content:           g.expandLesson(ctx, outline, contextBlock, tone),
				Summary:           outline.Summary,
				EstimatedDuration: outline.EstimatedDuration,
				BloomLevel:        outline.BloomLevel,
			}
		})
		if submitErr != nil {
			lessons[i] = core.GeneratedLesson{
				Title:             outline.Title,
				Order:             outline.Order,
				Content:           outlineAsContent(outline),
				Summary:           outline.Summary,
				EstimatedDuration: outline.EstimatedDuration,
				BloomLevel:        outline.BloomLevel,
			}
			wg.Done()
		}
	}
	wg.Wait()

	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons
}

func (g *Generator) expandLesson(ctx context.Context, outline lessonOutline, contextBlock, tone string) string {
	prompt := buildLessonExpansionPrompt(outline, contextBlock, tone)

	content, err := g.llm.GenerateText(ctx, llm.TaskContentGeneration, prompt,
		ai.WithTemperature(0.7), ai.WithMaxTokens(1500))
	if err != nil || strings.TrimSpace(content) == "" {
		g.logger.Warn("lesson expansion failed, using outline as content",
			"lesson", outline.Title, "err", err)
		return outlineAsContent(outline)
	}
	return content
}

func fallbackLessons(template core.ModuleTemplate) []core.GeneratedLesson {
	bloomLevel := ""
	if len(template.BloomLevels) > 0 {
		bloomLevel = template.BloomLevels[0]
	}
	return []core.GeneratedLesson{{
		Title:             "Introduction to " + template.Title,
		Order:             1,
		Content:           "# " + template.Title + "\n\n" + template.Description,
		Summary:           template.Description,
		EstimatedDuration: template.EstimatedDuration,
		BloomLevel:        bloomLevel,
	}}
}

func outlineAsContent(outline lessonOutline) string {
	var b strings.Builder
	b.WriteString("## " + outline.Title + "\n\n")
	if outline.Summary != "" {
		b.WriteString(outline.Summary + "\n\n")
	}
	for _, point := range outline.ContentOutline {
		b.WriteString("- " + point + "\n")
	}
	return strings.TrimSpace(b.String())
}

func (g *Generator) generateAssessments(ctx context.Context, template core.ModuleTemplate, lessons []core.GeneratedLesson) []core.Assessment {
	prompt := buildAssessmentPrompt(template, lessons)

	response, err := g.llm.GenerateText(ctx, llm.TaskAssessmentGeneration, prompt,
		ai.WithTemperature(0.5), ai.WithMaxTokens(1500))
	if err != nil {
		g.logger.Warn("assessment generation failed", "template", template.ID, "err", err)
		return []core.Assessment{}
	}

	var questions []core.AssessmentQuestion
	if err := jsonx.UnmarshalArray(response, &questions); err != nil {
		g.logger.Warn("assessment response unparseable", "template", template.ID, "err", err)
		return []core.Assessment{}
	}

	for i := range questions {
		questions[i].ID = fmt.Sprintf("q-%d", i+1)
	}
	return []core.Assessment{{Type: "quiz", Questions: questions}}
}

func (g *Generator) generateSimulation(ctx context.Context, template core.ModuleTemplate, contextBlock string) *core.Simulation {
	switch template.SimulationType {
	case core.SimulationScenarioBranching:
		return g.generateScenarioSimulation(ctx, template, contextBlock)
	case core.SimulationAIRoleplay:
		return g.generateRoleplaySimulation(ctx, template, contextBlock)
	default:
		return softwareSimulationSkeleton(template)
	}
}

func (g *Generator) generateScenarioSimulation(ctx context.Context, template core.ModuleTemplate, contextBlock string) *core.Simulation {
	prompt := buildScenarioPrompt(template, contextBlock)

	sim := &core.Simulation{
		Type:        core.SimulationScenarioBranching,
		Title:       template.Title + " Scenario",
		Description: "Practice making decisions in realistic scenarios",
	}

	response, err := g.llm.GenerateText(ctx, llm.TaskSimulationGeneration, prompt,
		ai.WithTemperature(0.8), ai.WithMaxTokens(2000))
	if err == nil {
		var script struct {
			Introduction string                `json:"introduction"`
			Branches     []core.ScenarioBranch `json:"branches"`
		}
		if parseErr := jsonx.UnmarshalObject(response, &script); parseErr == nil {
			sim.Script = core.SimulationScript{
				Introduction: script.Introduction,
				Branches:     script.Branches,
			}
			return sim
		}
		err = fmt.Errorf("parsing scenario response")
	}

	g.logger.Warn("scenario generation failed, using skeleton", "template", template.ID, "err", err)
	sim.Description = "Practice making decisions"
	sim.Script = core.SimulationScript{
		Introduction: "Welcome to this interactive scenario.",
		Branches:     []core.ScenarioBranch{},
	}
	return sim
}

func (g *Generator) generateRoleplaySimulation(ctx context.Context, template core.ModuleTemplate, contextBlock string) *core.Simulation {
	prompt := buildRoleplayPrompt(template, contextBlock)

	response, err := g.llm.GenerateText(ctx, llm.TaskSimulationGeneration, prompt,
		ai.WithTemperature(0.8), ai.WithMaxTokens(1000))
	if err == nil {
		var brief core.RoleplayBrief
		if parseErr := jsonx.UnmarshalObject(response, &brief); parseErr == nil && brief.Scenario != "" {
			return &core.Simulation{
				Type:        core.SimulationAIRoleplay,
				Title:       template.Title + " Practice Conversation",
				Description: brief.Scenario,
				Script: core.SimulationScript{
					Introduction: "You will practice " + strings.ToLower(template.Title) + " by interacting with an AI character.",
					Roleplay:     &brief,
				},
			}
		}
		err = fmt.Errorf("parsing roleplay response")
	}

	g.logger.Warn("roleplay generation failed, using skeleton", "template", template.ID, "err", err)
	return &core.Simulation{
		Type:        core.SimulationAIRoleplay,
		Title:       template.Title + " Practice",
		Description: "Practice through conversation",
		Script: core.SimulationScript{
			Introduction: "Practice your skills in this roleplay scenario.",
			Roleplay: &core.RoleplayBrief{
				Scenario:           template.Description,
				LearnerRole:        "Professional",
				AIRole:             "Colleague",
				AIPersonality:      "Professional and helpful",
				Objectives:         template.LearningObjectives,
				EvaluationCriteria: []string{},
			},
		},
	}
}

// softwareSimulationSkeleton builds the static practice-environment shell;
// screen-level configuration is authored separately.
func softwareSimulationSkeleton(template core.ModuleTemplate) *core.Simulation {
	return &core.Simulation{
		Type:        core.SimulationSoftwareInterface,
		Title:       template.Title + " Practice Environment",
		Description: "Practice using the software in a safe environment",
		Script: core.SimulationScript{
			Introduction: "Welcome to the " + template.Title + " practice environment.",
			Steps: []core.SimulationStep{{
				ID:             "step-1",
				Instruction:    "Complete the first task as instructed.",
				ExpectedAction: "complete_task_1",
				Hints:          []string{"Look for the relevant button", "Check the menu options"},
				Feedback: core.StepFeedback{
					Correct:   "Great job! You completed the task correctly.",
					Incorrect: "Not quite. Try again or use a hint.",
				},
			}},
		},
	}
}
