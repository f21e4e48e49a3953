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
	"strings"

	"github.com/poiesic/traingen/core"
)

// Template categories.
const (
	CategoryLeadership         = "leadership"
	CategoryCompliance         = "compliance"
	CategoryTechnology         = "technology"
	CategorySoftSkills         = "soft_skills"
	CategoryOnboarding         = "onboarding"
	CategorySafety             = "safety"
	CategoryCustomerService    = "customer_service"
	CategorySales              = "sales"
	CategoryProjectManagement  = "project_management"
	CategoryDiversityInclusion = "diversity_inclusion"
)

// builtinTemplates is the curated catalog of training module templates.
var builtinTemplates = []core.ModuleTemplate{
	{
		ID:                "leadership-fundamentals",
		Title:             "Leadership Fundamentals",
		Description:       "Core leadership principles for emerging leaders. Covers vision-setting, team motivation, and decision-making frameworks.",
		Category:          CategoryLeadership,
		Difficulty:        "beginner",
		EstimatedDuration: 45,
		BloomLevels:       []string{"understand", "apply"},
		LearningObjectives: []string{
			"Define key leadership qualities and styles",
			"Apply situational leadership techniques",
			"Create a personal leadership development plan",
		},
		TargetAudience: []string{"New managers", "Team leads", "Aspiring leaders"},
		Keywords:       []string{"leadership", "management", "team building", "motivation"},
		HasSimulation:  true,
		SimulationType: core.SimulationScenarioBranching,
	},
	{
		ID:                "effective-feedback",
		Title:             "Giving and Receiving Feedback",
		Description:       "Master the art of constructive feedback using proven frameworks like SBI (Situation-Behavior-Impact).",
		Category:          CategoryLeadership,
		Difficulty:        "intermediate",
		EstimatedDuration: 30,
		BloomLevels:       []string{"understand", "apply", "evaluate"},
		LearningObjectives: []string{
			"Apply the SBI feedback model",
			"Deliver difficult feedback with empathy",
			"Receive feedback without defensiveness",
		},
		TargetAudience: []string{"Managers", "Team leads", "HR professionals"},
		Keywords:       []string{"feedback", "communication", "performance management"},
		HasSimulation:  true,
		SimulationType: core.SimulationAIRoleplay,
	},
	{
		ID:                "conflict-resolution",
		Title:             "Conflict Resolution for Managers",
		Description:       "Transform workplace conflicts into opportunities for growth. Learn mediation techniques and preventive strategies.",
		Category:          CategoryLeadership,
		Difficulty:        "advanced",
		EstimatedDuration: 50,
		BloomLevels:       []string{"analyze", "evaluate", "apply"},
		LearningObjectives: []string{
			"Identify conflict sources and escalation patterns",
			"Apply mediation techniques effectively",
			"Create team agreements that prevent conflicts",
		},
		TargetAudience: []string{"Managers", "HR professionals"},
		Keywords:       []string{"conflict", "mediation", "communication"},
		HasSimulation:  true,
		SimulationType: core.SimulationAIRoleplay,
	},
	{
		ID:                "hipaa-essentials",
		Title:             "HIPAA Essentials for Healthcare",
		Description:       "Comprehensive HIPAA training covering PHI protection, patient rights, and breach prevention. Meets annual training requirements.",
		Category:          CategoryCompliance,
		Difficulty:        "beginner",
		EstimatedDuration: 60,
		BloomLevels:       []string{"remember", "understand", "apply"},
		LearningObjectives: []string{
			"Identify what constitutes Protected Health Information (PHI)",
			"Apply the minimum necessary standard",
			"Report potential HIPAA violations correctly",
		},
		TargetAudience: []string{"Healthcare workers", "Administrative staff", "IT personnel"},
		Keywords:       []string{"HIPAA", "PHI", "healthcare", "privacy", "compliance"},
		HasSimulation:  true,
		SimulationType: core.SimulationScenarioBranching,
	},
	{
		ID:                "gdpr-fundamentals",
		Title:             "GDPR Data Protection",
		Description:       "Understanding EU data protection requirements. Covers data subject rights, lawful processing, and cross-border transfers.",
		Category:          CategoryCompliance,
		Difficulty:        "intermediate",
		EstimatedDuration: 45,
		BloomLevels:       []string{"remember", "understand", "apply"},
		LearningObjectives: []string{
			"Explain the eight data subject rights under GDPR",
			"Identify lawful bases for data processing",
			"Apply data minimization principles",
		},
		TargetAudience: []string{"All employees handling EU data", "IT staff", "Marketing teams"},
		Keywords:       []string{"GDPR", "data protection", "privacy", "EU", "compliance"},
	},
	{
		ID:                "information-security",
		Title:             "Information Security Awareness",
		Description:       "Protect organizational data from cyber threats. Covers phishing, password security, and social engineering.",
		Category:          CategoryCompliance,
		Difficulty:        "beginner",
		EstimatedDuration: 40,
		BloomLevels:       []string{"remember", "understand", "apply"},
		LearningObjectives: []string{
			"Identify phishing attempts and social engineering",
			"Create and manage strong passwords",
			"Report security incidents appropriately",
		},
		TargetAudience: []string{"All employees"},
		Keywords:       []string{"security", "cybersecurity", "phishing", "passwords"},
		HasSimulation:  true,
		SimulationType: core.SimulationSoftwareInterface,
	},
	{
		ID:                "anti-harassment",
		Title:             "Preventing Workplace Harassment",
		Description:       "Creating a respectful workplace free from harassment and discrimination. Includes bystander intervention training.",
		Category:          CategoryCompliance,
		Difficulty:        "beginner",
		EstimatedDuration: 45,
		BloomLevels:       []string{"remember", "understand", "apply"},
		LearningObjectives: []string{
			"Recognize forms of workplace harassment",
			"Understand reporting procedures",
			"Apply bystander intervention techniques",
		},
		TargetAudience: []string{"All employees"},
		Keywords:       []string{"harassment", "discrimination", "workplace", "respect"},
		HasSimulation:  true,
		SimulationType: core.SimulationScenarioBranching,
	},
	{
		ID:                "workplace-safety",
		Title:             "Workplace Safety Essentials",
		Description:       "Hazard identification, incident reporting, and emergency procedures for a safe work environment.",
		Category:          CategorySafety,
		Difficulty:        "beginner",
		EstimatedDuration: 30,
		BloomLevels:       []string{"remember", "understand", "apply"},
		LearningObjectives: []string{
			"Identify common workplace hazards",
			"Report incidents through proper channels",
			"Follow emergency response procedures",
		},
		TargetAudience: []string{"All employees"},
		Keywords:       []string{"safety", "hazards", "OSHA", "incidents"},
		HasSimulation:  true,
		SimulationType: core.SimulationScenarioBranching,
	},
	{
		ID:                "difficult-conversations",
		Title:             "Navigating Difficult Customer Conversations",
		Description:       "De-escalation techniques and empathetic communication for challenging customer interactions.",
		Category:          CategoryCustomerService,
		Difficulty:        "intermediate",
		EstimatedDuration: 35,
		BloomLevels:       []string{"understand", "apply", "evaluate"},
		LearningObjectives: []string{
			"Acknowledge customer frustration with empathy",
			"De-escalate tense conversations",
			"Offer solutions within policy constraints",
		},
		TargetAudience: []string{"Customer service representatives", "Support teams"},
		Keywords:       []string{"customer service", "de-escalation", "empathy", "communication"},
		HasSimulation:  true,
		SimulationType: core.SimulationAIRoleplay,
	},
	{
		ID:                "sales-discovery",
		Title:             "Consultative Sales Discovery",
		Description:       "Uncover customer needs through open-ended questioning and active listening before pitching solutions.",
		Category:          CategorySales,
		Difficulty:        "intermediate",
		EstimatedDuration: 40,
		BloomLevels:       []string{"understand", "apply", "analyze"},
		LearningObjectives: []string{
			"Build rapport quickly with prospects",
			"Ask open-ended discovery questions",
			"Qualify opportunities without being pushy",
		},
		TargetAudience: []string{"Sales representatives", "Account executives"},
		Keywords:       []string{"sales", "discovery", "qualifying", "listening"},
		HasSimulation:  true,
		SimulationType: core.SimulationAIRoleplay,
	},
	{
		ID:                "new-hire-orientation",
		Title:             "New Hire Orientation",
		Description:       "Company culture, policies, tools, and the first-week checklist for new team members.",
		Category:          CategoryOnboarding,
		Difficulty:        "beginner",
		EstimatedDuration: 90,
		BloomLevels:       []string{"remember", "understand"},
		LearningObjectives: []string{
			"Describe the company's mission and values",
			"Locate key policies and resources",
			"Set up required tools and accounts",
		},
		TargetAudience: []string{"New employees"},
		Keywords:       []string{"onboarding", "orientation", "culture", "policies"},
	},
	{
		ID:                "project-management-basics",
		Title:             "Project Management Basics",
		Description:       "Scoping, scheduling, and stakeholder communication for first-time project leads.",
		Category:          CategoryProjectManagement,
		Difficulty:        "beginner",
		EstimatedDuration: 55,
		BloomLevels:       []string{"understand", "apply"},
		LearningObjectives: []string{
			"Define project scope and success criteria",
			"Build a realistic project schedule",
			"Communicate status to stakeholders effectively",
		},
		TargetAudience: []string{"New project leads", "Individual contributors"},
		Keywords:       []string{"project management", "planning", "agile", "stakeholders"},
	},
	{
		ID:                "inclusive-workplace",
		Title:             "Building an Inclusive Workplace",
		Description:       "Recognizing bias, practicing allyship, and fostering belonging across diverse teams.",
		Category:          CategoryDiversityInclusion,
		Difficulty:        "intermediate",
		EstimatedDuration: 45,
		BloomLevels:       []string{"understand", "apply", "evaluate"},
		LearningObjectives: []string{
			"Recognize unconscious bias in everyday decisions",
			"Practice inclusive meeting behaviors",
			"Respond constructively to non-inclusive behavior",
		},
		TargetAudience: []string{"All employees", "People managers"},
		Keywords:       []string{"diversity", "inclusion", "bias", "belonging"},
		HasSimulation:  true,
		SimulationType: core.SimulationScenarioBranching,
	},
}

// Templates returns a copy of the built-in template catalog.
func Templates() []core.ModuleTemplate {
	out := make([]core.ModuleTemplate, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// TemplateByID looks up a built-in template.
func TemplateByID(id string) (core.ModuleTemplate, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return core.ModuleTemplate{}, false
}

// TemplatesByCategory returns the built-in templates in a category.
func TemplatesByCategory(category string) []core.ModuleTemplate {
	var out []core.ModuleTemplate
	for _, t := range builtinTemplates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// SearchTemplates matches the query against template titles, descriptions,
// and keywords, case-insensitively.
func SearchTemplates(query string) []core.ModuleTemplate {
	q := strings.ToLower(query)
	var out []core.ModuleTemplate
	for _, t := range builtinTemplates {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			keywordMatch(t.Keywords, q) {
			out = append(out, t)
		}
	}
	return out
}

func keywordMatch(keywords []string, q string) bool {
	for _, k := range keywords {
		if strings.Contains(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}

// TemplatesWithSimulation returns templates that carry a simulation.
func TemplatesWithSimulation() []core.ModuleTemplate {
	var out []core.ModuleTemplate
	for _, t := range builtinTemplates {
		if t.HasSimulation {
			out = append(out, t)
		}
	}
	return out
}
