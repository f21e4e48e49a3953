package generation

import (
	"fmt"
	"strings"

	"github.com/poiesic/traingen/core"
)

func numberedList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

func buildLessonOutlinePrompt(template core.ModuleTemplate, contextBlock, tone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are creating training content for a module titled %q.\n\n", template.Title)
	if contextBlock != "" {
		b.WriteString(contextBlock + "\n\n")
	}
	b.WriteString("## Module Information\n")
	fmt.Fprintf(&b, "- Description: %s\n", template.Description)
	fmt.Fprintf(&b, "- Target Audience: %s\n", strings.Join(template.TargetAudience, ", "))
	b.WriteString("- Learning Objectives:\n")
	b.WriteString(numberedList(template.LearningObjectives) + "\n")
	fmt.Fprintf(&b, "- Bloom's Taxonomy Levels: %s\n", strings.Join(template.BloomLevels, ", "))
	fmt.Fprintf(&b, "- Estimated Total Duration: %d minutes\n", template.EstimatedDuration)
	fmt.Fprintf(&b, "- Tone: %s\n\n", tone)
	b.WriteString(`## Task
Generate 3-5 lesson outlines for this module. Each lesson should:
1. Have a clear, engaging title
2. Focus on one learning objective
3. Include practical examples using the organization's context
4. Be appropriately timed (total should equal estimated duration)

Return your response as a JSON array with this structure:
[
  {
    "title": "Lesson title",
    "order": 1,
    "summary": "Brief 1-2 sentence summary",
    "estimatedDuration": 15,
    "bloomLevel": "apply",
    "contentOutline": ["Key point 1", "Key point 2", "Activity description"]
  }
]

Only return the JSON array, no other text.`)
	return b.String()
}

func buildLessonExpansionPrompt(outline lessonOutline, contextBlock, tone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create detailed lesson content for: %q\n\n", outline.Title)
	if contextBlock != "" {
		b.WriteString(contextBlock + "\n\n")
	}
	b.WriteString("Content outline to expand:\n")
	b.WriteString(numberedList(outline.ContentOutline) + "\n\n")
	fmt.Fprintf(&b, "Tone: %s\n\n", tone)
	b.WriteString(`Write the lesson content in Markdown format:
- Use headers (##, ###) to organize sections
- Include practical examples relevant to the organization
- Add key takeaways or callout boxes where appropriate
- Make it engaging and actionable
- Keep paragraphs concise

Return only the Markdown content.`)
	return b.String()
}

func buildAssessmentPrompt(template core.ModuleTemplate, lessons []core.GeneratedLesson) string {
	summaries := make([]string, len(lessons))
	for i, lesson := range lessons {
		summaries[i] = fmt.Sprintf("- %s: %s", lesson.Title, lesson.Summary)
	}

	var b strings.Builder
	b.WriteString("Create assessment questions for a training module.\n\n")
	fmt.Fprintf(&b, "## Module: %s\n", template.Title)
	b.WriteString("## Learning Objectives:\n")
	b.WriteString(numberedList(template.LearningObjectives) + "\n\n")
	b.WriteString("## Lessons Covered:\n")
	b.WriteString(strings.Join(summaries, "\n") + "\n\n")
	b.WriteString(`## Task
Generate 5-8 assessment questions that test the learning objectives. Include:
- 3-4 multiple choice questions
- 1-2 true/false questions
- 1 short answer question

Return as JSON array:
[
  {
    "type": "multiple_choice",
    "question": "Question text?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0,
    "explanation": "Why this answer is correct",
    "points": 10
  },
  {
    "type": "true_false",
    "question": "Statement to evaluate",
    "correctAnswer": "true",
    "explanation": "Why this is true/false",
    "points": 5
  }
]

Only return the JSON array.`)
	return b.String()
}

func buildScenarioPrompt(template core.ModuleTemplate, contextBlock string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a branching scenario simulation for: %q\n\n", template.Title)
	if contextBlock != "" {
		b.WriteString(contextBlock + "\n\n")
	}
	b.WriteString("Learning Objectives:\n")
	b.WriteString(numberedList(template.LearningObjectives) + "\n\n")
	b.WriteString(`Create a realistic workplace scenario with 3-4 decision points. Each decision should have 2-3 options with different outcomes (good, neutral, bad).

Return as JSON:
{
  "introduction": "Scenario setup text",
  "branches": [
    {
      "id": "start",
      "situation": "Description of the situation",
      "options": [
        {
          "text": "Option 1",
          "nextBranchId": "branch2a",
          "outcome": "good",
          "feedback": "Why this was a good choice"
        }
      ]
    }
  ]
}

Only return the JSON object.`)
	return b.String()
}

func buildRoleplayPrompt(template core.ModuleTemplate, contextBlock string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create an AI roleplay simulation for: %q\n\n", template.Title)
	if contextBlock != "" {
		b.WriteString(contextBlock + "\n\n")
	}
	b.WriteString("Learning Objectives:\n")
	b.WriteString(numberedList(template.LearningObjectives) + "\n\n")
	b.WriteString(`Design a roleplay scenario where the learner practices skills with an AI character.

Return as JSON:
{
  "scenario": "Detailed scenario description",
  "learnerRole": "What role the learner plays",
  "aiRole": "What role the AI plays (e.g., 'difficult customer', 'new team member')",
  "aiPersonality": "How the AI should behave",
  "objectives": ["What learner should accomplish"],
  "evaluationCriteria": ["How success is measured"]
}

Only return the JSON object.`)
	return b.String()
}
