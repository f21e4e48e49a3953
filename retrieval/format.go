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

package retrieval

import (
	"fmt"
	"strings"

	"github.com/poiesic/traingen/core"
)

// FormatForPrompt renders a retrieval bundle as labeled Markdown sections for
// injection into a generation prompt. Sections with no data are omitted; the
// section order is fixed.
func FormatForPrompt(rc *core.RetrievedContext) string {
	if rc == nil {
		return ""
	}
	var sections []string

	if org := rc.OrganizationalContext; org != nil {
		sections = append(sections, fmt.Sprintf(`## Organization Context
Organization: %s
Industry: %s
Tools Used: %s
Compliance Requirements: %s`,
			org.Name,
			orDefault(org.Industry, "Not specified"),
			orDefault(strings.Join(org.Tools, ", "), "None specified"),
			orDefault(strings.Join(org.Compliance, ", "), "None specified")))
	}

	if mod := rc.ModuleContext; mod != nil {
		sections = append(sections, fmt.Sprintf(`## Training Module Context
Title: %s
Category: %s
Learning Objectives:
%s`,
			mod.Title,
			orDefault(mod.Category, "General"),
			bulletList(mod.LearningObjectives)))
	}

	if len(rc.Chunks) > 0 {
		var b strings.Builder
		b.WriteString("## Relevant Organizational Content\n")
		for i, sc := range rc.Chunks {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "[Source %d: %s]\n%s", i+1, sc.Chunk.Metadata.Source, sc.Chunk.Text)
		}
		sections = append(sections, b.String())
	}

	if len(rc.ConversationHistory) > 0 {
		var b strings.Builder
		b.WriteString("## Previous Conversation\n")
		for i, msg := range rc.ConversationHistory {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s: %s", strings.ToUpper(string(msg.Role)), msg.Content)
		}
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n\n")
}

func serializeOrganizationalContext(octx *core.OrganizationalContext) string {
	return strings.TrimSpace(fmt.Sprintf(`
Organization: %s
Industry: %s
Size: %s
Tools Used: %s
Key Concepts: %s
Compliance: %s
Values: %s
Culture: %s
`,
		octx.Name,
		orDefault(octx.Industry, "Not specified"),
		orDefault(octx.Size, "Not specified"),
		strings.Join(octx.Tools, ", "),
		strings.Join(octx.Concepts, ", "),
		strings.Join(octx.Compliance, ", "),
		orDefault(strings.Join(octx.Values, ", "), "Not specified"),
		orDefault(octx.Culture, "Not specified")))
}

func serializeModuleContext(mctx *core.ModuleContext) string {
	return strings.TrimSpace(fmt.Sprintf(`
Module: %s
Description: %s
Category: %s
Target Audience: %s
Difficulty: %s
Learning Objectives:
%s
`,
		mctx.Title,
		orDefault(mctx.Description, "No description"),
		orDefault(mctx.Category, "General"),
		orDefault(mctx.TargetAudience, "All learners"),
		orDefault(mctx.Difficulty, "Intermediate"),
		bulletList(mctx.LearningObjectives)))
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
