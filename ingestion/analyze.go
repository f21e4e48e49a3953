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

package ingestion

import (
	"regexp"
	"sync"

	"github.com/poiesic/traingen/core"
)

// pattern pairs a detection regexp with the canonical label it reports.
type pattern struct {
	re    *regexp.Regexp
	label string
}

// Registry holds the detection patterns used by Analyze. The built-in
// catalogs cover common enterprise tools, workplace concepts, and compliance
// frameworks; organizations can register additional patterns at runtime.
type Registry struct {
	mu         sync.RWMutex
	tools      []pattern
	concepts   []pattern
	compliance []pattern
}

// NewRegistry returns a registry preloaded with the built-in catalogs.
func NewRegistry() *Registry {
	r := &Registry{}

	for _, p := range [][2]string{
		{`(?i)\bepic\s*(ehr|emr)?\b`, "Epic EHR"},
		{`(?i)\bcerner\b`, "Cerner"},
		{`(?i)\bsalesforce\b`, "Salesforce"},
		{`(?i)\bjira\b`, "Jira"},
		{`(?i)\bconfluence\b`, "Confluence"},
		{`(?i)\bslack\b`, "Slack"},
		{`(?i)\bmicrosoft\s*teams\b`, "Microsoft Teams"},
		{`(?i)\bworkday\b`, "Workday"},
		{`(?i)\bsap\b`, "SAP"},
		{`(?i)\boracle\b`, "Oracle"},
		{`(?i)\bzendesk\b`, "Zendesk"},
		{`(?i)\bhubspot\b`, "HubSpot"},
		{`(?i)\bgithub\b`, "GitHub"},
		{`(?i)\bgitlab\b`, "GitLab"},
		{`(?i)\bazure\s*(devops)?\b`, "Azure"},
		{`(?i)\baws\b`, "AWS"},
		{`(?i)\bgoogle\s*(workspace|cloud)\b`, "Google"},
	} {
		r.RegisterTool(p[0], p[1])
	}

	for _, p := range [][2]string{
		{`(?i)\bphi\b`, "PHI"},
		{`(?i)\bpii\b`, "PII"},
		{`(?i)\behr\b`, "EHR"},
		{`(?i)\bemr\b`, "EMR"},
		{`(?i)\bagile\b`, "Agile"},
		{`(?i)\bscrum\b`, "Scrum"},
		{`(?i)\bkanban\b`, "Kanban"},
		{`(?i)\bsprint\b`, "Sprint"},
		{`(?i)\bdevops\b`, "DevOps"},
		{`(?i)\bci[\s/]*cd\b`, "CI/CD"},
		{`(?i)\bdata\s*breach\b`, "Data Breach"},
		{`(?i)\bincident\s*response\b`, "Incident Response"},
		{`(?i)\brisk\s*assessment\b`, "Risk Assessment"},
		{`(?i)\bonboarding\b`, "Onboarding"},
	} {
		r.RegisterConcept(p[0], p[1])
	}

	for _, p := range [][2]string{
		{`(?i)\bhipaa\b`, "HIPAA"},
		{`(?i)\bgdpr\b`, "GDPR"},
		{`(?i)\bsoc\s*2\b`, "SOC 2"},
		{`(?i)\bpci[\s-]*dss\b`, "PCI DSS"},
		{`(?i)\bferpa\b`, "FERPA"},
		{`(?i)\bccpa\b`, "CCPA"},
		{`(?i)\biso\s*27001\b`, "ISO 27001"},
		{`(?i)\bnist\b`, "NIST"},
		{`(?i)\baml\b`, "AML"},
		{`(?i)\bkyc\b`, "KYC"},
	} {
		r.RegisterCompliance(p[0], p[1])
	}

	return r
}

// RegisterTool adds a tool detection pattern.
func (r *Registry) RegisterTool(expr, label string) error {
	return r.register(&r.tools, expr, label)
}

// RegisterConcept adds a concept detection pattern.
func (r *Registry) RegisterConcept(expr, label string) error {
	return r.register(&r.concepts, expr, label)
}

// RegisterCompliance adds a compliance detection pattern.
func (r *Registry) RegisterCompliance(expr, label string) error {
	return r.register(&r.compliance, expr, label)
}

func (r *Registry) register(target *[]pattern, expr, label string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	r.mu.Lock()
	*target = append(*target, pattern{re: re, label: label})
	r.mu.Unlock()
	return nil
}

// Analyze scans text against every registered pattern. Labels are
// deduplicated and appear in registration order.
func (r *Registry) Analyze(text string) core.ContentAnalysis {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return core.ContentAnalysis{
		Tools:      scan(r.tools, text),
		Concepts:   scan(r.concepts, text),
		Compliance: scan(r.compliance, text),
	}
}

func scan(patterns []pattern, text string) []string {
	seen := make(map[string]bool)
	labels := []string{}
	for _, p := range patterns {
		if seen[p.label] || !p.re.MatchString(text) {
			continue
		}
		seen[p.label] = true
		labels = append(labels, p.label)
	}
	return labels
}
