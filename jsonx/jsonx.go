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


// Package jsonx recovers structured JSON from model output. Responses often
// arrive wrapped in Markdown fences, preceded by prose, or with small
// formatting defects; these helpers extract and repair the JSON payload
// before unmarshaling.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNoArray indicates no JSON array could be located in the text.
	ErrNoArray = errors.New("jsonx: no JSON array found")

	// ErrNoObject indicates no JSON object could be located in the text.
	ErrNoObject = errors.New("jsonx: no JSON object found")
)

// StripFences removes a surrounding Markdown code fence, with or without a
// language tag. Text without a fence is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		first := strings.TrimSpace(s[:idx])
		if first == "" || isLanguageTag(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

// FirstArray returns the outermost JSON array substring, spanning from the
// first '[' to the last ']'.
func FirstArray(s string) (string, error) {
	s = StripFences(s)
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < start {
		return "", ErrNoArray
	}
	return s[start : end+1], nil
}

// FirstObject returns the outermost JSON object substring, spanning from the
// first '{' to the last '}'.
func FirstObject(s string) (string, error) {
	s = StripFences(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", ErrNoObject
	}
	return s[start : end+1], nil
}

// UnmarshalArray extracts the first JSON array from model output and
// unmarshals it into v. When plain unmarshaling fails, a key-repair pass is
// attempted before giving up.
func UnmarshalArray(s string, v any) error {
	payload, err := FirstArray(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		if repairErr := json.Unmarshal([]byte(RepairKeys(payload)), v); repairErr != nil {
			return err
		}
	}
	return nil
}

// UnmarshalObject extracts the first JSON object from model output and
// unmarshals it into v, with the same repair fallback as UnmarshalArray.
func UnmarshalObject(s string, v any) error {
	payload, err := FirstObject(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		if repairErr := json.Unmarshal([]byte(RepairKeys(payload)), v); repairErr != nil {
			return err
		}
	}
	return nil
}

// RepairKeys fixes object keys that lost their opening quote, a defect some
// models produce mid-response. Example: `, type":` becomes `, "type":`.
func RepairKeys(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// after { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			// key text present without an opening quote?
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// a closing quote followed by ':' confirms the missing open quote
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					continue
				}

				// not a broken key; copy what was skipped
				for j := keyStart; j < i; j++ {
					fixed = append(fixed, result[j])
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
