// Package generation orchestrates training module creation: it retrieves
// organizational context, drives the LLM service to produce lesson outlines,
// expands them concurrently into full content, generates assessments, and
// builds one of three simulation types. Every model-output parse has a typed
// fallback so a generation run always yields a usable module.
package generation
