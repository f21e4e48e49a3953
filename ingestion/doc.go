// Package ingestion turns uploaded documents into indexed, analyzed content.
//
// The pipeline extracts text (PDF, DOCX, plain text, Markdown, CSV), splits
// it into chunks using one of three strategies, detects tool, concept, and
// compliance references via a pattern registry, indexes the chunks, and
// merges the analysis into the organization's profile. Batches are processed
// concurrently with per-document failure isolation.
package ingestion
