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
	"strings"

	"github.com/poiesic/traingen/core"
)

// SplitStrategy selects how ChunkText divides text.
type SplitStrategy string

const (
	// SplitParagraph accumulates paragraphs up to the size limit, carrying a
	// word tail from the previous chunk as overlap.
	SplitParagraph SplitStrategy = "paragraph"

	// SplitSentence accumulates whole sentences up to the size limit, no
	// overlap.
	SplitSentence SplitStrategy = "sentence"

	// SplitFixed cuts fixed-size windows with character overlap.
	SplitFixed SplitStrategy = "fixed"
)

// ChunkOptions controls text chunking. Zero values take the defaults.
type ChunkOptions struct {
	// MaxChunkSize is the target chunk length in characters. Default 1000.
	MaxChunkSize int

	// OverlapSize is the overlap carried between adjacent chunks, in
	// characters. Default 100. The paragraph strategy converts it to a word
	// count (one word per five characters).
	OverlapSize int

	// SplitOn selects the strategy. Default SplitParagraph.
	SplitOn SplitStrategy
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = 1000
	}
	if o.OverlapSize < 0 {
		o.OverlapSize = 0
	} else if o.OverlapSize == 0 {
		o.OverlapSize = 100
	}
	if o.SplitOn == "" {
		o.SplitOn = SplitParagraph
	}
	return o
}

var (
	paragraphBreak = regexp.MustCompile(`\n\n+`)
	sentenceEnd    = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// ChunkText splits text into chunks for embedding.
func ChunkText(text string, opts ChunkOptions) []string {
	opts = opts.withDefaults()

	switch opts.SplitOn {
	case SplitSentence:
		return chunkBySentence(text, opts.MaxChunkSize)
	case SplitFixed:
		return chunkFixed(text, opts.MaxChunkSize, opts.OverlapSize)
	default:
		return chunkByParagraph(text, opts.MaxChunkSize, opts.OverlapSize)
	}
}

func chunkByParagraph(text string, maxSize, overlap int) []string {
	var chunks []string
	var current strings.Builder

	for _, paragraph := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(paragraph) > maxSize {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)

			// carry a word tail as overlap into the next chunk
			words := strings.Split(chunk, " ")
			tail := overlap / 5
			if tail > len(words) {
				tail = len(words)
			}
			current.Reset()
			if tail > 0 {
				current.WriteString(strings.Join(words[len(words)-tail:], " "))
				current.WriteString("\n\n")
			}
		}
		current.WriteString(paragraph)
		current.WriteString("\n\n")
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func chunkBySentence(text string, maxSize int) []string {
	sentences := sentenceEnd.FindAllString(text, -1)
	if sentences == nil {
		sentences = []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > maxSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteByte(' ')
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// chunkFixed cuts raw windows without trimming: every byte of the input
// appears in exactly one chunk outside the overlap regions, so dropping
// each chunk's leading overlap and concatenating reconstructs the text.
func chunkFixed(text string, maxSize, overlap int) []string {
	step := maxSize - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(text); i += step {
		end := i + maxSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

// BuildChunks chunks extracted text and wraps each piece as a ContentChunk
// with sequential IDs derived from contentID.
func BuildChunks(contentID, text, source string, opts ChunkOptions) []core.ContentChunk {
	pieces := ChunkText(text, opts)
	chunks := make([]core.ContentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.ContentChunk{
			ID:        core.ChunkID(contentID, i),
			ContentID: contentID,
			Text:      piece,
			Metadata: core.ChunkMetadata{
				Source: source,
				Type:   "text",
			},
		}
	}
	return chunks
}
