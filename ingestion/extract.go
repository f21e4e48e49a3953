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
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// ExtractionMetadata carries document-level properties discovered during
// extraction. Fields are zero-valued when the format does not expose them.
type ExtractionMetadata struct {
	Pages  int
	Title  string
	Author string
}

// ExtractionResult is the extracted plain text plus metadata.
type ExtractionResult struct {
	Text     string
	Metadata ExtractionMetadata
}

// ExtractText extracts plain text from a document, dispatching on the file
// extension. Supported: .pdf, .docx, .txt, .md, .csv.
func ExtractText(ctx context.Context, data []byte, fileName, mimeType string) (ExtractionResult, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	switch ext {
	case "pdf":
		return extractPDF(ctx, data)
	case "docx":
		return extractDocx(data)
	case "txt", "md", "csv":
		return ExtractionResult{Text: string(data)}, nil
	default:
		return ExtractionResult{}, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFileType, ext, mimeType)
	}
}

func extractPDF(ctx context.Context, data []byte) (ExtractionResult, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("parsing pdf: %w", err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) != "" {
			pages = append(pages, doc.PageContent)
		}
	}

	return ExtractionResult{
		Text:     strings.Join(pages, "\n\n"),
		Metadata: ExtractionMetadata{Pages: len(docs)},
	}, nil
}

// docx body XML. Only text runs and paragraph boundaries matter here;
// everything else in the WordprocessingML schema is skipped.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func extractDocx(data []byte) (ExtractionResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("opening docx archive: %w", err)
	}

	var body io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return ExtractionResult{}, fmt.Errorf("opening document body: %w", err)
			}
			break
		}
	}
	if body == nil {
		return ExtractionResult{}, fmt.Errorf("parsing docx: word/document.xml not found")
	}
	defer body.Close()

	var doc docxDocument
	if err := xml.NewDecoder(body).Decode(&doc); err != nil {
		return ExtractionResult{}, fmt.Errorf("parsing docx body: %w", err)
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, run := range p.Runs {
			line.WriteString(run.Text)
		}
		if strings.TrimSpace(line.String()) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line.String())
	}

	return ExtractionResult{Text: b.String()}, nil
}
