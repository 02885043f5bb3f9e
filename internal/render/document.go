// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render converts generated report text plus numeric test data into
// Word and PDF artifacts with embedded charts. Each requested format is
// rendered independently from the same document model, so both artifacts
// carry the same text and the same chart data.
package render

import (
	"strings"
	"unicode"
)

// BlockKind classifies a parsed line of generated text.
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockParagraph  BlockKind = "paragraph"
	BlockBullet     BlockKind = "bullet"
	BlockNumbered   BlockKind = "numbered"
)

// Block is one element of the document model.
type Block struct {
	Kind BlockKind
	Text string
}

// Document is the parsed structure of a generated report.
type Document struct {
	Title  string
	Blocks []Block
}

// bulletMarkers are the list markers the authored corpus uses.
const bulletMarkers = "•▸★✓→-*"

// ParseDocument segments generated text into a document model. The heading
// grammar matches both the authored corpus (ALL-CAPS headings, "Title Case:"
// subheadings) and Markdown output from the generation service.
func ParseDocument(text string) *Document {
	doc := &Document{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// Horizontal rules and signature separators carry no content.
		if isSeparator(line) {
			continue
		}

		block := classifyLine(line)

		// The first heading is the document title.
		if block.Kind == BlockHeading && doc.Title == "" && len(doc.Blocks) == 0 {
			doc.Title = block.Text
			continue
		}
		doc.Blocks = append(doc.Blocks, block)
	}
	return doc
}

func classifyLine(line string) Block {
	if strings.HasPrefix(line, "#") {
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		text := strings.TrimSpace(line[level:])
		if level <= 2 {
			return Block{Kind: BlockHeading, Text: text}
		}
		return Block{Kind: BlockSubheading, Text: text}
	}

	if isAllCaps(line) {
		return Block{Kind: BlockHeading, Text: strings.TrimSuffix(line, ":")}
	}

	if r := []rune(line); strings.ContainsRune(bulletMarkers, r[0]) && len(r) > 1 && unicode.IsSpace(r[1]) {
		return Block{Kind: BlockBullet, Text: strings.TrimSpace(string(r[1:]))}
	}

	if text, ok := numberedItem(line); ok {
		return Block{Kind: BlockNumbered, Text: text}
	}

	if strings.HasSuffix(line, ":") && len(line) <= 60 && unicode.IsUpper([]rune(line)[0]) {
		return Block{Kind: BlockSubheading, Text: line}
	}

	return Block{Kind: BlockParagraph, Text: line}
}

// isAllCaps reports whether a line is an ALL-CAPS heading: at least three
// letters, none lowercase.
func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// numberedItem matches "1. text", "2) text", "3: text" list items.
func numberedItem(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return "", false
	}
	if line[i] != '.' && line[i] != ')' && line[i] != ':' {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

// isSeparator matches visual separator lines such as "----" or "════".
func isSeparator(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		switch r {
		case '-', '_', '=', '━', '═':
		default:
			return false
		}
	}
	return true
}
