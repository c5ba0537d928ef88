package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// h2GroupSize is how many H2 sections are grouped per chunk when a
// document has no H1 headings. Bigger chunks give the reference
// evaluator more context than fine-grained splitting would.
const h2GroupSize = 2

var (
	h1Pattern = regexp.MustCompile(`(?m)^# `)
	h2Pattern = regexp.MustCompile(`(?m)^## `)
)

// ChunkMarkdown splits a markdown document into knowledge sections.
//
// The primary strategy splits on H1 headings, producing one chunk per
// chapter with all of its subsections included. When a document has no
// H1 headings at all, H2 sections are grouped h2GroupSize at a time so
// chunks stay contextual rather than fragmentary.
//
// Section IDs are derived from the source name: "<stem>_chapter_<n>" for
// H1 chunks, "<stem>_group_<n>" for grouped H2 chunks. The H1 (or first
// H2) heading becomes the section's directory description.
func ChunkMarkdown(source, content string) ([]Section, error) {
	stem := sectionPrefix(source)

	sections := chunkByH1(stem, content)
	if len(sections) == 0 {
		sections = chunkByH2Groups(stem, content)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("knowledge: no headed sections found in %q", source)
	}
	return sections, nil
}

// ChunkFile reads a markdown file and chunks it. The file's base name
// (without extension) becomes the section ID prefix.
func ChunkFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %q: %w", path, err)
	}
	return ChunkMarkdown(filepath.Base(path), string(data))
}

// sectionPrefix normalizes a source name into a section ID prefix.
func sectionPrefix(source string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	stem = strings.ReplaceAll(stem, " ", "_")
	stem = strings.ReplaceAll(stem, "-", "_")
	return stem
}

func chunkByH1(stem, content string) []Section {
	parts := h1Pattern.Split(content, -1)

	var sections []Section
	for idx, part := range parts {
		// parts[0] is whatever precedes the first H1 — usually a title
		// or preamble, not a chapter of its own.
		if idx == 0 || strings.TrimSpace(part) == "" {
			continue
		}

		heading, body := splitHeading(part)
		sections = append(sections, Section{
			ID:          fmt.Sprintf("%s_chapter_%d", stem, idx),
			Description: heading,
			Content:     strings.TrimSpace("# " + heading + "\n" + body),
			Position:    len(sections),
		})
	}
	return sections
}

func chunkByH2Groups(stem, content string) []Section {
	parts := h2Pattern.Split(content, -1)
	if len(parts) < 2 {
		return nil
	}

	var sections []Section
	var groupBodies []string
	var groupTitles []string

	flush := func() {
		if len(groupBodies) == 0 {
			return
		}
		sections = append(sections, Section{
			ID:          fmt.Sprintf("%s_group_%d", stem, len(sections)+1),
			Description: groupDescription(groupTitles),
			Content:     strings.TrimSpace(strings.Join(groupBodies, "\n\n")),
			Position:    len(sections),
		})
		groupBodies = nil
		groupTitles = nil
	}

	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "" {
			continue
		}
		heading, body := splitHeading(part)
		groupBodies = append(groupBodies, "## "+heading+"\n"+body)
		groupTitles = append(groupTitles, heading)
		if len(groupBodies) >= h2GroupSize {
			flush()
		}
	}
	flush()

	return sections
}

// splitHeading separates the first line (the heading text) from the rest
// of a section body.
func splitHeading(part string) (heading, body string) {
	heading, body, found := strings.Cut(part, "\n")
	if !found {
		return strings.TrimSpace(part), ""
	}
	return strings.TrimSpace(heading), body
}

// groupDescription combines H2 titles into a single directory description.
func groupDescription(titles []string) string {
	switch len(titles) {
	case 0:
		return "Untitled section"
	case 1:
		return titles[0]
	case 2:
		return titles[0] + " and " + titles[1]
	default:
		return titles[0] + " and others"
	}
}
