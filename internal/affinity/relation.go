// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"strings"

	"github.com/goccy/go-json"
)

// Upstream catalog imports deliver a book's tags as loosely-shaped JSON: an
// array of tag objects, a single bare object when the book has exactly one
// tag, plain name strings, or objects nesting the tag one level deeper.
// Everything here exists to collapse that ambiguity into []TagRelation once,
// at the boundary, so scoring code never branches on shape.

// TagRow is one raw (book, tags) row as stored, before validation.
type TagRow struct {
	// BookID identifies the book the tags belong to.
	BookID string

	// Tags is the unparsed tags payload for the book.
	Tags json.RawMessage
}

// looseTag matches the tag object shapes observed in upstream payloads.
type looseTag struct {
	Name    string    `json:"name"`
	TagName string    `json:"tag_name"`
	Tag     *looseTag `json:"tag"`
}

// ParseTagRows converts raw rows into validated tag relations. Rows that
// cannot be resolved to a non-empty tag name are skipped; a malformed row
// never aborts the rest of the batch.
func ParseTagRows(rows []TagRow) []TagRelation {
	relations := make([]TagRelation, 0, len(rows))
	for _, row := range rows {
		if row.BookID == "" {
			continue
		}
		for _, name := range parseTagNames(row.Tags) {
			relations = append(relations, TagRelation{BookID: row.BookID, TagName: name})
		}
	}
	return relations
}

// ParseBookTags resolves a single book's raw tags payload to tag names.
// The result is deduplicated, preserving first-seen order.
func ParseBookTags(raw json.RawMessage) []string {
	return parseTagNames(raw)
}

// parseTagNames extracts tag names from a loose payload, deduplicated in
// first-seen order.
func parseTagNames(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	elements := splitElements(raw)

	var names []string
	seen := make(map[string]struct{}, len(elements))
	for _, el := range elements {
		name := resolveTagName(el)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// splitElements returns the payload's elements, treating a non-array payload
// as a single element.
func splitElements(raw json.RawMessage) []json.RawMessage {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return []json.RawMessage{raw}
	}
	return elements
}

// resolveTagName extracts the tag name from one element, or "" if the
// element is malformed.
func resolveTagName(el json.RawMessage) string {
	// Bare name string
	var s string
	if err := json.Unmarshal(el, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var tag looseTag
	if err := json.Unmarshal(el, &tag); err != nil {
		return ""
	}

	// Walk at most one nesting level; deeper nesting is malformed.
	if tag.Name == "" && tag.TagName == "" && tag.Tag != nil {
		tag = *tag.Tag
	}

	if tag.Name != "" {
		return strings.TrimSpace(tag.Name)
	}
	return strings.TrimSpace(tag.TagName)
}
