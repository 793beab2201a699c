// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestParseTagRows(t *testing.T) {
	tests := []struct {
		name string
		rows []TagRow
		want []TagRelation
	}{
		{
			name: "array of tag objects",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`[{"name":"SciFi"},{"name":"Mystery"}]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b1", TagName: "Mystery"},
			},
		},
		{
			name: "single bare object instead of array",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`{"name":"SciFi"}`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
			},
		},
		{
			name: "plain name strings",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`["SciFi","Mystery"]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b1", TagName: "Mystery"},
			},
		},
		{
			name: "tag_name field variant",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`[{"tag_name":"Horror"}]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "Horror"},
			},
		},
		{
			name: "one level of nesting",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`[{"tag":{"name":"Fantasy"}}]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "Fantasy"},
			},
		},
		{
			name: "malformed elements skipped without aborting",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`[{"name":"SciFi"},42,{"other":true}]`)},
				{BookID: "b2", Tags: json.RawMessage(`not json`)},
				{BookID: "b3", Tags: json.RawMessage(`[{"name":"Horror"}]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b3", TagName: "Horror"},
			},
		},
		{
			name: "duplicates removed preserving first-seen order",
			rows: []TagRow{
				{BookID: "b1", Tags: json.RawMessage(`[{"name":"SciFi"},{"name":"Mystery"},{"name":"SciFi"}]`)},
			},
			want: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b1", TagName: "Mystery"},
			},
		},
		{
			name: "empty book id skipped",
			rows: []TagRow{
				{BookID: "", Tags: json.RawMessage(`[{"name":"SciFi"}]`)},
			},
			want: []TagRelation{},
		},
		{
			name: "empty payload contributes nothing",
			rows: []TagRow{
				{BookID: "b1", Tags: nil},
			},
			want: []TagRelation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTagRows(tt.rows)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTagRows = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBookTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `[{"name":"SciFi"},{"name":"Mystery"}]`, []string{"SciFi", "Mystery"}},
		{"single object", `{"name":"SciFi"}`, []string{"SciFi"}},
		{"bare string", `"SciFi"`, []string{"SciFi"}},
		{"whitespace trimmed", `[{"name":"  SciFi "}]`, []string{"SciFi"}},
		{"empty name dropped", `[{"name":""}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBookTags(json.RawMessage(tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBookTags = %v, want %v", got, tt.want)
			}
		})
	}
}
