// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"reflect"
	"testing"
)

func TestScoreCandidates(t *testing.T) {
	viewer := TagWeights{"SciFi": 3, "Mystery": 3, "Horror": 0}

	tests := []struct {
		name       string
		relations  []TagRelation
		candidates []string
		want       []CandidateScore
	}{
		{
			name:       "no candidates yields empty slice",
			relations:  nil,
			candidates: nil,
			want:       []CandidateScore{},
		},
		{
			name: "matching tags accumulate viewer weights",
			relations: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b1", TagName: "Mystery"},
			},
			candidates: []string{"b1"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 6, MatchingTags: []string{"SciFi", "Mystery"}},
			},
		},
		{
			name: "zero-overlap candidate kept with raw 0",
			relations: []TagRelation{
				{BookID: "b1", TagName: "Romance"},
			},
			candidates: []string{"b1"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 0, MatchingTags: []string{}},
			},
		},
		{
			name: "zero-weight viewer tag does not match",
			relations: []TagRelation{
				{BookID: "b1", TagName: "Horror"},
				{BookID: "b1", TagName: "SciFi"},
			},
			candidates: []string{"b1"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 3, MatchingTags: []string{"SciFi"}},
			},
		},
		{
			name: "duplicate relation rows count once",
			relations: []TagRelation{
				{BookID: "b1", TagName: "SciFi"},
				{BookID: "b1", TagName: "SciFi"},
			},
			candidates: []string{"b1"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 3, MatchingTags: []string{"SciFi"}},
			},
		},
		{
			name: "candidate order preserved",
			relations: []TagRelation{
				{BookID: "b2", TagName: "SciFi"},
				{BookID: "b1", TagName: "Mystery"},
			},
			candidates: []string{"b1", "b2", "b3"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 3, MatchingTags: []string{"Mystery"}},
				{BookID: "b2", Raw: 3, MatchingTags: []string{"SciFi"}},
				{BookID: "b3", Raw: 0, MatchingTags: []string{}},
			},
		},
		{
			name: "matching tags keep first-seen relation order",
			relations: []TagRelation{
				{BookID: "b1", TagName: "Mystery"},
				{BookID: "b1", TagName: "SciFi"},
			},
			candidates: []string{"b1"},
			want: []CandidateScore{
				{BookID: "b1", Raw: 6, MatchingTags: []string{"Mystery", "SciFi"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreCandidates(viewer, tt.relations, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScoreCandidates = %+v, want %+v", got, tt.want)
			}
		})
	}
}
