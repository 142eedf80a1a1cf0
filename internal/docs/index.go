// Copyright 2026 The OASMCP Authors
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

// Package docs serves agent introspection requests over the immutable
// manifest: indexed lookup, listing, and full-text search.
package docs

import (
	"sort"
	"strings"

	"github.com/oasmcp/oasmcp/internal/manifest"
)

// hitRank orders match quality: name hits outrank summary hits, which
// outrank description hits.
type hitRank int

const (
	rankDescription hitRank = iota
	rankSummary
	rankName
)

type entryKind string

const (
	entryOperation entryKind = "function"
	entrySchema    entryKind = "schema"
	entryField     entryKind = "field"
)

// SearchResult is one ranked match.
type SearchResult struct {
	Kind entryKind
	Name string
	Rank int
}

// searchIndex is a case-insensitive inverted token index over operation
// and schema text, built once at manifest freeze.
type searchIndex struct {
	// postings maps a lowercased token to the best rank seen for each
	// (kind,name) it appears in.
	postings map[string]map[string]hitRank
}

var tokenSplit = func(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), tokenSplit)
}

func buildIndex(m *manifest.Manifest) *searchIndex {
	idx := &searchIndex{postings: map[string]map[string]hitRank{}}

	add := func(kind entryKind, name string, text string, rank hitRank) {
		key := string(kind) + ":" + name
		for _, tok := range tokenize(text) {
			if idx.postings[tok] == nil {
				idx.postings[tok] = map[string]hitRank{}
			}
			if cur, ok := idx.postings[tok][key]; !ok || rank > cur {
				idx.postings[tok][key] = rank
			}
		}
	}

	for i := range m.Operations {
		op := &m.Operations[i]
		add(entryOperation, op.ID, op.ID, rankName)
		add(entryOperation, op.ID, op.Summary, rankSummary)
		add(entryOperation, op.ID, op.Description, rankDescription)
	}
	for i := range m.Schemas {
		s := &m.Schemas[i]
		add(entrySchema, s.Name, s.Name, rankName)
		add(entrySchema, s.Name, s.Description, rankDescription)
		for _, f := range s.Fields {
			add(entryField, s.Name+"."+f.Name, f.Name, rankName)
			add(entryField, s.Name+"."+f.Name, f.Description, rankDescription)
		}
	}
	return idx
}

// search tokenizes query and returns the union of postings for each
// token, ranked (name > summary > description), tie-broken alphabetically.
func (idx *searchIndex) search(query string) []SearchResult {
	best := map[string]hitRank{}
	for _, tok := range tokenize(query) {
		for key, rank := range idx.postings[tok] {
			if cur, ok := best[key]; !ok || rank > cur {
				best[key] = rank
			}
		}
	}

	results := make([]SearchResult, 0, len(best))
	for key, rank := range best {
		kind, name, _ := strings.Cut(key, ":")
		results = append(results, SearchResult{Kind: entryKind(kind), Name: name, Rank: int(rank)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		return results[i].Name < results[j].Name
	})
	return results
}
