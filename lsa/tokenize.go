// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lsa

import (
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultStopWords are common English words carrying no topic.
var DefaultStopWords = []string{
	"a", "about", "after", "all", "an", "and", "are", "as", "at", "be", "been",
	"but", "by", "can", "do", "for", "from", "had", "has", "have", "he", "her",
	"his", "if", "in", "into", "is", "it", "its", "not", "of", "on", "or", "she",
	"so", "than", "that", "the", "their", "them", "then", "there", "these",
	"they", "this", "to", "was", "we", "were", "what", "when", "which", "who",
	"will", "with", "you",
}

// Tokenizer splits text into lower-cased words of letters and digits.
type Tokenizer struct {
	stopWords mapset.Set[string]
}

func NewTokenizer(stopWords []string) *Tokenizer {
	return &Tokenizer{stopWords: mapset.NewThreadUnsafeSet(stopWords...)}
}

// Tokenize drops stop words and words shorter than two runes.
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := words[:0]
	for _, word := range words {
		if len([]rune(word)) >= 2 && !t.stopWords.Contains(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
