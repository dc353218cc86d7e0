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

import "strings"

// DefaultChunkWords is the default maximum number of words per chunk.
const DefaultChunkWords = 500

// SplitWords splits text into chunks of at most maxWords whitespace-separated
// words. Words within a chunk are rejoined with single spaces, so the original
// whitespace layout is not preserved. Empty or whitespace-only text yields no
// chunks. A maxWords below 1 falls back to DefaultChunkWords.
func SplitWords(text string, maxWords int) []string {
	if maxWords < 1 {
		maxWords = DefaultChunkWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
