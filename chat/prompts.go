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

package chat

import "strings"

// Generation parameters per prompt kind. Answers run cool to stay close to
// the context; titles get a little freedom but very few tokens.
const (
	answerTemperature = 0.3
	answerMaxTokens   = 1000
	titleTemperature  = 0.5
	titleMaxTokens    = 20
)

const answerSystemPrompt = "You are a helpful internal documentation assistant. " +
	"Provide clear, accurate answers based on the context provided from company documents."

const titleSystemPrompt = "Generate a short, descriptive title (max 6 words) for a conversation " +
	"based on the first message. Return only the title."

// DefaultTitle is used when no title can be generated.
const DefaultTitle = "New Conversation"

// buildAnswerPrompt assembles the user prompt for answer generation from the
// retrieved passages and the question.
func buildAnswerPrompt(question string, passages []string) string {
	var b strings.Builder
	b.WriteString("Based on the following context from internal documents, answer the user's question. ")
	b.WriteString("If the context doesn't contain enough information to answer the question, say so clearly.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(passages, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a helpful, accurate answer based on the context provided.")
	return b.String()
}
