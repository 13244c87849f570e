// Package jsontext normalizes JSON-demanding prompts and model output
// shared by every provider implementation.
package jsontext

import (
	"regexp"
	"strings"

	"github.com/davidbz/porco/internal/domain"
)

// Instruction is appended to the final message of every GenerateJSON call.
const Instruction = "Respond with valid JSON only. Do not include any explanatory text, " +
	"markdown formatting, or code fences around the JSON."

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// AppendInstruction returns a copy of messages with the JSON-only
// instruction appended to the content of the final message. An empty
// sequence gains a single user message carrying the instruction.
func AppendInstruction(messages []domain.ChatMessage) []domain.ChatMessage {
	if len(messages) == 0 {
		return []domain.ChatMessage{{Role: domain.RoleUser, Content: Instruction}}
	}

	out := make([]domain.ChatMessage, len(messages))
	copy(out, messages)

	last := &out[len(out)-1]
	last.Content = last.Content + "\n\n" + Instruction

	return out
}

// Clean strips markdown code fences and surrounding whitespace from raw
// model output so it can be parsed as JSON.
func Clean(content string) string {
	content = strings.TrimSpace(content)

	if matches := fencePattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
