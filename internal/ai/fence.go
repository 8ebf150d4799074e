package ai

import "strings"

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// StripCodeFence removes Markdown code fence markers (```json and ```) from an
// LLM response. Text without markers is returned unchanged.
func StripCodeFence(raw string) string {
	if !strings.Contains(raw, "```") {
		return raw
	}
	return fenceReplacer.Replace(raw)
}
