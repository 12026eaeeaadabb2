package llm

import (
	"encoding/json"
	"fmt"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

const (
	tagPromptMarker        = "suggest 3-5 relevant, concise tags"
	flashcardPromptMarker  = "generate 3-5 high-quality flashcards"
	connectionPromptMarker = "Identify which candidate nodes are semantically related"
	candidatesHeader       = "Candidate Nodes:\n"
)

func buildTagPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following text and %s (single words or short phrases).
Return ONLY a valid JSON array of strings.
Do not include markdown formatting.

Text:
%s
`, tagPromptMarker, content)
}

func buildFlashcardPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following text and %s (Question and Answer pairs).
Return ONLY a valid JSON array of objects with "question" and "answer" keys.
Do not include markdown formatting.

Text:
%s
`, flashcardPromptMarker, content)
}

type candidateSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

func buildConnectionPrompt(target domain.Node, candidates []domain.Node) string {
	summaries := make([]candidateSummary, 0, len(candidates))
	for _, c := range candidates {
		excerpt := []rune(c.Body)
		if len(excerpt) > maxExcerpt {
			excerpt = excerpt[:maxExcerpt]
		}
		summaries = append(summaries, candidateSummary{ID: c.ID, Title: c.Title, Excerpt: string(excerpt)})
	}
	candidatesJSON, _ := json.MarshalIndent(summaries, "", "  ")

	return fmt.Sprintf(`Analyze the "Target Node" and the list of "Candidate Nodes".
%s to the target node.
Return a JSON array of objects with the following structure:
{
  "to": "candidate_node_id",
  "label": "related" | "prerequisite" | "part-of",
  "reason": "Short explanation of the connection"
}

Only include strong connections. If none, return an empty array.
Do not include markdown formatting.

Target Node:
Title: %s
Content: %s

%s%s`, connectionPromptMarker, target.Title, target.Body, candidatesHeader, candidatesJSON)
}
