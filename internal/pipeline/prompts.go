package pipeline

import "fmt"

func researchPrompt(query, searchResults string) string {
	return fmt.Sprintf(`You are a research agent. Analyze the following search results and provide concise research notes.

USER QUERY:
%s

SEARCH RESULTS:
%s

Provide a concise summary of the key findings, trends, and relevant information from the search results.`, query, searchResults)
}

func analysisPrompt(query, researchNotes string) string {
	return fmt.Sprintf(`You are a data analysis agent.

USER QUERY:
%s

RESEARCH NOTES:
%s

Extract:
- key insights
- trends
- trade-offs
- implications

Be analytical, not verbose.`, query, researchNotes)
}

func reportPrompt(analysis string) string {
	return fmt.Sprintf(`Generate a JSON report with this schema:

title: string
summary: string
key_points: list of strings
limitations: list of strings

CONTENT:
%s`, analysis)
}
