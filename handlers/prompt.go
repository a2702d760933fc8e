// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/models"
)

const advisorPreamble = `You are a helpful civic advisor for "How Does This Affect Me?", an app that helps voters understand how ballot measures impact them personally.`

const advisorGuidelines = `Guidelines:
- Be concise and direct: 2-4 sentences for simple questions, more for complex ones
- Always reference specific dollar amounts when possible (e.g. "$1,200/year")
- Cite measure codes (e.g. "Prop 33") when discussing specific measures
- Personalize answers based on the user's profile (housing status, income, household size)
- If asked about something outside the ballot, politely redirect to ballot-related topics
- Use plain language and avoid jargon`

// chatContext is everything the system prompt is assembled from. Empty
// sections are left out.
type chatContext struct {
	Profile   string
	Ballot    *models.Ballot
	Measures  []models.Measure
	MeasureID string
	Memory    string
	Related   []memory.Match
}

func buildSystemPrompt(c chatContext) string {
	sections := []string{advisorPreamble}

	if c.Profile != "" {
		sections = append(sections, c.Profile)
	}
	if c.Ballot != nil && len(c.Measures) > 0 {
		sections = append(sections, measuresContext(*c.Ballot, c.Measures))
	}
	if c.MeasureID != "" {
		sections = append(sections, fmt.Sprintf("The user is specifically asking about measure ID %q. Focus your answer on this measure.", c.MeasureID))
	}
	if c.Memory != "" {
		sections = append(sections, "User memory (accumulated context from past interactions):\n"+c.Memory)
	}
	if related := relatedContext(c.Related); related != "" {
		sections = append(sections, related)
	}

	sections = append(sections, advisorGuidelines)
	return strings.Join(sections, "\n\n")
}

func measuresContext(b models.Ballot, measures []models.Measure) string {
	year := b.ElectionDate
	if len(year) >= 4 {
		year = year[:4]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ballot Measures on this ballot (%s, %s, %s):", b.State, b.County, year)
	for i, m := range measures {
		fmt.Fprintf(&sb, "\n\n%d. %s: %s (%s)\n   %s", i+1, m.Code, m.Title, categoryLabel(m.Category), m.Summary)
	}
	return sb.String()
}

func relatedContext(matches []memory.Match) string {
	var lines []string
	for _, m := range matches {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		lines = append(lines, "- "+strings.ReplaceAll(text, "\n", "\n  "))
	}
	if len(lines) == 0 {
		return ""
	}
	return "Related past questions and answers:\n" + strings.Join(lines, "\n")
}

// categoryLabel turns "criminal_justice" into "Criminal Justice"
func categoryLabel(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
