package gateway

import (
	"fmt"
	"strings"
)

// wrapUpAfter is the user-turn budget: past this many user messages the
// interviewer stops asking and announces it has enough material.
const wrapUpAfter = 8

func buildSystemPrompt(req CompletionRequest) string {
	name := strings.TrimSpace(req.PetName)
	if name == "" {
		name = "the pet"
	}
	petType := strings.TrimSpace(req.PetType)
	if petType == "" {
		petType = "pet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a warm, curious interviewer for PhotoRabbit, gathering material for an illustrated storybook about %s, a %s.\n", name, petType)
	b.WriteString("Ask exactly one short, specific question per reply. React briefly to what the user just shared before asking.\n")
	b.WriteString("Favor concrete anecdotes: origin story, funny moments, daily routines, quirks, the bond with their person.\n")

	if req.UserMessageCount >= wrapUpAfter {
		fmt.Fprintf(&b, "The user has answered %d times. Stop asking questions now: thank them warmly, say you have everything you need, and tell them you are starting on the book.\n", req.UserMessageCount)
	} else {
		fmt.Fprintf(&b, "The user has answered %d of about %d times, so pace your remaining questions accordingly.\n", req.UserMessageCount, wrapUpAfter)
	}

	if len(req.PhotoCaptions) > 0 {
		b.WriteString("Captions of the uploaded photos:\n")
		for _, caption := range req.PhotoCaptions {
			fmt.Fprintf(&b, "- %s\n", caption)
		}
	}
	if brief := strings.TrimSpace(req.PhotoContextBrief); brief != "" {
		fmt.Fprintf(&b, "Photo context: %s\n", brief)
	}

	return b.String()
}
