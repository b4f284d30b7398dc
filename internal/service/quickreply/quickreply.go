// Package quickreply maps the latest assistant question to a small set of
// tappable reply chips. Pure string matching, no I/O, no state.
package quickreply

import "strings"

// WriteMyOwn is the constant escape option closing every reply set.
const WriteMyOwn = "write my own story"

// wrapUpSignals mark the interviewer winding down; once it has stopped
// asking questions, chips are meaningless.
var wrapUpSignals = []string{
	"perfect",
	"that's all i need",
	"i have everything",
	"everything i need",
	"let's make",
	"i'm painting",
	"time to create",
	"start illustrating",
}

// topicGroup pairs trigger keywords with its canned replies. Groups are
// checked in order; the first match wins.
type topicGroup struct {
	keywords []string
	replies  []string
}

var topicGroups = []topicGroup{
	{ // humor
		keywords: []string{"funny", "funniest", "laugh", "silly", "goofy", "humor"},
		replies: []string{
			"chasing their own tail",
			"stealing snacks off the table",
			"the weird noises they make",
			WriteMyOwn,
		},
	},
	{ // loss / memorial
		keywords: []string{"passed away", "memorial", "remember them by", "no longer with", "rainbow bridge", "said goodbye"},
		replies: []string{
			"a celebration of their life",
			"the way they always greeted me",
			"our last trip together",
			WriteMyOwn,
		},
	},
	{ // origin story
		keywords: []string{"how did", "first meet", "adopt", "rescue", "come into your life", "where did you get"},
		replies: []string{
			"from a shelter",
			"a friend's litter",
			"they found us, really",
			WriteMyOwn,
		},
	},
	{ // adventurousness
		keywords: []string{"adventure", "adventurous", "explore", "outdoors", "travel", "hike"},
		replies: []string{
			"fearless explorer",
			"prefers the couch",
			"brave until a vacuum shows up",
			WriteMyOwn,
		},
	},
	{ // personality
		keywords: []string{"personality", "describe", "temperament", "character", "what are they like"},
		replies: []string{
			"gentle and patient",
			"full of mischief",
			"a little drama queen",
			WriteMyOwn,
		},
	},
	{ // daily routine
		keywords: []string{"typical day", "routine", "every morning", "daily", "wake up"},
		replies: []string{
			"naps, mostly",
			"morning zoomies",
			"supervising the kitchen",
			WriteMyOwn,
		},
	},
	{ // favorite photo
		keywords: []string{"photo", "picture", "shot", "snapshot"},
		replies: []string{
			"the sleepy one",
			"the action shot",
			"the one with the funny face",
			WriteMyOwn,
		},
	},
	{ // cherished memory
		keywords: []string{"memory", "favorite moment", "remember most", "special time"},
		replies: []string{
			"the day we brought them home",
			"a beach day to remember",
			"quiet evenings together",
			WriteMyOwn,
		},
	},
	{ // uniqueness
		keywords: []string{"unique", "special about", "one of a kind", "quirk", "different from"},
		replies: []string{
			"one ear always flops",
			"they talk back",
			"an uncanny sense of timing",
			WriteMyOwn,
		},
	},
	{ // bond / relationship
		keywords: []string{"bond", "relationship", "mean to you", "connection", "between you"},
		replies: []string{
			"my shadow, everywhere I go",
			"best friend, no contest",
			"family, plain and simple",
			WriteMyOwn,
		},
	},
	{ // naming
		keywords: []string{"name", "named", "call them", "why that name"},
		replies: []string{
			"named after a movie character",
			"it just suited them",
			"the kids picked it",
			WriteMyOwn,
		},
	},
}

var fallbackReplies = []string{
	"yes, exactly",
	"not really",
	"tell me more about that",
	WriteMyOwn,
}

// Suggest returns reply chips for the latest assistant message. Chips are
// only offered for open questions; wrap-up lines and statements get none.
// petName and petMood are accepted for interface stability but the choice is
// a function of text alone.
func Suggest(text, petName, petMood string) []string {
	_ = petName
	_ = petMood

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	lower := strings.ToLower(trimmed)
	for _, signal := range wrapUpSignals {
		if strings.Contains(lower, signal) {
			return nil
		}
	}

	if !strings.Contains(trimmed, "?") {
		return nil
	}

	for _, group := range topicGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return append([]string(nil), group.replies...)
			}
		}
	}

	return append([]string(nil), fallbackReplies...)
}
