// Package photosummary turns captioning output into the interview's opening
// line, spoken before the user has typed anything.
package photosummary

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/photorabbit/backend/internal/model/photo"
)

// invitation closes every summary that has something to say about the photos.
const invitation = "What do you want to make?"

// fallbackLine covers the no-usable-photos case and carries its own closing.
const fallbackLine = "I've looked through your photos and I'm ready when you are. Tell me what you'd like to create!"

const singleFallbackLine = "I've taken a good look at your photo. " + invitation

// Compose produces one opening sentence summarizing the photo analyses.
// Malformed (nil) records are ignored; with nothing usable left it falls
// back to a generic line rather than failing.
func Compose(analyses []*photo.Analysis) string {
	valid := make([]*photo.Analysis, 0, len(analyses))
	for _, a := range analyses {
		if a != nil {
			valid = append(valid, a)
		}
	}

	switch len(valid) {
	case 0:
		return fallbackLine
	case 1:
		return composeSingle(valid[0])
	default:
		return composeMany(valid)
	}
}

func composeSingle(a *photo.Analysis) string {
	if scene := strings.TrimSpace(a.SceneSummary); scene != "" {
		line := "I see " + lowerFirst(scene)
		if len(a.NotableDetails) > 0 {
			if detail := strings.TrimSpace(a.NotableDetails[0]); detail != "" {
				line += ", and I couldn't miss " + lowerFirst(detail)
			}
		}
		return line + ". " + invitation
	}

	if subject := strings.TrimSpace(a.SubjectType); subject != "" {
		if mood := strings.TrimSpace(a.SubjectMood); mood != "" {
			return fmt.Sprintf("I see a %s %s in your photo. %s", lowerFirst(mood), lowerFirst(subject), invitation)
		}
		return fmt.Sprintf("I see a %s in your photo. %s", lowerFirst(subject), invitation)
	}

	return singleFallbackLine
}

func composeMany(valid []*photo.Analysis) string {
	labels := make([]string, 0, 3)
	seen := make(map[string]bool)
	for _, a := range valid {
		if len(labels) == 3 {
			break
		}
		label := strings.TrimSpace(a.SceneSummary)
		if label == "" {
			label = strings.TrimSpace(a.SubjectType)
		}
		if label == "" {
			continue
		}
		label = lowerFirst(label)
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	if len(labels) < 2 {
		return fmt.Sprintf("I've been through all %d photos and I have a good feel for them. %s", len(valid), invitation)
	}

	return fmt.Sprintf("I went through your %d photos: %s. %s", len(valid), naturalJoin(labels), invitation)
}

// naturalJoin renders "a", "a and b", or "a, b, and c".
func naturalJoin(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
