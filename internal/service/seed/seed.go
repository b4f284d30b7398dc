// Package seed populates a project's interview with a fixed demo transcript.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/store"
)

const batchSize = 20

// seedEpoch anchors synthetic timestamps: entry i is stamped epoch+i seconds,
// so read-back order matches the literal order regardless of insert latency.
var seedEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type entry struct {
	role    string
	content string
}

// Transcript is the literal demo interview about a dog named Max.
var transcript = []entry{
	{interview.RoleAssistant, "I see a golden retriever having the time of his life in these photos! What do you want to make?"},
	{interview.RoleUser, "A storybook about my dog Max for my daughter."},
	{interview.RoleAssistant, "A storybook for your daughter, how lovely! How did Max come into your life?"},
	{interview.RoleUser, "We adopted him from a shelter when he was two."},
	{interview.RoleAssistant, "A shelter pup with a second chance. What's the funniest thing Max has ever done?"},
	{interview.RoleUser, "He once stole a whole loaf of bread and hid it under my daughter's pillow."},
	{interview.RoleAssistant, "A bread bandit with a generous streak! How would you describe his personality?"},
	{interview.RoleUser, "Gentle, endlessly patient, and a little dramatic about baths."},
	{interview.RoleAssistant, "Gentle but bath-averse, noted. What does a typical day look like for Max?"},
	{interview.RoleUser, "Morning walk, napping till school pickup, then fetch until dinner."},
	{interview.RoleAssistant, "He has his schedule down. Which photo is your favorite?"},
	{interview.RoleUser, "The one where he's mid-air catching a frisbee at the beach."},
	{interview.RoleAssistant, "That frisbee shot is pure joy. What's a memory with Max you treasure most?"},
	{interview.RoleUser, "The day we brought him home he fell asleep in my daughter's lap in the car."},
	{interview.RoleAssistant, "That's the heart of the story right there. What makes Max unique?"},
	{interview.RoleUser, "One ear always flops the wrong way and he grumbles when he's happy."},
	{interview.RoleAssistant, "A floppy-eared grumbler, wonderful. What is the bond between Max and your daughter like?"},
	{interview.RoleUser, "He waits by the window every day until she's home. They're inseparable."},
	{interview.RoleAssistant, "Inseparable, window and all. Is there a story behind the name Max?"},
	{interview.RoleUser, "She named him after the dog in her favorite picture book."},
	{interview.RoleAssistant, "A picture-book name for a picture-book dog. Anything else I should know?"},
	{interview.RoleUser, "He's afraid of the vacuum but pretends he isn't."},
	{interview.RoleAssistant, "Brave in all the ways that count. Perfect, I have everything I need! Let's make your storybook."},
	{interview.RoleUser, "Can't wait to see it!"},
}

// Autofill replaces the project's transcript with the fixed demo interview,
// inserting in batches of 20.
func Autofill(ctx context.Context, messages store.MessageStore, projectID string) error {
	if err := messages.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("clear interview: %w", err)
	}

	msgs := make([]interview.Message, len(transcript))
	for i, e := range transcript {
		msgs[i] = interview.Message{
			ProjectID: projectID,
			Role:      e.role,
			Content:   e.content,
			CreatedAt: seedEpoch.Add(time.Duration(i) * time.Second),
		}
	}

	for start := 0; start < len(msgs); start += batchSize {
		end := start + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		if err := messages.AppendBatch(ctx, msgs[start:end]); err != nil {
			return fmt.Errorf("insert seed batch: %w", err)
		}
	}
	return nil
}

// Transcript returns the role/content pairs of the demo interview in order.
func Transcript() [][2]string {
	out := make([][2]string, len(transcript))
	for i, e := range transcript {
		out[i] = [2]string{e.role, e.content}
	}
	return out
}
