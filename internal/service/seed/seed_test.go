package seed_test

import (
	"context"
	"testing"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/service/seed"
	"github.com/photorabbit/backend/internal/store"
)

func TestAutofillOrdering(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	project, err := st.Create(ctx, interview.Project{PetName: "Max", PetType: "dog"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	// Pre-existing messages must be cleared first.
	if _, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleUser, Content: "stale"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if err := seed.Autofill(ctx, st, project.ID); err != nil {
		t.Fatalf("Autofill err: %v", err)
	}

	got, err := st.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}

	want := seed.Transcript()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, msg := range got {
		if msg.Role != want[i][0] || msg.Content != want[i][1] {
			t.Fatalf("message %d mismatch: got {%s %q} want {%s %q}", i, msg.Role, msg.Content, want[i][0], want[i][1])
		}
		if i > 0 && msg.CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatalf("message %d out of order: %v before %v", i, msg.CreatedAt, got[i-1].CreatedAt)
		}
	}
}

func TestAutofillIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	project, err := st.Create(ctx, interview.Project{PetName: "Max", PetType: "dog"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if err := seed.Autofill(ctx, st, project.ID); err != nil {
		t.Fatalf("first Autofill err: %v", err)
	}
	if err := seed.Autofill(ctx, st, project.ID); err != nil {
		t.Fatalf("second Autofill err: %v", err)
	}

	got, err := st.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(got) != len(seed.Transcript()) {
		t.Fatalf("expected %d messages after re-seed, got %d", len(seed.Transcript()), len(got))
	}
}
