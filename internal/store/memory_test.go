package store_test

import (
	"context"
	"testing"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/model/photo"
	"github.com/photorabbit/backend/internal/store"
)

func newProject(t *testing.T, st *store.Memory) interview.Project {
	t.Helper()
	project, err := st.Create(context.Background(), interview.Project{PetName: "Max", PetType: "dog"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	return project
}

func TestMemoryAppendAndList(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	project := newProject(t, st)

	first, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleUser, Content: "hello"})
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and timestamp, got %+v", first)
	}

	if _, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleAssistant, Content: "hi there"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	msgs, err := st.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "hi there" {
		t.Fatalf("unexpected order: %+v", msgs)
	}
}

func TestMemoryAppendUnknownProject(t *testing.T) {
	st := store.NewMemory()
	if _, err := st.Append(context.Background(), interview.Message{ProjectID: "missing", Role: interview.RoleUser, Content: "x"}); err != store.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestMemoryDeleteByProject(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	project := newProject(t, st)

	if _, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if err := st.DeleteByProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteByProject err: %v", err)
	}

	msgs, err := st.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty transcript, got %d", len(msgs))
	}
}

func TestMemoryProjectDeleteCascades(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	project := newProject(t, st)

	if _, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if _, err := st.SaveAnalysis(ctx, photo.Analysis{ProjectID: project.ID, SceneSummary: "a dog"}); err != nil {
		t.Fatalf("SaveAnalysis err: %v", err)
	}

	if err := st.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := st.Get(ctx, project.ID); err != store.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := st.ListByProject(ctx, project.ID); err != store.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound for messages, got %v", err)
	}
	if _, err := st.ListAnalyses(ctx, project.ID); err != store.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound for analyses, got %v", err)
	}
}

func TestMemorySaveAndListAnalyses(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	project := newProject(t, st)

	saved, err := st.SaveAnalysis(ctx, photo.Analysis{
		ProjectID:      project.ID,
		SceneSummary:   "A dog running in a park",
		NotableDetails: []string{"a red collar"},
	})
	if err != nil {
		t.Fatalf("SaveAnalysis err: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected assigned analysis id")
	}

	analyses, err := st.ListAnalyses(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListAnalyses err: %v", err)
	}
	if len(analyses) != 1 || analyses[0].SceneSummary != "A dog running in a park" {
		t.Fatalf("unexpected analyses: %+v", analyses)
	}
}
