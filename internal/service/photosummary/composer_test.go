package photosummary_test

import (
	"strings"
	"testing"

	"github.com/photorabbit/backend/internal/model/photo"
	"github.com/photorabbit/backend/internal/service/photosummary"
)

func TestComposeSingleSceneSummary(t *testing.T) {
	got := photosummary.Compose([]*photo.Analysis{
		{SceneSummary: "A dog running in a park"},
	})

	if !strings.HasPrefix(got, "I see a dog running in a park") {
		t.Fatalf("unexpected opening: %q", got)
	}
	if !strings.HasSuffix(got, "What do you want to make?") {
		t.Fatalf("missing invitation: %q", got)
	}
}

func TestComposeSingleWithDetail(t *testing.T) {
	got := photosummary.Compose([]*photo.Analysis{
		{SceneSummary: "A cat on a windowsill", NotableDetails: []string{"The red collar"}},
	})

	if !strings.Contains(got, "the red collar") {
		t.Fatalf("expected notable detail in output: %q", got)
	}
}

func TestComposeSingleSubjectFallback(t *testing.T) {
	got := photosummary.Compose([]*photo.Analysis{
		{SubjectType: "Rabbit", SubjectMood: "Curious"},
	})

	if !strings.Contains(got, "curious rabbit") {
		t.Fatalf("expected subject phrasing: %q", got)
	}
	if !strings.HasSuffix(got, "What do you want to make?") {
		t.Fatalf("missing invitation: %q", got)
	}
}

func TestComposeEmptyInput(t *testing.T) {
	for _, input := range [][]*photo.Analysis{nil, {}, {nil}, {nil, nil}} {
		got := photosummary.Compose(input)
		if got == "" {
			t.Fatal("fallback must not be empty")
		}
		if !strings.HasPrefix(got, "I've looked through your photos") {
			t.Fatalf("expected the fixed fallback line, got %q", got)
		}
	}
}

func TestComposeMultipleDistinctScenes(t *testing.T) {
	got := photosummary.Compose([]*photo.Analysis{
		{SceneSummary: "A dog at the beach"},
		{SceneSummary: "A dog asleep on the sofa"},
		{SceneSummary: "A dog catching a frisbee"},
		{SceneSummary: "A dog in the rain"},
	})

	if !strings.Contains(got, "4 photos") {
		t.Fatalf("expected total count: %q", got)
	}
	if !strings.Contains(got, "a dog at the beach, a dog asleep on the sofa, and a dog catching a frisbee") {
		t.Fatalf("expected a three-item natural list: %q", got)
	}
	if !strings.HasSuffix(got, "What do you want to make?") {
		t.Fatalf("missing invitation: %q", got)
	}
}

func TestComposeMultipleWithoutDistinctLabels(t *testing.T) {
	got := photosummary.Compose([]*photo.Analysis{
		{SceneSummary: "A dog"},
		{SceneSummary: "A dog"},
		{},
	})

	if !strings.Contains(got, "all 3 photos") {
		t.Fatalf("expected the been-through-all line: %q", got)
	}
}
