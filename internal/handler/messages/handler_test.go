package messages_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/photorabbit/backend/internal/handler/messages"
	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/service/quickreply"
	"github.com/photorabbit/backend/internal/service/seed"
	"github.com/photorabbit/backend/internal/store"
)

func newRouter(st store.Store, upstreamURL string) http.Handler {
	r := chi.NewRouter()
	h := messages.New(st, upstreamURL, http.DefaultClient, nil, nil)
	h.RegisterRoutes(r)
	return r
}

func seedProject(t *testing.T, st *store.Memory) interview.Project {
	t.Helper()
	project, err := st.Create(context.Background(), interview.Project{PetName: "Max", PetType: "dog"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	return project
}

// upstreamStub speaks the completion endpoint's SSE wire format.
func upstreamStub(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

// readFrames decodes every data frame from an SSE response body.
func readFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var frames []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestTurnStreamsAndPersists(t *testing.T) {
	st := store.NewMemory()
	project := seedProject(t, st)

	upstream := upstreamStub(t, []string{"Max sounds ", "wonderful!"})
	defer upstream.Close()

	router := newRouter(st, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/messages",
		strings.NewReader(`{"text":"He loves the beach"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected sse content type, got %q", ct)
	}

	frames := readFrames(t, rec.Body.String())
	if len(frames) != 3 {
		t.Fatalf("expected 2 deltas + done, got %d frames: %v", len(frames), frames)
	}
	if frames[0]["content"] != "Max sounds " || frames[1]["content"] != "wonderful!" {
		t.Fatalf("unexpected deltas: %v", frames)
	}
	if frames[2]["event"] != "done" {
		t.Fatalf("expected done frame, got %v", frames[2])
	}

	msgs, err := st.ListByProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + assistant persisted, got %d", len(msgs))
	}
	if msgs[0].Role != interview.RoleUser || msgs[0].Content != "He loves the beach" {
		t.Fatalf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != interview.RoleAssistant || msgs[1].Content != "Max sounds wonderful!" {
		t.Fatalf("unexpected assistant message: %+v", msgs[1])
	}
}

func TestTurnRejectsEmptyText(t *testing.T) {
	st := store.NewMemory()
	project := seedProject(t, st)
	router := newRouter(st, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/messages",
		strings.NewReader(`{"text":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTurnUpstreamErrorStatuses(t *testing.T) {
	cases := []struct {
		name       string
		upstream   int
		wantStatus int
	}{
		{name: "rate limited", upstream: http.StatusTooManyRequests, wantStatus: http.StatusTooManyRequests},
		{name: "quota exhausted", upstream: http.StatusPaymentRequired, wantStatus: http.StatusPaymentRequired},
		{name: "upstream broken", upstream: http.StatusInternalServerError, wantStatus: http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemory()
			project := seedProject(t, st)

			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.upstream)
			}))
			defer upstream.Close()

			router := newRouter(st, upstream.URL)
			req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/messages",
				strings.NewReader(`{"text":"hello"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}

			// The user message is saved before the upstream call, so it survives.
			msgs, err := st.ListByProject(context.Background(), project.ID)
			if err != nil {
				t.Fatalf("ListByProject err: %v", err)
			}
			if len(msgs) != 1 || msgs[0].Role != interview.RoleUser {
				t.Fatalf("expected only the user message persisted, got %+v", msgs)
			}
		})
	}
}

func TestTurnUnknownProject(t *testing.T) {
	router := newRouter(store.NewMemory(), "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/projects/missing/messages",
		strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListAndClear(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	project := seedProject(t, st)
	router := newRouter(st, "http://127.0.0.1:0")

	if _, err := st.Append(ctx, interview.Message{ProjectID: project.ID, Role: interview.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/"+project.ID+"/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs []interview.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("unexpected list body: %+v", msgs)
	}

	req = httptest.NewRequest(http.MethodDelete, "/projects/"+project.ID+"/messages", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", rec.Code)
	}

	left, err := st.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected cleared transcript, got %d messages", len(left))
	}
}

func TestAutofillSeedsTranscript(t *testing.T) {
	st := store.NewMemory()
	project := seedProject(t, st)
	router := newRouter(st, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/messages/autofill", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	msgs, err := st.ListByProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ListByProject err: %v", err)
	}
	if len(msgs) != len(seed.Transcript()) {
		t.Fatalf("expected %d seeded messages, got %d", len(seed.Transcript()), len(msgs))
	}
}

func TestQuickRepliesEndpoint(t *testing.T) {
	st := store.NewMemory()
	project := seedProject(t, st)
	router := newRouter(st, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/quick-replies",
		strings.NewReader(`{"text":"What makes Max laugh, if dogs can laugh?"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Replies []string `json:"replies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(body.Replies) != 4 {
		t.Fatalf("expected 4 replies, got %d: %v", len(body.Replies), body.Replies)
	}
	if body.Replies[len(body.Replies)-1] != quickreply.WriteMyOwn {
		t.Fatalf("expected escape hatch last, got %q", body.Replies[len(body.Replies)-1])
	}
}

func TestQuickRepliesEmptyForClosingMessage(t *testing.T) {
	st := store.NewMemory()
	project := seedProject(t, st)
	router := newRouter(st, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/quick-replies",
		strings.NewReader(`{"text":"We have everything we need. Time to pick a style!"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Replies []string `json:"replies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(body.Replies) != 0 {
		t.Fatalf("expected no replies, got %v", body.Replies)
	}
}
