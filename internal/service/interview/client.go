package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/photorabbit/backend/internal/chainlog"
	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/store"
)

var (
	ErrRateLimited    = errors.New("upstream rate limited")
	ErrQuotaExhausted = errors.New("upstream quota exhausted")
	ErrStreamFailed   = errors.New("upstream stream failed")
	ErrTurnInFlight   = errors.New("a turn is already in flight")
)

// Transcript windowing: beyond windowMax entries, keep the earliest
// windowHead (subject intro, first facts) plus the freshest windowTail.
// The upstream request contract depends on these values.
const (
	windowHead = 6
	windowTail = 14
	windowMax  = windowHead + windowTail
)

// TurnOptions carries per-turn context forwarded to the upstream endpoint.
type TurnOptions struct {
	PetName           string
	PetType           string
	PhotoCaptions     []string
	PhotoContextBrief string
	// OnDelta, when set, receives the accumulated assistant content after
	// each decoded delta, for live-typing rendering.
	OnDelta func(content string)
}

// Turn is the durable outcome of one SendMessage call.
type Turn struct {
	UserMessage      interview.Message
	AssistantMessage *interview.Message
	Content          string
}

// Client drives one conversational turn: persist the user's message, submit
// a bounded transcript window upstream, decode the streamed reply, and
// persist the completed assistant message. One turn in flight at a time.
type Client struct {
	projectID   string
	messages    store.MessageStore
	upstreamURL string
	httpClient  *http.Client
	logger      chainlog.Logger

	inFlight atomic.Bool

	mu        sync.RWMutex
	streaming string
}

// NewClient binds a client to a project. httpClient may be nil, in which case
// http.DefaultClient is used.
func NewClient(projectID string, messages store.MessageStore, upstreamURL string, httpClient *http.Client, logger chainlog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		projectID:   projectID,
		messages:    messages,
		upstreamURL: upstreamURL,
		httpClient:  httpClient,
		logger:      chainlog.OrNop(logger),
	}
}

// StreamingContent returns the assistant content accumulated so far for the
// in-flight turn, or "" when idle.
func (c *Client) StreamingContent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streaming
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Messages          []wireMessage `json:"messages"`
	PetName           string        `json:"petName"`
	PetType           string        `json:"petType"`
	UserMessageCount  int           `json:"userMessageCount"`
	PhotoCaptions     []string      `json:"photoCaptions,omitempty"`
	PhotoContextBrief string        `json:"photoContextBrief,omitempty"`
}

// SendMessage runs one turn. The user message is durably recorded before any
// upstream call; the assistant message is recorded only when the stream
// completes with content. A second call while one is outstanding fails with
// ErrTurnInFlight.
func (c *Client) SendMessage(ctx context.Context, userText string, prior []interview.Message, opts TurnOptions) (Turn, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Turn{}, ErrTurnInFlight
	}
	defer func() {
		c.setStreaming("")
		c.inFlight.Store(false)
	}()

	userMsg, err := c.messages.Append(ctx, interview.Message{
		ProjectID: c.projectID,
		Role:      interview.RoleUser,
		Content:   userText,
	})
	if err != nil {
		return Turn{}, fmt.Errorf("save user message: %w", err)
	}

	full := make([]interview.Message, 0, len(prior)+1)
	full = append(full, prior...)
	full = append(full, userMsg)

	window := windowTranscript(full)
	userCount := 0
	for _, msg := range full {
		if msg.Role == interview.RoleUser {
			userCount++
		}
	}

	content, err := c.streamCompletion(ctx, window, userCount, opts)
	if err != nil {
		return Turn{UserMessage: userMsg}, err
	}

	turn := Turn{UserMessage: userMsg, Content: content}
	if content == "" {
		// Empty or failed stream: leave the transcript with the user
		// message only.
		return turn, nil
	}

	assistantMsg, err := c.messages.Append(ctx, interview.Message{
		ProjectID: c.projectID,
		Role:      interview.RoleAssistant,
		Content:   content,
	})
	if err != nil {
		return turn, fmt.Errorf("save assistant message: %w", err)
	}
	turn.AssistantMessage = &assistantMsg

	c.logger.Event("interview", "turn completed", map[string]any{
		"project": c.projectID,
		"length":  len(content),
	})
	return turn, nil
}

func (c *Client) streamCompletion(ctx context.Context, window []interview.Message, userCount int, opts TurnOptions) (string, error) {
	wire := make([]wireMessage, len(window))
	for i, msg := range window {
		wire[i] = wireMessage{Role: msg.Role, Content: msg.Content}
	}

	body, err := json.Marshal(upstreamRequest{
		Messages:          wire,
		PetName:           opts.PetName,
		PetType:           opts.PetType,
		UserMessageCount:  userCount,
		PhotoCaptions:     opts.PhotoCaptions,
		PhotoContextBrief: opts.PhotoContextBrief,
	})
	if err != nil {
		return "", fmt.Errorf("encode upstream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.upstreamURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrQuotaExhausted
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Event("interview", "upstream rejected request", map[string]any{
			"project": c.projectID,
			"status":  resp.StatusCode,
		})
		return "", fmt.Errorf("%w: status %d", ErrStreamFailed, resp.StatusCode)
	}

	dec := NewDecoder()
	var content string
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, delta := range dec.Feed(buf[:n]) {
				content += delta
				c.setStreaming(content)
				if opts.OnDelta != nil {
					opts.OnDelta(content)
				}
			}
		}
		if dec.Done() {
			break
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Partial content streamed so far is discarded, not persisted.
			c.logger.Event("interview", "stream read failed", map[string]any{
				"project": c.projectID,
				"error":   readErr.Error(),
			})
			return "", fmt.Errorf("%w: read body: %v", ErrStreamFailed, readErr)
		}
	}

	return content, nil
}

func (c *Client) setStreaming(content string) {
	c.mu.Lock()
	c.streaming = content
	c.mu.Unlock()
}

// windowTranscript bounds the submitted transcript: short conversations pass
// through unmodified; longer ones keep the first windowHead and last
// windowTail entries, preserving relative order within each slice.
func windowTranscript(full []interview.Message) []interview.Message {
	if len(full) <= windowMax {
		return full
	}
	window := make([]interview.Message, 0, windowMax)
	window = append(window, full[:windowHead]...)
	window = append(window, full[len(full)-windowTail:]...)
	return window
}
