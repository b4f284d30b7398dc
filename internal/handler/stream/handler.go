// Package stream serves the interview completion endpoint consumed by the
// streaming chat client: newline-delimited "data: {json}" chunks closed by
// "data: [DONE]".
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/photorabbit/backend/internal/service/gateway"
	"github.com/photorabbit/backend/pkg/utils"
)

// Streamer produces a token stream for a completion request.
type Streamer interface {
	Stream(ctx context.Context, req gateway.CompletionRequest) (*schema.StreamReader[*schema.Message], error)
}

// Handler bridges the gateway chain onto the wire protocol.
type Handler struct {
	gatewaySvc Streamer
}

// New creates the completion endpoint handler.
func New(gatewaySvc Streamer) *Handler {
	return &Handler{gatewaySvc: gatewaySvc}
}

// RegisterRoutes mounts the completion endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interview/chat", h.handleChat)
}

type deltaChunk struct {
	Choices []deltaChoice `json:"choices"`
}

type deltaChoice struct {
	Delta deltaContent `json:"delta"`
}

type deltaContent struct {
	Content string `json:"content"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req gateway.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := h.gatewaySvc.Stream(r.Context(), req)
	if err != nil {
		log.Printf("[stream] completion failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "completion failed")
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			// The protocol has no error frame; close the stream so the
			// client keeps whatever was delivered.
			log.Printf("[stream] recv failed: %v", recvErr)
			break
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		payload, err := json.Marshal(deltaChunk{
			Choices: []deltaChoice{{Delta: deltaContent{Content: chunk.Content}}},
		})
		if err != nil {
			log.Printf("[stream] marshal chunk failed: %v", err)
			continue
		}
		utils.SendSSERaw(w, flusher, string(payload))
	}

	utils.SendSSERaw(w, flusher, "[DONE]")
}
