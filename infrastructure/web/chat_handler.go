package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chatline/observability"
	"chatline/services"

	"github.com/samber/lo"
)

type ChatHandler struct {
	Chat    services.IChatService
	Monitor *observability.Monitor

	// MaxBodyLength caps message bodies here in the adapter; the store
	// itself does not enforce a maximum.
	MaxBodyLength int
	// WriteTimeout bounds the persistence write behind a send, so a slow
	// disk cannot stall every writer indefinitely.
	WriteTimeout time.Duration
}

type sendRequest struct {
	Recipient string `json:"recipient,omitempty"`
	Body      string `json:"body"`
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	sender, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Recipient and body are required")
		return
	}
	if len(req.Body) > h.MaxBodyLength {
		writeError(w, http.StatusBadRequest, "Message body too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.WriteTimeout)
	defer cancel()

	message, err := h.Chat.Send(ctx, sender, req.Recipient, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": message})
}

// Feed serves the poll endpoint. Without a query it returns everything the
// viewer may see; with ?with=<user> it narrows to that pair conversation.
func (h *ChatHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewer, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	counterpart := r.URL.Query().Get("with")

	var err error
	var messages any
	if counterpart != "" {
		messages, err = h.Chat.Conversation(r.Context(), viewer, counterpart)
	} else {
		messages, err = h.Chat.Feed(r.Context(), viewer)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *ChatHandler) Users(w http.ResponseWriter, r *http.Request) {
	caller, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	usernames, err := h.Chat.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Hiding the caller from their own listing is presentation, which is
	// why the store returns everyone and the filter happens here.
	others := lo.Filter(usernames, func(u string, _ int) bool { return u != caller })

	writeJSON(w, http.StatusOK, map[string]any{"users": others})
}

func (h *ChatHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewer, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	messages, err := h.Chat.Search(r.Context(), viewer, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := UsernameFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.Monitor.Snapshot())
}
