package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmorey/pagechat/internal/chat"
)

type chatRequest struct {
	Question string `json:"question"`
}

// handleChat submits a question and streams the turn back as server-sent
// events: "token" for each draft update, then "message" (or "error") for the
// committed answer, then "done". A question sent while a previous turn is
// still streaming supersedes it; the superseded client's event channel
// simply closes.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	events := s.session.Ask(req.Question)
	if events == nil {
		jsonError(w, "question is empty or no document is loaded", http.StatusConflict)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			// Client went away; the turn keeps running and commits to the
			// transcript regardless.
			return
		case ev, open := <-events:
			if !open {
				writeSSE(w, "done", []byte("{}"))
				flusher.Flush()
				return
			}
			s.writeChatEvent(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Server) writeChatEvent(w http.ResponseWriter, ev chat.Event) {
	switch ev.Type {
	case chat.EventDelta:
		data, _ := json.Marshal(map[string]string{"text": ev.Text})
		writeSSE(w, "token", data)
	case chat.EventMessage:
		name := "message"
		if ev.Message != nil && ev.Message.Content == chat.ErrorMessageText {
			name = "error"
		}
		data, _ := json.Marshal(ev.Message)
		writeSSE(w, name, data)
	}
}

func writeSSE(w http.ResponseWriter, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func (s *Server) handleChatCancel(w http.ResponseWriter, r *http.Request) {
	s.session.Cancel()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"state": s.session.State()})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"state":    s.session.State(),
		"messages": s.session.Transcript(),
	})
}
