package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmorey/pagechat/internal/cite"
	"github.com/dmorey/pagechat/internal/document"
)

// Transport opens one streamed completion request and returns the raw byte
// stream. The session owns reading and closing the stream; the transport
// must stop delivering once ctx is cancelled.
type Transport interface {
	Stream(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Buffered turn events per in-flight turn. Draft deltas are dropped when the
// observer lags; the committed transcript is the source of truth.
const eventBuffer = 256

const readChunkSize = 4096

// Session owns one conversation: the committed transcript, the active
// document, and at most one in-flight streamed turn with its draft and
// cancellation handle. Starting a new question supersedes a running one;
// a superseded draft is dropped, never committed. All mutation happens
// under one lock, and every stream callback carries the generation it was
// started under so callbacks from stale turns are discarded.
type Session struct {
	transport Transport
	model     string
	log       *slog.Logger

	mu         sync.Mutex
	doc        *document.Document
	transcript []Message
	state      State
	generation uint64
	cancel     context.CancelFunc
	draft      strings.Builder
	decoder    *chunkDecoder
	events     chan Event
}

func NewSession(transport Transport, model string, log *slog.Logger) *Session {
	return &Session{
		transport: transport,
		model:     model,
		log:       log,
		state:     StateIdle,
	}
}

// SetDocument installs a freshly ingested document: the previous document is
// replaced wholesale, the transcript is cleared, and any in-flight turn is
// cancelled, all in one step. A late answer can therefore never cite pages
// of a document that no longer exists.
func (s *Session) SetDocument(doc *document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.state = StateIdle
	s.doc = doc
	s.transcript = []Message{{Role: RoleSystem, Content: UploadNoticeText}}
}

// NoteUploadFailure records a failed upload in the transcript. The loaded
// document, if any, stays in place.
func (s *Session) NoteUploadFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Message{Role: RoleSystem, Content: UploadFailedText})
}

// Ask submits a question. Blank input, or input before any document is
// loaded, is silently ignored and returns nil. Otherwise the question is
// appended to the transcript, any running turn is superseded, and a new
// streamed request is issued. The returned channel delivers this turn's
// events and is closed when the turn commits, fails, or is superseded.
func (s *Session) Ask(text string) <-chan Event {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" || s.doc == nil {
		return nil
	}

	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: text})

	s.supersedeLocked()
	s.state = StateSending
	s.decoder = &chunkDecoder{}
	s.events = make(chan Event, eventBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	gen := s.generation

	req := Request{
		Model:    s.model,
		Messages: s.requestMessagesLocked(),
		Stream:   true,
	}

	go s.run(ctx, gen, req)
	return s.events
}

// Cancel aborts the in-flight turn, if any. The partial draft is dropped
// and no message is committed.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.state = StateIdle
}

// Transcript returns a copy of the committed messages.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Draft returns the accumulated text of the in-flight turn, if any.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.String()
}

// State returns the current per-turn phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the active document, or nil before the first upload.
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// supersedeLocked invalidates the in-flight turn: the generation bump makes
// every pending callback from the old stream a no-op, the context cancel
// stops the transport, and the draft is discarded without committing.
func (s *Session) supersedeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.draft.Reset()
	s.decoder = nil
	if s.events != nil {
		close(s.events)
		s.events = nil
	}
	if s.state == StateSending || s.state == StateFinalizing {
		s.state = StateCancelled
	}
}

// requestMessagesLocked assembles the upstream payload: the fixed system
// instruction, the document grounding context, then the entire transcript
// including the just-appended question.
func (s *Session) requestMessagesLocked() []Message {
	msgs := make([]Message, 0, len(s.transcript)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: SystemInstruction})
	msgs = append(msgs, groundingMessage(s.doc.FullText()))
	for _, m := range s.transcript {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// run drives one streamed turn. It is the only goroutine touching the
// transport stream; every state change goes back through the session lock
// with the turn's generation.
func (s *Session) run(ctx context.Context, gen uint64, req Request) {
	body, err := s.transport.Stream(ctx, req)
	if err != nil {
		s.finishError(gen, err)
		return
	}
	defer body.Close()

	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if !s.applyChunk(gen, buf[:n]) {
				return
			}
		}
		if err == io.EOF {
			s.finish(gen)
			return
		}
		if err != nil {
			s.finishError(gen, err)
			return
		}
	}
}

// applyChunk decodes one raw chunk into the draft. Returns false when the
// turn has been superseded and the caller should stop reading.
func (s *Session) applyChunk(gen uint64, p []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}

	deltas := s.decoder.Feed(p)
	for _, d := range deltas {
		s.draft.WriteString(d)
	}
	if len(deltas) > 0 {
		s.emitLocked(Event{Type: EventDelta, Text: s.draft.String()})
	}
	return true
}

// finish handles normal end of stream: run the citation matcher over the
// accumulated draft and commit exactly one assistant message.
func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}

	s.state = StateFinalizing
	for _, d := range s.decoder.Flush() {
		s.draft.WriteString(d)
	}
	if n := s.decoder.Skipped(); n > 0 {
		s.log.Warn("skipped malformed stream lines", "count", n)
	}

	text := s.draft.String()
	msg := Message{
		Role:      RoleAssistant,
		Content:   text,
		Citations: cite.Match(text, s.doc),
	}
	s.commitLocked(msg)
}

// finishError handles a failed stream. Cancellation (a superseded or
// aborted turn) is discarded silently; anything else commits the fixed
// error message with no citations.
func (s *Session) finishError(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}

	if errors.Is(err, context.Canceled) {
		s.resetTurnLocked()
		s.state = StateIdle
		return
	}

	s.log.Error("stream failed", "error", err)
	s.commitLocked(Message{
		Role:      RoleAssistant,
		Content:   ErrorMessageText,
		Citations: []int{},
	})
}

// commitLocked appends the turn's single terminal message, notifies the
// observer, and returns the session to Idle.
func (s *Session) commitLocked(msg Message) {
	s.transcript = append(s.transcript, msg)
	s.emitLocked(Event{Type: EventMessage, Message: &msg})
	s.resetTurnLocked()
	s.state = StateIdle
}

func (s *Session) resetTurnLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.draft.Reset()
	s.decoder = nil
	if s.events != nil {
		close(s.events)
		s.events = nil
	}
}

// emitLocked delivers a turn event without ever blocking the stream: a slow
// observer loses draft deltas, not transcript state.
func (s *Session) emitLocked(ev Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}
