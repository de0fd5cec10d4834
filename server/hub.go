package server

import (
	"context"
	"log"
	"sync"

	"github.com/halissimsek/edit-text/ot"
	"github.com/halissimsek/edit-text/store"
	"github.com/halissimsek/edit-text/synclog"
)

type joinRequest struct {
	client *Client
	docID  string
}

// Hub manages document sessions and routes clients to the right session.
type Hub struct {
	store    store.DocumentStore
	engine   ot.Engine
	sink     synclog.Sink
	sessions map[string]*Session
	mu       sync.RWMutex

	joinDoc chan joinRequest
}

func NewHub(st store.DocumentStore, engine ot.Engine, sink synclog.Sink) *Hub {
	if sink == nil {
		sink = synclog.Nop{}
	}
	return &Hub{
		store:    st,
		engine:   engine,
		sink:     sink,
		sessions: make(map[string]*Session),
		joinDoc:  make(chan joinRequest, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for req := range h.joinDoc {
		h.handleJoinDoc(req)
	}
}

func (h *Hub) handleJoinDoc(req joinRequest) {
	h.mu.Lock()
	s, ok := h.sessions[req.docID]
	if !ok {
		// Create document in store if it doesn't exist.
		ctx := context.Background()
		if _, err := h.store.Get(ctx, req.docID); err != nil {
			if err := h.store.Create(ctx, req.docID, nil); err != nil {
				log.Printf("hub: failed to create doc %q: %v", req.docID, err)
				h.mu.Unlock()
				req.client.sendError("failed to create document")
				return
			}
		}

		doc, err := h.loadDocument(ctx, req.docID)
		if err != nil {
			log.Printf("hub: failed to load doc %q: %v", req.docID, err)
			h.mu.Unlock()
			req.client.sendError("failed to load document")
			return
		}

		s = newSession(req.docID, doc, h.engine, h.store, h.sink)
		h.sessions[req.docID] = s
		go s.Run()
	}
	h.mu.Unlock()

	s.join <- req.client
}

// loadDocument rebuilds the in-memory document from the persisted runs
// and operation log.
func (h *Hub) loadDocument(ctx context.Context, docID string) (*ot.Document, error) {
	info, err := h.store.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	history, err := h.store.GetOperations(ctx, docID, 0)
	if err != nil {
		return nil, err
	}
	return &ot.Document{
		Runs:    info.Runs,
		Version: info.Version,
		History: history,
	}, nil
}

// GetSession returns the session for a document, if active.
func (h *Hub) GetSession(docID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[docID]
}
