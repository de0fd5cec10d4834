package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/halissimsek/edit-text/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type docSummary struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Revision int    `json:"revision"`
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(hub *Hub, st store.DocumentStore) http.Handler {
	mux := http.NewServeMux()

	// Serve static files.
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/", fs)

	// Document listing.
	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		infos, err := st.List(r.Context())
		if err != nil {
			log.Printf("handler: list documents: %v", err)
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		summaries := make([]docSummary, 0, len(infos))
		for _, info := range infos {
			summaries = append(summaries, docSummary{
				ID:       info.ID,
				Content:  info.Content(),
				Revision: info.Version,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaries)
	})

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}
