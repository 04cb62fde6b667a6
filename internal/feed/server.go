package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/gorilla/websocket"
)

// Control is the slice of the session the HTTP API needs.
type Control interface {
	Snapshot() session.Snapshot
	Send(text string) (int, error)
	SendWith(text string, ending session.LineEnding) (int, error)
}

type Server struct {
	control     Control
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
}

func NewServer(control Control, broadcaster *Broadcaster) *Server {
	return &Server{
		control:     control,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/send", s.handleSend)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := s.broadcaster.AddClient(conn)

	// Read loop exists only to notice the peer going away; inbound frames
	// are discarded.
	go func() {
		defer s.broadcaster.RemoveClient(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.control.Snapshot())
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	var (
		n   int
		err error
	)
	if req.LineEnding != "" {
		n, err = s.control.SendWith(req.Text, session.ParseLineEnding(req.LineEnding))
	} else {
		n, err = s.control.Send(req.Text)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotConnected) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, SendResponse{Bytes: n})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("feed response encode error: %v", err)
	}
}

// ListenAndServe starts the feed server on host:port and blocks.
func ListenAndServe(host string, port int, control Control, broadcaster *Broadcaster) error {
	mux := http.NewServeMux()
	NewServer(control, broadcaster).SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("feed listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
