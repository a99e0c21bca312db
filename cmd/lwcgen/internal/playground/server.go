// Package playground serves the HTTP compile endpoint and pushes
// recompiled outputs to connected browsers.
package playground

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/recera/lwcgen/internal/build"
	"github.com/recera/lwcgen/pkg/compiler"
	"github.com/recera/lwcgen/pkg/ir"
)

const maxBodyBytes = 4 << 20

type ctxKey struct{}

// Message is pushed to websocket clients for every compiled file.
type Message struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server is the playground HTTP server.
type Server struct {
	opts     compiler.Options
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// New returns a server compiling with opts by default.
func New(opts compiler.Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts:    opts,
		log:     log.With("component", "playground"),
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// any origin may connect
				return true
			},
		},
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc("/compile", s.handleCompile).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return r
}

// requestID tags each request with a uuid, echoed in X-Request-Id.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		log := s.log.With("request_id", id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
		log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) logger(r *http.Request) *slog.Logger {
	if log, ok := r.Context().Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	return s.log
}

// options applies the stateType, typescript and prettier query parameters.
func (s *Server) options(r *http.Request) (compiler.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	if v := q.Get("stateType"); v != "" {
		opts.StateType = compiler.StateType(v)
	}
	for name, dst := range map[string]*bool{"typescript": &opts.TypeScript, "prettier": &opts.Prettier} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid " + name + " parameter")
		}
		*dst = b
	}
	return opts, opts.Validate()
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r)

	opts, err := s.options(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts.Logger = log

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusRequestEntityTooLarge)
		return
	}
	c, err := ir.Parse(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code, err := compiler.Generate(c, opts)
	if err != nil {
		log.Warn("compile failed", "component", c.Name, "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, code)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := s.logger(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket closed", "error", err)
			}
			return
		}
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends one message per result to every connected client.
func (s *Server) Broadcast(results []build.Result) {
	msgs := make([]Message, 0, len(results))
	for _, res := range results {
		msg := Message{Type: "compiled", Source: res.Source, Code: res.Code}
		if res.Err != nil {
			msg = Message{Type: "error", Source: res.Source, Error: res.Err.Error()}
		}
		msgs = append(msgs, msg)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn, wmu := range s.clients {
		wmu.Lock()
		for _, msg := range msgs {
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debug("failed to push to client", "error", err)
				break
			}
		}
		wmu.Unlock()
	}
}
