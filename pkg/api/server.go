// Package api serves the gallery over GraphQL, REST and WebSocket, plus the
// static front end.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/pkg/screensaver"
	"github.com/dixieflatline76/Glint/util/log"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"golang.org/x/time/rate"
)

// Screensaver is the slideshow control surface exposed over GraphQL.
type Screensaver interface {
	Next(ctx context.Context) screensaver.State
	Previous(ctx context.Context) screensaver.State
	Pause() screensaver.State
	Resume() screensaver.State
	SetInterval(seconds int) (screensaver.State, error)
	State() screensaver.State
}

// Options configures a Server.
type Options struct {
	Gallery     *gallery.Service
	Screensaver Screensaver // nil disables the slideshow operations
	Suggester   *codec.Suggester
	SiteDir     string
	Version     string

	// CreateRate and CreateBurst bound createUpload server-wide.
	CreateRate  rate.Limit
	CreateBurst int
}

// Server represents the HTTP/WebSocket server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
	schema     graphql.Schema

	gallery     *gallery.Service
	screensaver Screensaver
	suggester   *codec.Suggester
	siteDir     string
	version     string

	createLimiter *rate.Limiter

	// WebSocket management
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	writeWait time.Duration // per message; a client slower than this is dropped
}

// NewServer creates a new API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Gallery == nil {
		return nil, errors.New("api: gallery service is required")
	}
	if opts.CreateRate == 0 {
		opts.CreateRate = rate.Every(time.Second)
	}
	if opts.CreateBurst == 0 {
		opts.CreateBurst = 5
	}

	s := &Server{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		gallery:       opts.Gallery,
		screensaver:   opts.Screensaver,
		suggester:     opts.Suggester,
		siteDir:       opts.SiteDir,
		version:       opts.Version,
		createLimiter: rate.NewLimiter(opts.CreateRate, opts.CreateBurst),
		clients:       make(map[*websocket.Conn]bool),
		writeWait:     10 * time.Second,
	}

	schema, err := s.buildSchema()
	if err != nil {
		return nil, err
	}
	s.schema = schema
	s.setupRoutes()

	s.gallery.Subscribe(func(_ context.Context, u gallery.Upload) {
		s.BroadcastUpload(u)
	})
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/ws", s.handleWebSocket)

	s.mux.HandleFunc("/graphql", s.enableCORS(s.handleGraphQL))
	s.mux.HandleFunc("/graphql/test", s.enableCORS(textHandler("Hello world!")))

	s.mux.HandleFunc("/api/v1/test", s.enableCORS(textHandler("test")))
	s.mux.HandleFunc("/api/v1/preview", s.enableCORS(s.handlePreview))
	s.mux.HandleFunc("/api/v1/preview-rgb", s.enableCORS(s.handlePreviewRGB))
	s.mux.HandleFunc("/api/v1/crop", s.enableCORS(s.handleCrop))
	s.mux.HandleFunc("/api/v1/suggest", s.enableCORS(s.handleSuggest))
	s.mux.HandleFunc("/api/v1/uploads/{uuid}/thumbnail", s.enableCORS(s.handleThumbnail))

	s.mux.Handle("/assets/", s.assetHandler())
	s.mux.Handle("/", s.siteHandler())
}

// enableCORS adds CORS headers to the handler.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr. It blocks until the server stops and returns nil
// after a graceful Stop.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down and closes WebSocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Event is a message pushed to WebSocket clients.
type Event struct {
	Type        string             `json:"type"`
	Upload      *UploadSummary     `json:"upload,omitempty"`
	Screensaver *screensaver.State `json:"screensaver,omitempty"`
}

// UploadSummary is the WebSocket form of an upload, without its payload.
type UploadSummary struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name,omitempty"`
	Display    string `json:"display"`
	UploadedAt string `json:"uploadedAt"`
}

// BroadcastUpload tells clients a new upload was created.
func (s *Server) BroadcastUpload(u gallery.Upload) {
	summary := &UploadSummary{
		UUID:       u.UUID,
		Display:    u.Display.String(),
		UploadedAt: formatTime(u.UploadedAt),
	}
	if u.Name != nil {
		summary.Name = *u.Name
	}
	s.broadcast(Event{Type: "upload_created", Upload: summary})
}

// BroadcastScreensaver tells clients the slideshow state changed.
func (s *Server) BroadcastScreensaver(state screensaver.State) {
	s.broadcast(Event{Type: "screensaver", Screensaver: &state})
}

func (s *Server) broadcast(msg Event) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		if err := s.writeLocked(client, msg); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

// CALLER MUST HOLD s.clientsMu
func (s *Server) writeLocked(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
