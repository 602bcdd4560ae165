package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/TobiSchelling/ChatReport/internal/compose"
	"github.com/TobiSchelling/ChatReport/internal/database"
	"github.com/TobiSchelling/ChatReport/internal/export"
	"github.com/TobiSchelling/ChatReport/internal/extract"
	"github.com/TobiSchelling/ChatReport/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const maxBodyBytes = 4 << 20

// Server is the HTTP server for extraction, reports and stored conversations.
type Server struct {
	db       *database.DB
	exporter *export.Exporter
	composer *compose.Composer
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB, exporter *export.Exporter) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": render.Preview,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "conversation.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	if exporter == nil {
		exporter = export.New(nil, export.Options{IncludeCharts: true})
	}

	s := &Server{
		db:       db,
		exporter: exporter,
		composer: compose.NewComposer(db, exporter.Extractor()),
		pages:    pages,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /report", s.handleReport)
	s.mux.HandleFunc("POST /preview", s.handlePreview)

	// Conversations
	s.mux.HandleFunc("POST /conversations", s.handleCreateConversation)
	s.mux.HandleFunc("GET /conversations/{id}", s.handleConversation)
	s.mux.HandleFunc("POST /conversations/{id}/turns", s.handleAppendTurn)
	s.mux.HandleFunc("POST /conversations/{id}/delete", s.handleDeleteConversation)
	s.mux.HandleFunc("GET /conversations/{id}/export", s.handleExportConversation)

	// JSON API
	s.mux.HandleFunc("POST /api/extract", s.handleAPIExtract)
	s.mux.HandleFunc("POST /api/report", s.handleAPIReport)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.db.ListConversations()
	if err != nil {
		log.Printf("Error listing conversations: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Conversations": conversations,
	})
}

// handleReport builds a report from a pasted response and returns it in the requested format.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	format, err := render.ParseFormat(r.FormValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := s.exporter.BuildResponse(r.Context(), r.FormValue("text"))
	if err != nil {
		http.Error(w, "Report failed", http.StatusInternalServerError)
		return
	}
	if source := strings.TrimSpace(r.FormValue("source")); source != "" {
		rep.Source = source
	}
	s.writeReport(w, format, rep, r.FormValue("download") != "")
}

// handlePreview returns the extracted text as an HTML fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	text := s.exporter.Extractor().Extract(r.FormValue("text"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, render.Preview(text))
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	var source *string
	if v := strings.TrimSpace(r.FormValue("source")); v != "" {
		source = &v
	}

	id, err := s.db.CreateConversation(title, source)
	if err != nil {
		log.Printf("Error creating conversation: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/conversations/"+id, http.StatusFound)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conv, err := s.db.GetConversation(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if conv == nil {
		http.NotFound(w, r)
		return
	}
	turns, err := s.db.GetTurns(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ex := s.exporter.Extractor()
	views := make([]turnView, len(turns))
	for i, t := range turns {
		views[i] = turnView{Turn: t, Text: t.Content}
		if t.Role == database.RoleAssistant {
			views[i].Text = ex.Extract(t.Content)
		}
	}

	s.render(w, "conversation.html", map[string]any{
		"Conversation": conv,
		"Turns":        views,
	})
}

type turnView struct {
	database.Turn
	Text string
}

func (s *Server) handleAppendTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := r.PathValue("id")
	role := r.FormValue("role")
	content := r.FormValue("content")

	if strings.TrimSpace(content) != "" {
		if _, err := s.db.AppendTurn(id, role, content); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	http.Redirect(w, r, "/conversations/"+id, http.StatusFound)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteConversation(r.PathValue("id")); err != nil && !errors.Is(err, database.ErrNotFound) {
		log.Printf("Error deleting conversation: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleExportConversation(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comp, err := s.composer.ComposeConversation(r.PathValue("id"))
	if errors.Is(err, database.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error composing conversation: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rep, err := s.exporter.BuildComposition(r.Context(), comp)
	if err != nil {
		http.Error(w, "Report failed", http.StatusInternalServerError)
		return
	}
	s.writeReport(w, format, rep, true)
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Text string       `json:"text"`
	Mode extract.Mode `json:"mode"`
}

func (s *Server) handleAPIExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := s.exporter.Extractor().ExtractDetailed(req.Text)
	writeJSON(w, http.StatusOK, extractResponse{Text: res.Text, Mode: res.Mode})
}

type reportRequest struct {
	Text         string        `json:"text"`
	Turns        []turnRequest `json:"turns"`
	LastResponse string        `json:"last_response"`
	Source       string        `json:"source"`
}

type turnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// handleAPIReport builds a report from either a single response or a list of turns.
func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		rep *export.Report
		err error
	)
	if len(req.Turns) > 0 || (req.Text == "" && req.LastResponse != "") {
		turns := make([]compose.Turn, len(req.Turns))
		for i, t := range req.Turns {
			turns[i] = compose.Turn{Role: t.Role, Content: t.Content}
		}
		rep, err = s.exporter.BuildConversation(r.Context(), turns, req.LastResponse)
	} else {
		rep, err = s.exporter.BuildResponse(r.Context(), req.Text)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	rep.Source = req.Source
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) writeReport(w http.ResponseWriter, format render.Format, rep *export.Report, download bool) {
	w.Header().Set("Content-Type", format.ContentType())
	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	}
	if err := render.Write(w, format, rep); err != nil {
		log.Printf("Error writing %s report: %v", format, err)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, exporter *export.Exporter, port int) error {
	srv, err := New(db, exporter)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
