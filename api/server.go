package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/matt-g-everett/termtx/stream"
	"github.com/matt-g-everett/termtx/terminal"
	"pkt.systems/pslog"
)

//go:embed assets
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html.tmpl"))

// Options configure a Server.
type Options struct {
	Listen   string
	Frames   fs.FS
	Player   *stream.Player
	Terminal stream.TerminalConfig
	DocsURL  string
	BlogURL  string
}

// Server serves the homepage with its animated terminal, the frame files it
// plays and a live feed of a server-side Player.
type Server struct {
	opts        Options
	fontSize    terminal.FontSize
	hub         *Hub
	unsubscribe func()
	log         pslog.Logger
}

// NewServer creates a Server and subscribes its live feed to opts.Player.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	if opts.Player == nil {
		return nil, errors.New("api: a player is required")
	}
	size, err := terminal.ParseFontSize(opts.Terminal.FontSize)
	if err != nil {
		return nil, err
	}
	if opts.Listen == "" {
		opts.Listen = ":3000"
	}
	if opts.DocsURL == "" {
		opts.DocsURL = "/docs"
	}
	if opts.BlogURL == "" {
		opts.BlogURL = "/blog"
	}

	s := new(Server)
	s.opts = opts
	s.fontSize = size
	s.log = pslog.Ctx(ctx)
	s.hub = NewHub(ctx, opts.Player)
	s.unsubscribe = opts.Player.Subscribe(s.hub)
	return s, nil
}

// Hub returns the live feed.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	static, _ := fs.Sub(assets, "assets/static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if s.opts.Frames != nil {
		mux.Handle("/frames/", http.StripPrefix("/frames/", http.FileServer(http.FS(s.opts.Frames))))
	}
	mux.Handle("/live", s.hub)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

// Serve listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown failed", "err", err)
		}
	}()

	s.log.Info("listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close detaches the live feed from the player and disconnects its clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

type breakpoint struct {
	MinWidth int
	Pixels   int
}

type page struct {
	Title            string
	Platform         string
	Columns          int
	Rows             int
	Padding          int
	DisableScrolling bool
	Paused           bool
	Playing          bool
	Indent           string
	Lines            []template.HTML
	Breakpoints      []breakpoint
	DocsURL          string
	BlogURL          string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	t := s.opts.Terminal
	v := s.opts.Player.View()
	p := page{
		Title:            t.Title,
		Platform:         terminal.DetectPlatform(r.UserAgent()).String(),
		Columns:          t.Columns + 2*t.WhitespacePadding,
		Rows:             t.Rows,
		Padding:          t.WhitespacePadding,
		DisableScrolling: t.DisableScrolling,
		Paused:           v.State == stream.Paused.String(),
		Playing:          v.Playing,
		Indent:           strings.Repeat(" ", t.WhitespacePadding),
		DocsURL:          s.opts.DocsURL,
		BlogURL:          s.opts.BlogURL,
	}
	if v.Title != "" {
		p.Title = v.Title
	}
	// Frame lines carry trusted pre-escaped markup.
	for _, l := range v.Lines {
		p.Lines = append(p.Lines, template.HTML(p.Indent+l+p.Indent))
	}
	for _, bp := range terminal.Breakpoints(t.Columns, t.WhitespacePadding, s.fontSize) {
		p.Breakpoints = append(p.Breakpoints, breakpoint{MinWidth: bp.MinWidth, Pixels: bp.Size.Pixels()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, p); err != nil {
		s.log.Warn("render homepage failed", "err", err)
	}
}
