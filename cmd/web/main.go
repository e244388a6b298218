package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/jobs"
	"github.com/clair-gutierrez/sitetack/internal/logging"
	"github.com/clair-gutierrez/sitetack/internal/model"
)

//go:embed templates/*.html
var embedded embed.FS

// loadTemplates parses every .html file under dir. An empty dir uses the
// templates built into the binary.
func loadTemplates(dir string) (*template.Template, error) {
	if dir == "" {
		return template.ParseFS(embedded, "templates/*.html")
	}
	t := template.New("")
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		_, err = t.ParseFiles(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", srw.status,
			"bytes", srw.written,
			"duration", time.Since(start),
			"agent", r.UserAgent())
	})
}

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	addr := flag.String("addr", "", "HTTP listen address (default from config, :8080)")
	templatesDir := flag.String("templates", "", "directory of HTML templates (default: built in)")
	logFile := flag.String("log", "", "also append logs to this file")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose})
	defer closeLog()

	tmpl, err := loadTemplates(*templatesDir)
	if err != nil {
		logger.Fatal("failed to load templates", "dir", *templatesDir, "err", err)
	}
	registry, err := model.FromConfig(cfg, model.ConfiguredScorers(cfg))
	if err != nil {
		logger.Fatal("failed to configure models", "err", err)
	}
	store, err := jobs.Open(cfg.JobsStore, cfg.JobsPath)
	if err != nil {
		logger.Fatal("failed to open jobs store", "store", cfg.JobsStore, "path", cfg.JobsPath, "err", err)
	}
	defer store.Close()

	s := &server{cfg: cfg, registry: registry, store: store, tmpl: tmpl, logger: logger}
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingMiddleware(logger, s.routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving sitetack", "url", fmt.Sprintf("http://%s/", cfg.Addr), "models", registry.Len(),
		"scorer", cfg.Scorer, "jobs_store", cfg.JobsStore, "jobs_path", cfg.JobsPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", "err", err)
	}
	logger.Info("server stopped")
}
