package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krau/konaclassify/cache"
	"github.com/krau/konaclassify/service"
)

const (
	DefaultMaxUploadBytes = 32 << 20
	DefaultMaxPixels      = 64 << 20
)

type Options struct {
	// Token enables bearer authentication on /predict when non-empty.
	Token    string
	DefaultK int
	// Uploads larger than MaxUploadBytes, or images with more than
	// MaxPixels pixels, are rejected with 413.
	MaxUploadBytes int64
	MaxPixels      int
}

// Server exposes a Classifier over HTTP. The model behind the classifier is
// not safe for concurrent use, so classifications run one at a time.
type Server struct {
	mu         sync.Mutex
	classifier *service.Classifier
	results    *cache.Results
	opts       Options
}

func New(classifier *service.Classifier, results *cache.Results, opts Options) *Server {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if results == nil {
		results = cache.NewResults(cache.NewMemory(), "")
	}
	return &Server{
		classifier: classifier,
		results:    results,
		opts:       opts,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	r.POST("/predict", s.PredictHandler)
	r.GET("/labels", s.LabelsHandler)
	r.GET("/health", HealthHandler)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening on", slog.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
