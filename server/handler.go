package server

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/krau/konaclassify/cache"
	"github.com/krau/konaclassify/service"
)

var (
	errUnauthorized = errors.New("unauthorized")
)

type PredictionResponse struct {
	RequestID   string               `json:"request_id"`
	Predictions service.RankedResult `json:"predictions"`
	Overlay     string               `json:"overlay"`
	Lines       []string             `json:"lines"`
	Cached      bool                 `json:"cached"`
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) authenticate(c *gin.Context) error {
	expectedToken := s.opts.Token
	if expectedToken == "" {
		return nil
	}
	auth := c.GetHeader("Authorization")
	providedToken := ""
	if len(auth) > 7 && auth[:7] == "Bearer " {
		providedToken = auth[7:]
	}
	if subtle.ConstantTimeCompare([]byte(providedToken), []byte(expectedToken)) != 1 {
		return errUnauthorized
	}
	return nil
}

func (s *Server) PredictHandler(c *gin.Context) {
	reqID := c.GetString("request_id")
	if err := s.authenticate(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	k := s.opts.DefaultK
	if raw := c.Query("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be an integer"})
			return
		}
		k = v
	}

	limit := s.opts.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if fileHeader.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	if int64(len(data)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}

	ctx := c.Request.Context()
	digest := cache.Digest(data)
	result, cached, err := s.results.Get(ctx, digest, k)
	if err != nil {
		slog.Warn("Cache lookup failed", slog.String("request_id", reqID), slog.String("error", err.Error()))
	}

	if !cached {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width*cfg.Height > s.opts.MaxPixels {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		img, err := service.DecodeImage(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot decode image"})
			return
		}

		s.mu.Lock()
		result, err = s.classifier.Classify(img, k)
		s.mu.Unlock()
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				slog.Error("Prediction failed", slog.String("request_id", reqID), slog.String("error", err.Error()))
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if err := s.results.Put(ctx, digest, k, result); err != nil {
			slog.Warn("Cache store failed", slog.String("request_id", reqID), slog.String("error", err.Error()))
		}
	}

	overlay, lines := service.Render(result)
	slog.Info("Prediction served",
		slog.String("request_id", reqID),
		slog.String("digest", digest[:12]),
		slog.String("top", result[0].Label),
		slog.Bool("cached", cached))
	c.JSON(http.StatusOK, PredictionResponse{
		RequestID:   reqID,
		Predictions: result,
		Overlay:     overlay,
		Lines:       lines,
		Cached:      cached,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyImage), errors.Is(err, service.ErrInvalidK):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) LabelsHandler(c *gin.Context) {
	labels := s.classifier.Labels()
	c.JSON(http.StatusOK, gin.H{"count": labels.Len(), "labels": labels.Labels()})
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
