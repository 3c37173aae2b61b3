// Package server exposes the ingest/recognize pipeline over HTTP,
// mirroring the original's axum router: health check, track listing,
// multipart ingest, multipart recognize, and a websocket variant of
// recognize for streaming clients.
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/media-luna/sonica/internal/logging"
	"github.com/media-luna/sonica/internal/pipeline"
)

// maxUploadBytes caps a single multipart body; well above any
// reasonable query clip, well below a DoS-sized payload.
const maxUploadBytes = 32 << 20

// maxWebSocketFrameBytes is the contract's 1 MiB cap per query frame
// on the /ws path.
const maxWebSocketFrameBytes = 1 << 20

// Server wires the pipeline into a gin engine.
type Server struct {
	Pipeline  *pipeline.Pipeline
	TracksDir string
	engine    *gin.Engine
}

// New builds a Server with all routes registered. Uploaded reference
// files land in tracksDir rather than a scratch temp file, so an
// ingest over HTTP dedups against source_key identically to a file
// dropped into the watched directory.
func New(p *pipeline.Pipeline, tracksDir string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{Pipeline: p, TracksDir: tracksDir, engine: engine}
	s.routes()
	return s
}

// Handler returns the http.Handler to pass to an http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/tracks", s.handleListTracks)
	s.engine.POST("/ingest", s.handleIngest)
	s.engine.POST("/recognize", s.handleRecognize)
	s.engine.GET("/ws", s.handleWebSocket)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListTracks(c *gin.Context) {
	tracks, err := s.Pipeline.Index.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

func (s *Server) handleIngest(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}
	defer file.Close()

	// Persist into the watched directory, not a scratch temp file, so
	// source_key dedup is identical whether the track arrived over HTTP
	// or was dropped on disk directly.
	destPath, err := spoolToTracksDir(file, s.TracksDir, header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	title := c.PostForm("title")
	artist := c.PostForm("artist")
	sourceKey := c.PostForm("source_key")
	if sourceKey == "" {
		sourceKey = destPath
	}

	id, created, err := s.Pipeline.Ingest(c.Request.Context(), destPath, sourceKey, title, artist)
	if err != nil {
		c.JSON(pipelineErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	message := "track already indexed"
	if created {
		message = "track indexed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"track_id":   id,
		"source_key": sourceKey,
		"title":      title,
		"artist":     artist,
	})
}

func (s *Server) handleRecognize(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	match, err := s.Pipeline.Recognize(c.Request.Context(), data)
	if err != nil {
		c.JSON(pipelineErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": matchJSON(match)})
}

// pipelineErrorStatus maps the pipeline's error kinds to HTTP status,
// per the InvalidInput=400 / everything-else=500 contract.
func pipelineErrorStatus(err error) int {
	if errors.Is(err, pipeline.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket accepts binary audio frames and replies with one
// JSON recognition result per frame, for clients that prefer a
// persistent connection over repeated multipart POSTs.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket: upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWebSocketFrameBytes)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		match, err := s.Pipeline.Recognize(c.Request.Context(), data)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": err.Error()})
			continue
		}
		if err := conn.WriteJSON(gin.H{"match": matchJSON(match)}); err != nil {
			return
		}
	}
}

func matchJSON(m *pipeline.Match) gin.H {
	if m == nil {
		return nil
	}
	return gin.H{
		"title":  m.Track.Title,
		"artist": m.Track.Artist,
		"score":  m.Score,
	}
}
