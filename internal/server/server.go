// Package server is the HTTP glue over the coverage engine: a JSON API
// mirroring the map frontend's needs plus a websocket channel that pushes
// fresh snapshots whenever a client changes the vendor filter.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vendormap/internal/config"
	"vendormap/internal/engine"
	"vendormap/internal/export"
)

type Server struct {
	engine   *engine.Engine
	cfg      *config.Config
	hub      *hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func New(e *engine.Engine, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine: e,
		cfg:    cfg,
		hub:    newHub(log.Named("hub")),
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The map frontend may be served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/vendors", s.handleVendors)
	api.POST("/filter_vendors", s.handleFilter)
	api.GET("/rankings/:criterion", s.handleRankings)
	api.GET("/statistics", s.handleStatistics)
	api.GET("/view", s.handleView)
	api.GET("/export/:format", s.handleExport)
	r.GET("/ws", s.handleWS)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"vendors":     s.engine.Store().Len(),
		"subscribers": s.hub.count(),
	})
}

// handleVendors returns the full vendor list regardless of visibility, plus
// the hidden set currently in effect.
func (s *Server) handleVendors(c *gin.Context) {
	vendors := s.engine.Store().Vendors()
	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"hidden":  s.engine.HiddenCodes(),
		"total":   len(vendors),
	})
}

type filterRequest struct {
	HiddenVendors []string `json:"hidden_vendors"`
	Criterion     string   `json:"criterion"`
}

// handleFilter replaces the hidden vendor set, recomputes the view, responds
// with it, and pushes it to every websocket subscriber.
func (s *Server) handleFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result := s.engine.ApplyFilter(req.HiddenVendors)
	snap, err := s.engine.GetView(req.Criterion)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	overlapping := make([]string, 0)
	for _, v := range snap.Vendors {
		if v.IsOverlapping {
			overlapping = append(overlapping, v.Code)
		}
	}

	s.hub.broadcast(snap)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"visible_vendors":     snap.Vendors,
		"statistics":          snap.Stats,
		"overlapping_vendors": overlapping,
		"unknown_codes":       result.UnknownCodes,
		"degraded":            snap.Degraded,
	})
}

func (s *Server) handleRankings(c *gin.Context) {
	criterion := c.Param("criterion")
	snap, err := s.engine.GetView(criterion)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidCriterion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ranking_type": criterion,
		"rankings":     snap.Rankings,
		"total":        len(snap.Rankings),
	})
}

func (s *Server) handleStatistics(c *gin.Context) {
	snap, err := s.engine.GetView("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap.Stats)
}

func (s *Server) handleView(c *gin.Context) {
	snap, err := s.engine.GetView(c.Query("criterion"))
	if err != nil {
		if errors.Is(err, engine.ErrInvalidCriterion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.Param("format")
	snap, err := s.engine.GetView(c.Query("criterion"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("vendormap_%s.%s", time.Now().Format("20060102_150405"), format)
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
	case "json", "geojson":
		c.Header("Content-Type", "application/json")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := export.Write(c.Writer, format, snap, s.engine.Store().Districts()); err != nil {
		s.log.Error("export failed", zap.String("format", format), zap.Error(err))
	}
}

// handleWS upgrades the connection, sends the current snapshot, and keeps the
// subscriber on the broadcast list until it disconnects.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := s.hub.add(conn)
	defer s.hub.remove(sub)

	if snap, err := s.engine.GetView(""); err == nil {
		s.hub.sendTo(sub, snap)
	}

	// Read loop: clients do not send data; this just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
