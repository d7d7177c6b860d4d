package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/rinwao/hakobu/internal/app"
	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"

	_ "github.com/rinwao/hakobu/docs" // swagger spec registration
)

// Server is the HTTP + WebSocket API surface for hakobu.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	orch, err := app.NewOrchestrator(cfg.AppConfig, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/assets", s.optionsHandler("GET, POST"))
	r.Options("/assets/{assetID}", s.optionsHandler("GET, DELETE"))
	r.Options("/assets/{assetID}/refresh", s.optionsHandler("POST"))

	// Assets
	r.Post("/assets", s.handleSubmitAsset)
	r.Get("/assets", s.handleListAssets)
	r.Get("/assets/{assetID}", s.handleGetAsset)
	r.Post("/assets/{assetID}/refresh", s.handleRefreshAsset)
	r.Delete("/assets/{assetID}", s.handleWithdrawAsset)

	// Status-change event stream
	r.Get("/ws/events", s.handleEventsWS)

	// API docs
	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		_ = s.orchestrator.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeSubmissionError surfaces the most specific available message: the
// platform's error-code text beats generic HTTP status text.
func writeSubmissionError(w http.ResponseWriter, err error) {
	var serr *platform.SubmissionError
	if errors.As(err, &serr) {
		status := http.StatusBadGateway
		switch serr.Kind {
		case platform.FailureAuth:
			status = http.StatusUnauthorized
		case platform.FailureTooLarge:
			status = http.StatusRequestEntityTooLarge
		case platform.FailureMissingFile, platform.FailureFormat,
			platform.FailureCorrupted, platform.FailureDuration,
			platform.FailureRejectedContent:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{Error: serr.Message, Kind: string(serr.Kind), Code: serr.Code})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// --- HTTP handlers ---

// handleSubmitAsset godoc
// @Summary Submit a media file to the platform
// @Accept mpfd
// @Param file formData file true "binary payload"
// @Param kind formData string true "audio or image"
// @Param name formData string false "display name"
// @Param description formData string false "description"
// @Param tags formData string false "comma-separated tags"
// @Success 201 {object} submitResponse
// @Router /assets [post]
func (s *Server) handleSubmitAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	kind := platform.Kind(r.FormValue("kind"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be audio or image")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading file")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			tags = splitTags(raw)
		}
	}

	rec, err := s.orchestrator.SubmitAsset(r.Context(), platform.SubmitRequest{
		Payload:     payload,
		Filename:    header.Filename,
		Kind:        kind,
		Name:        name,
		Description: r.FormValue("description"),
	}, tags)
	if err != nil {
		s.logger.Warn("submitting asset", logging.Field{Key: "error", Value: err.Error()})
		writeSubmissionError(w, err)
		return
	}

	s.logger.Info("submitted asset", logging.Field{Key: "asset_id", Value: rec.ID})
	writeJSON(w, http.StatusCreated, submitResponse{Asset: rec})
}

func splitTags(raw string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if t := raw[start:i]; t != "" {
				out = append(out, t)
			}
			start = i + 1
		}
	}
	return out
}

// handleListAssets godoc
// @Summary List asset records
// @Param status query string false "filter by status"
// @Param limit query int false "max records"
// @Success 200 {array} library.Asset
// @Router /assets [get]
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	status := platform.Status(r.URL.Query().Get("status"))
	limitStr := r.URL.Query().Get("limit")

	limit := 0
	if limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	recs, err := s.orchestrator.ListAssets(r.Context(), status, limit)
	if err != nil {
		s.logger.Warn("listing assets", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleGetAsset godoc
// @Summary Get one asset record
// @Param assetID path string true "platform asset identifier"
// @Success 200 {object} library.Asset
// @Router /assets/{assetID} [get]
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	rec, err := s.orchestrator.GetAsset(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, library.ErrAssetNotFound) {
			writeError(w, http.StatusNotFound, "unknown asset")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRefreshAsset godoc
// @Summary Re-check moderation status now
// @Param assetID path string true "platform asset identifier"
// @Success 200 {object} statusResponse
// @Router /assets/{assetID}/refresh [post]
func (s *Server) handleRefreshAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	status, err := s.orchestrator.CheckStatus(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, library.ErrAssetNotFound) {
			writeError(w, http.StatusNotFound, "unknown asset")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("refreshed asset status",
		logging.Field{Key: "asset_id", Value: assetID},
		logging.Field{Key: "status", Value: string(status)})
	writeJSON(w, http.StatusOK, statusResponse{AssetID: assetID, Status: string(status)})
}

// handleWithdrawAsset godoc
// @Summary Withdraw the asset from the platform
// @Param assetID path string true "platform asset identifier"
// @Success 204
// @Router /assets/{assetID} [delete]
func (s *Server) handleWithdrawAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	if err := s.orchestrator.WithdrawAsset(r.Context(), assetID); err != nil {
		if errors.Is(err, library.ErrAssetNotFound) {
			writeError(w, http.StatusNotFound, "unknown asset")
			return
		}
		var werr *platform.WithdrawalError
		if errors.As(err, &werr) {
			status := http.StatusBadGateway
			switch werr.Kind {
			case platform.FailureAuth:
				status = http.StatusUnauthorized
			case platform.FailureNotFound:
				status = http.StatusNotFound
			}
			writeJSON(w, status, errorResponse{Error: werr.Message, Kind: string(werr.Kind)})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("withdrew asset", logging.Field{Key: "asset_id", Value: assetID})
	w.WriteHeader(http.StatusNoContent)
}

// handleEventsWS streams status-change events to the client until it
// disconnects.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	events, cancel := s.orchestrator.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("websocket write failed, dropping subscriber",
					logging.Field{Key: "error", Value: err.Error()})
				return
			}
		}
	}
}
