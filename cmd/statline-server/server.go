package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/segmentio/fasthash/jody"
	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/config"
	"github.com/statline-ff/statline/internal/engine"
	"github.com/statline-ff/statline/internal/model"
)

const requestIDHeader = "X-Request-ID"

var errBadRequest = errors.New("bad request")

type server struct {
	cfg      config.Config
	eng      *engine.Engine
	log      *logrus.Entry
	mcp      *mcp.Server
	registry []toolInfo
}

func newServer(cfg config.Config, eng *engine.Engine, log *logrus.Entry) *server {
	s := &server{
		cfg: cfg,
		eng: eng,
		log: log.WithField("component", "http"),
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "statline",
				Version: "0.3.0",
			},
			nil,
		),
		registry: make([]toolInfo, 0, 8),
	}
	s.registerTools()
	return s
}

func (s *server) routes() http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.withAuth(s.handleHealth))
	mux.HandleFunc("GET /tools", s.withAuth(s.handleTools))
	mux.HandleFunc("GET /api/seasons", s.withAuth(s.handleSeasons))
	mux.HandleFunc("GET /api/seasons/{season}/ranks", s.withAuth(s.handleWeeklyRanks))
	mux.HandleFunc("GET /api/seasons/{season}/defense", s.withAuth(s.handleDefenseRanks))
	mux.HandleFunc("GET /api/players/{id}", s.withAuth(s.handlePlayer))
	mux.HandleFunc("GET /api/players/{id}/profile", s.withAuth(s.handleProfile))
	mux.HandleFunc("GET /api/players/{id}/gamelog", s.withAuth(s.handleGameLog))
	mux.HandleFunc(s.cfg.MCPPath, s.withAuth(handler.ServeHTTP))
	return s.withRequestLog(mux)
}

func (s *server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	apiKey := s.cfg.APIKey
	header := s.cfg.AuthHeader
	if header == "" {
		header = "X-API-Key"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" {
			next(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get(header))
		if key == "" {
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				key = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *server) handleTools(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	b, _ := json.MarshalIndent(map[string]any{"tools": s.registry}, "", "  ")
	w.Write(b)
}

func (s *server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.eng.Seasons()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]any{"seasons": seasons})
}

func (s *server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.Player(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, p)
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r.URL.Query().Get("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.eng.Profile(r.Context(), engine.ProfileRequest{
		PlayerID: r.PathValue("id"),
		Season:   season,
		Format:   s.format(r.URL.Query().Get("format")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, out)
}

func (s *server) handleGameLog(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r.URL.Query().Get("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.eng.GameLog(r.Context(), engine.GameLogRequest{
		PlayerID: r.PathValue("id"),
		Season:   season,
		Format:   s.format(r.URL.Query().Get("format")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, out)
}

func (s *server) handleWeeklyRanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	season, err := seasonParam(r.PathValue("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pos, err := requirePosition(q.Get("position"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	week, err := strconv.Atoi(q.Get("week"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: week must be a number", errBadRequest))
		return
	}
	rows, err := s.eng.WeeklyRanks(season, s.format(q.Get("format")), week, pos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]any{"season": season, "week": week, "position": pos, "ranks": rows})
}

func (s *server) handleDefenseRanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	season, err := seasonParam(r.PathValue("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pos, err := requirePosition(q.Get("position"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rows, err := s.eng.DefenseRanks(season, s.format(q.Get("format")), pos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]any{"season": season, "position": pos, "defenses": rows})
}

// format falls back to the configured default when the caller sends nothing.
func (s *server) format(raw string) model.Format {
	if strings.TrimSpace(raw) == "" {
		return s.cfg.Format()
	}
	return model.ParseFormat(raw)
}

// seasonParam accepts a year, "latest" or nothing; the last two mean the
// newest season.
func seasonParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "latest") {
		return 0, nil
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season < 0 {
		return 0, fmt.Errorf("%w: invalid season %q", errBadRequest, raw)
	}
	return season, nil
}

// writeJSON sends v with a content hash ETag and answers a matching
// If-None-Match with 304.
func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	etag := fmt.Sprintf(`"%016x"`, jody.HashString64(string(body)))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPositionNotAggregated):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest), errors.Is(err, engine.ErrInvalidWeek):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
