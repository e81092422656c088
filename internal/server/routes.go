package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/game"
	"github.com/scythe504/leaguedraw/internal/words"
)

const healthTimeout = 2 * time.Second

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.ListRoomsHandler).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.CategoriesHandler).Methods(http.MethodGet)
	r.HandleFunc("/create-room", s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/ws", s.gateway.HandleWebSocket)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origin := s.allowedOrigin
	if origin == "" {
		origin = "*"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// origin for upgrades is checked by the gateway
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := internal.NewResponse(http.StatusOK, time.Now(), "ok")

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := s.store.Health(ctx); err != nil {
		log.Error().Err(err).Msg("[HealthHandler] word store unhealthy")
		resp.StatusCode = http.StatusServiceUnavailable
		resp.Data = "word store unavailable"
	}

	resp.Finish()
	writeJSON(w, resp.StatusCode, resp)
}

// ListRoomsHandler returns the names of every open room.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	resp := internal.NewResponse(http.StatusOK, time.Now(), s.registry.Names())
	resp.Finish()
	writeJSON(w, resp.StatusCode, resp)
}

func (s *Server) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	resp := internal.NewResponse(http.StatusOK, time.Now(), words.Categories())
	resp.Finish()
	writeJSON(w, resp.StatusCode, resp)
}

// CreateRoomHandler builds the room's word pool from the requested
// categories and registers the room.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req internal.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, internal.CreateRoomResponse{Error: "malformed request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Time <= 0 || len(req.Categories) == 0 {
		writeJSON(w, http.StatusBadRequest, internal.CreateRoomResponse{Error: "name, time and categories are required"})
		return
	}
	for _, c := range req.Categories {
		if !words.IsCategory(c) {
			writeJSON(w, http.StatusBadRequest, internal.CreateRoomResponse{Error: "unknown category " + c})
			return
		}
	}

	if _, exists := s.registry.Get(req.Name); exists {
		writeJSON(w, http.StatusConflict, internal.CreateRoomResponse{Error: game.ErrDuplicateRoom.Error()})
		return
	}

	pool, err := s.store.Pool(r.Context(), req.Categories)
	if err != nil {
		log.Error().Err(err).Str("room", req.Name).Strs("categories", req.Categories).
			Msg("[CreateRoomHandler] failed to build word pool")
		writeJSON(w, http.StatusInternalServerError, internal.CreateRoomResponse{Error: "failed to load words"})
		return
	}

	_, err = s.registry.Create(req.Name, req.Password, pool, req.Time)
	switch {
	case errors.Is(err, game.ErrDuplicateRoom):
		writeJSON(w, http.StatusConflict, internal.CreateRoomResponse{Error: err.Error()})
	case errors.Is(err, game.ErrInvalidRoom):
		// an empty pool lands here too
		writeJSON(w, http.StatusBadRequest, internal.CreateRoomResponse{Error: err.Error()})
	case err != nil:
		log.Error().Err(err).Str("room", req.Name).Msg("[CreateRoomHandler] create failed")
		writeJSON(w, http.StatusInternalServerError, internal.CreateRoomResponse{Error: "internal error"})
	default:
		writeJSON(w, http.StatusOK, internal.CreateRoomResponse{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}
