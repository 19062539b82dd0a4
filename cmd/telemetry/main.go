package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

type server struct {
	log   *logger.Logger
	store stats.Store
}

func main() {
	log := logger.New("telemetry")
	addr := getenv("TELEMETRY_ADDR", ":9002")

	store, err := openStore(getenv("TELEMETRY_DB", ""))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	s := &server{log: log, store: store}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           withCORS(s.router()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("telemetry listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// openStore keeps records in sqlite when a path is given and in memory
// otherwise.
func openStore(path string) (stats.Store, error) {
	if path == "" {
		return stats.NewMemoryStore(0), nil
	}
	store := stats.NewSQLiteStore(path)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *server) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/v1/stats", s.handleRecord).Methods(http.MethodPost)
	router.HandleFunc("/v1/stats/{run}", s.handleList).Methods(http.MethodGet)
	router.HandleFunc("/v1/runs", s.handleRuns).Methods(http.MethodGet)
	return router
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var st stats.Stats
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}
	if st.RunID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "run_id_required"})
		return
	}
	if err := s.store.Record(r.Context(), st); err != nil {
		s.log.Printf("record run=%s tick=%d: %v", st.RunID, st.CurrentTick, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store_failed"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run"]
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_limit"})
			return
		}
		limit = n
	}
	records, err := s.store.List(r.Context(), runID, limit)
	switch {
	case errors.Is(err, stats.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run_not_found"})
		return
	case err != nil:
		s.log.Printf("list run=%s: %v", runID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"stats": records,
	})
}

func (s *server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs(r.Context())
	if err != nil {
		s.log.Printf("list runs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
