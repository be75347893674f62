package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// Server handles HTTP requests for the clarity API
type Server struct {
	svc  *service.Service
	addr string
}

// New creates a new API server
func New(svc *service.Service, addr string) *Server {
	return &Server{svc: svc, addr: addr}
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Activity
	mux.HandleFunc("POST /users/{id}/checkins", s.addCheckIn)
	mux.HandleFunc("POST /users/{id}/tasks", s.addTask)
	mux.HandleFunc("POST /users/{id}/reflections", s.addReflection)

	// Clarity
	mux.HandleFunc("GET /users/{id}/clarity", s.getClarity)
	mux.HandleFunc("GET /users/{id}/clarity/history", s.getHistory)

	// Proofs
	mux.HandleFunc("POST /users/{id}/proofs", s.addProof)
	mux.HandleFunc("GET /users/{id}/proofs", s.listProofs)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down and flushes pending fog writes
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.svc.Flush()
	return err
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// #region activity

// CheckInRequest is the request body for recording a check-in
type CheckInRequest struct {
	Emotion string    `json:"emotion"`
	Date    time.Time `json:"date,omitempty"`
}

// TaskRequest is the request body for recording a completed task
type TaskRequest struct {
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// ReflectionRequest is the request body for recording a reflection
type ReflectionRequest struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (s *Server) addCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.svc.RecordCheckIn(r.Context(), r.PathValue("id"), req.Date, req.Emotion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.svc.RecordTask(r.Context(), r.PathValue("id"), req.CompletedAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) addReflection(w http.ResponseWriter, r *http.Request) {
	var req ReflectionRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.svc.RecordReflection(r.Context(), r.PathValue("id"), req.Text, req.CreatedAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// #endregion activity

// #region clarity

// ClarityResponse is the response for a clarity computation
type ClarityResponse struct {
	UserID         string            `json:"user_id"`
	ClarityScore   float64           `json:"clarity_score"`
	Scores         signals.Scores    `json:"scores"`
	Fog            fog.State         `json:"fog"`
	RawFog         float64           `json:"raw_fog"`
	PreviousFog    float64           `json:"previous_fog"`
	PreviousSource engine.PrevSource `json:"previous_source"`
	Persisting     bool              `json:"persisting"`
	Dropped        int               `json:"dropped_records"`
	ComputedAt     time.Time         `json:"computed_at"`
}

// NewClarityResponse flattens an engine result for the wire
func NewClarityResponse(res engine.Result) ClarityResponse {
	return ClarityResponse{
		UserID:         res.UserID,
		ClarityScore:   res.Fog.Score,
		Scores:         res.Fog.Scores,
		Fog:            res.Fog.State,
		RawFog:         res.Fog.RawFog,
		PreviousFog:    res.Fog.Previous,
		PreviousSource: res.PrevSource,
		Persisting:     res.WriteQueued,
		Dropped:        len(res.Screen.Dropped),
		ComputedAt:     res.ComputedAt,
	}
}

func (s *Server) getClarity(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Compute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewClarityResponse(res))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	entries, err := s.svc.History(r.Context(), userID, queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"history": entries,
	})
}

// #endregion clarity

// #region proofs

// ProofRequest is the request body for appending a proof
type ProofRequest struct {
	Module    proof.Module `json:"module"`
	ShortText string       `json:"short_text"`
	SourceID  string       `json:"source_id,omitempty"`
}

func (s *Server) addProof(w http.ResponseWriter, r *http.Request) {
	var req ProofRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.svc.AppendProof(r.Context(), r.PathValue("id"), req.Module, req.ShortText, req.SourceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listProofs(w http.ResponseWriter, r *http.Request) {
	proofs, err := s.svc.ListProofs(r.Context(), r.PathValue("id"), queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if proofs == nil {
		proofs = []proof.LifeProof{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"proofs": proofs,
	})
}

// #endregion proofs

// #region helpers

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// writeServiceError maps validation errors to 400 and everything else to 500
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, activity.ErrEmptyUser),
		errors.Is(err, activity.ErrEmptyEmotion),
		errors.Is(err, activity.ErrEmptyReflection),
		errors.Is(err, activity.ErrZeroTime),
		errors.Is(err, proof.ErrEmptyText),
		errors.Is(err, proof.ErrTextTooLong),
		errors.Is(err, proof.ErrUnknownModule):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// #endregion helpers
