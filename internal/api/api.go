// Package api serves the question bank over HTTP so several quiz clients
// can share one backend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
)

// Options configures the router.
type Options struct {
	Catalog     *catalog.Catalog
	Gate        *catalog.Gate
	PINs        catalog.PINStore
	Log         logrus.FieldLogger
	CORSOrigins []string
	// RequestLog enables chi's request logger.
	RequestLog bool
}

type server struct {
	cat  *catalog.Catalog
	gate *catalog.Gate
	pins catalog.PINStore
	log  logrus.FieldLogger
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	s := &server{cat: opts.Catalog, gate: opts.Gate, pins: opts.PINs, log: opts.Log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if opts.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", store.PINHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/questions", s.listQuestions)
		ar.Get("/hints", s.listHints)
		ar.Get("/topics", s.listTopics)
		ar.Post("/score", s.score)

		ar.Group(func(pr chi.Router) {
			pr.Use(s.requirePIN)
			pr.Put("/questions", s.replaceQuestions)
			pr.Put("/hints", s.replaceHints)
			pr.Get("/pin", s.getPIN)
			pr.Put("/pin", s.putPIN)
		})
	})
	return r
}

func (s *server) requirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pin := r.Header.Get(store.PINHeader)
		if pin == "" {
			http.Error(w, "admin PIN required", http.StatusUnauthorized)
			return
		}
		if err := s.gate.Verify(r.Context(), pin); err != nil {
			if errors.Is(err, catalog.ErrWrongPIN) {
				s.log.WithField("remote", r.RemoteAddr).Warn("Rejected admin request with wrong PIN")
				http.Error(w, "wrong PIN", http.StatusForbidden)
				return
			}
			s.log.WithError(err).Error("PIN check failed")
			http.Error(w, "PIN check failed", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) listQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.Bank())
}

func (s *server) listHints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.Hints())
}

// TopicInfo is one entry of GET /api/topics.
type TopicInfo struct {
	Topic     string `json:"topic"`
	Hint      string `json:"hint"`
	Questions int    `json:"questions"`
}

func (s *server) listTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.cat.Topics()
	out := make([]TopicInfo, 0, len(topics))
	for _, t := range topics {
		hint, _ := s.cat.Hint(t)
		out = append(out, TopicInfo{Topic: t, Hint: hint, Questions: len(s.cat.ByTopic(t))})
	}
	writeJSON(w, http.StatusOK, out)
}

// ScoreRequest is the body of POST /api/score.
type ScoreRequest struct {
	Basket  []string                  `json:"basket"`
	Answers map[string]session.Answer `json:"answers"`
}

func (s *server) score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	bank := s.cat.Bank()
	if err := checkScoreRequest(req, bank.Lookup); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, session.Score(req.Basket, bank.Lookup, req.Answers))
}

// checkScoreRequest applies the basket caps and the manual score range.
// IDs missing from the bank are allowed and score nothing.
func checkScoreRequest(req ScoreRequest, lookup session.Lookup) error {
	if len(req.Basket) > session.MaxTotal {
		return session.ErrTotalCap
	}
	var basket session.Basket
	seen := make(map[string]bool, len(req.Basket))
	for _, id := range req.Basket {
		if seen[id] {
			return fmt.Errorf("duplicate question %q in basket", id)
		}
		seen[id] = true
		if _, err := basket.Toggle(id, lookup); err != nil {
			return err
		}
	}
	for id, a := range req.Answers {
		if q, ok := lookup(id); ok {
			if err := session.CheckScore(q, a); err != nil {
				return fmt.Errorf("answer %s: %w", id, err)
			}
		}
	}
	return nil
}

func (s *server) replaceQuestions(w http.ResponseWriter, r *http.Request) {
	var bank quiz.Bank
	if err := json.NewDecoder(r.Body).Decode(&bank); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.writeMutation(w, s.cat.ReplaceQuestions(r.Context(), bank))
}

func (s *server) replaceHints(w http.ResponseWriter, r *http.Request) {
	var hints quiz.HintMap
	if err := json.NewDecoder(r.Body).Decode(&hints); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.writeMutation(w, s.cat.ReplaceHints(r.Context(), hints))
}

func (s *server) writeMutation(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, catalog.ErrNotPersisted):
		s.log.WithError(err).Error("Mutation not persisted")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *server) getPIN(w http.ResponseWriter, r *http.Request) {
	hash, err := s.pins.LoadPINHash(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, store.PINPayload{})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, store.PINPayload{Hash: hash})
}

func (s *server) putPIN(w http.ResponseWriter, r *http.Request) {
	var p store.PINPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Hash == "" {
		http.Error(w, "hash required", http.StatusBadRequest)
		return
	}
	if err := s.pins.SavePINHash(r.Context(), p.Hash); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.gate.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
