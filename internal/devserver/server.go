// Package devserver is an in-memory stand-in for the expense backend,
// implementing the same REST contract the client speaks. It exists for
// local development and demos; nothing in the client depends on it.
package devserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"outgo/internal/core"
	applog "outgo/internal/log"
)

// record is the wire shape: amount as a JSON number, date as ISO-8601.
type record struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        core.Date       `json:"date"`
}

func (r record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string      `json:"id"`
		Amount      json.Number `json:"amount"`
		Category    string      `json:"category"`
		Description string      `json:"description"`
		Date        core.Date   `json:"date"`
	}{
		ID:          r.ID,
		Amount:      json.Number(r.Amount.String()),
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date,
	})
}

// Server holds the in-memory record set. Order is insertion order,
// which is what the client mirrors.
type Server struct {
	mu      sync.Mutex
	records []record
	logger  *applog.Logger
}

func New(logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Server{logger: logger.WithComponent(applog.ComponentDevServer)}
}

// Router builds the chi router implementing the backend contract.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(applog.RequestMiddleware(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.remove)
	})
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]record(nil), s.records...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body.ID = uuid.NewString()

	s.mu.Lock()
	s.records = append(s.records, body)
	s.mu.Unlock()

	s.logger.Info("expense created",
		applog.FieldExpenseID, body.ID,
		applog.FieldCategory, body.Category,
		applog.FieldAmount, body.Amount.String())
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body.ID = id

	s.mu.Lock()
	found := false
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i] = body
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	found := false
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.logger.Info("expense deleted", applog.FieldExpenseID, id)
	w.WriteHeader(http.StatusNoContent)
}

func validate(r record) error {
	draft := core.Draft{
		Date:        r.Date,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    core.Category(r.Category),
	}
	return draft.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
