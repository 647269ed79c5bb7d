package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting-service/session"
	"github.com/radieske/betting-list/internal/betting/footer"
	"github.com/radieske/betting-list/internal/betting/item"
	"github.com/radieske/betting-list/internal/betting/list"
)

// Sessions é o subconjunto do session.Manager usado pela API
type Sessions interface {
	Open(ctx context.Context) (session.Snapshot, error)
	View(id string) (session.Snapshot, error)
	Slip(id string) (session.SlipView, error)
	Activate(id, itemID string, choice int) (session.Result, error)
	AddItem(ctx context.Context, id, itemID string) (session.Result, error)
	RemoveItem(id, itemID string) (session.Result, error)
	Close(id string) error
}

// API expõe as listas de apostas por HTTP
type API struct {
	Log      *zap.Logger
	Sessions Sessions
	WS       http.HandlerFunc // hub WebSocket (opcional)
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v1/lists", a.openList)                                          // Monta uma nova lista
	r.Get("/v1/lists/{id}", a.getList)                                       // Visão atual
	r.Get("/v1/lists/{id}/slip", a.getSlip)                                  // Cupom agregado
	r.Post("/v1/lists/{id}/items/{itemId}/choices/{choice}", a.selectChoice) // Clique em uma odd
	r.Put("/v1/lists/{id}/items/{itemId}", a.addItem)                        // Inclui partida do catálogo
	r.Delete("/v1/lists/{id}/items/{itemId}", a.removeItem)                  // Retira partida
	r.Delete("/v1/lists/{id}", a.closeList)                                  // Desmonta a lista
	r.Get("/v1/footer", a.getFooter)
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, item.ErrInvalidChoiceIndex):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, list.ErrDuplicateItem):
		status = http.StatusConflict
	default:
		a.Log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *API) openList(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Sessions.Open(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (a *API) getList(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Sessions.View(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) getSlip(w http.ResponseWriter, r *http.Request) {
	slip, err := a.Sessions.Slip(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slip)
}

func (a *API) selectChoice(w http.ResponseWriter, r *http.Request) {
	choice, err := strconv.Atoi(chi.URLParam(r, "choice"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "choice must be an integer"})
		return
	}
	res, err := a.Sessions.Activate(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), choice)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) addItem(w http.ResponseWriter, r *http.Request) {
	res, err := a.Sessions.AddItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) removeItem(w http.ResponseWriter, r *http.Request) {
	res, err := a.Sessions.RemoveItem(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) closeList(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Close(chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getFooter renderiza o rodapé estático; ?connected=true|false
func (a *API) getFooter(w http.ResponseWriter, r *http.Request) {
	connected, _ := strconv.ParseBool(r.URL.Query().Get("connected"))
	writeJSON(w, http.StatusOK, footer.Render(connected))
}
