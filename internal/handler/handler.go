package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/dykim/evalboard/internal/i18n"
	"github.com/dykim/evalboard/internal/model"
	"github.com/dykim/evalboard/internal/nav"
	"github.com/dykim/evalboard/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	config model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, cfg model.ServerConfig) *Handler {
	return &Handler{store: s, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/me", h.handleMe)
		r.Get("/api/categories", h.handleCategories)
		r.Get("/api/items", h.handleListItems)
		r.Get("/api/items/{itemID}", h.handleGetItem)
		r.Get("/api/navigate", h.handleNavigate)
		r.Get("/api/progress", h.handleProgress)
		r.Post("/api/responses", h.handleSubmitResponse)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleAdmin))

			r.Get("/admin/stats", h.handleStats)
			r.Get("/admin/results", h.handleResults)
			r.Get("/admin/export", h.handleExport)
			r.Get("/admin/users", h.handleListUsers)
			r.Post("/admin/users", h.handleCreateUser)
			r.Post("/admin/dataset", h.handleLoadDataset)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// itemView is the client-facing shape of an item. The quiz answer key is
// stripped for regular users.
type itemView struct {
	ItemID         int64                     `json:"item_id"`
	SequenceNumber int64                     `json:"sequence_number"`
	Category       string                    `json:"category"`
	Kind           model.ItemKind            `json:"kind"`
	Question       string                    `json:"question,omitempty"`
	Choices        []string                  `json:"choices,omitempty"`
	Answer         *int64                    `json:"answer,omitempty"`
	History        []model.Turn              `json:"history,omitempty"`
	Responses      []model.CandidateResponse `json:"responses,omitempty"`
}

func viewForItem(it model.Item, u *model.User) itemView {
	v := itemView{
		ItemID:         it.ItemID,
		SequenceNumber: it.SequenceNumber,
		Category:       it.Category,
		Kind:           it.Kind,
	}
	switch it.Kind {
	case model.KindQuiz:
		v.Question = it.Quiz.Question
		v.Choices = it.Quiz.Choices
		if u != nil && u.Role == model.RoleAdmin {
			answer := it.Quiz.Answer
			v.Answer = &answer
		}
	case model.KindResponseSet:
		v.History = it.ResponseSet.History
		v.Responses = it.ResponseSet.Responses
	}
	return v
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u := model.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories()
	if err != nil {
		slog.Error("list categories", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	var (
		items []model.Item
		err   error
	)
	if category == "" {
		items, err = h.store.ListItems()
	} else {
		items, err = h.store.ListItemsByCategory(category)
	}
	if err != nil {
		slog.Error("list items", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if category != "" && len(items) == 0 {
		writeMessage(w, http.StatusNotFound, appI18n.T(r.Context(), "NoItemsInCategory"))
		return
	}

	u := model.UserFromContext(r.Context())
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, viewForItem(it, u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item ID", http.StatusBadRequest)
		return
	}

	item, err := h.store.GetItem(itemID)
	if err != nil {
		slog.Error("get item", "item", itemID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if item == nil {
		writeMessage(w, http.StatusNotFound, appI18n.T(r.Context(), "UnknownItem"))
		return
	}

	// Attach the caller's recorded state so a resumed session can
	// pre-populate prior answers.
	u := model.UserFromContext(r.Context())
	resp := map[string]any{"item": viewForItem(*item, u)}
	switch item.Kind {
	case model.KindQuiz:
		recorded, err := h.store.GetResponse(u.ID, item.ItemID, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if recorded != nil {
			resp["selected_choice"] = recorded.Value
		}
	case model.KindResponseSet:
		ratings := make(map[string]int64)
		for _, m := range item.ResponseSet.Models() {
			recorded, err := h.store.GetResponse(u.ID, item.ItemID, m)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if recorded != nil {
				ratings[m] = recorded.Value
			}
		}
		resp["ratings"] = ratings
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := strconv.ParseInt(q.Get("from"), 10, 64)
	if err != nil {
		http.Error(w, "invalid from parameter", http.StatusBadRequest)
		return
	}
	action := nav.Action(q.Get("action"))

	seqs, err := h.store.SequenceNumbers()
	if err != nil {
		slog.Error("list sequence numbers", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"sequence_number": nav.Next(seqs, from, action),
	})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	u := model.UserFromContext(r.Context())
	entries, err := h.store.ProgressForUser(u.ID, r.URL.Query().Get("category"))
	if err != nil {
		slog.Error("progress", "user", u.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.ProgressEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": entries})
}

type submitRequest struct {
	ItemID *int64  `json:"item_id"`
	Model  string  `json:"model"`
	Value  *int64  `json:"value"`
	Action *string `json:"action"`
}

func (h *Handler) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "MissingFields"))
		return
	}
	if req.ItemID == nil || req.Value == nil {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "MissingFields"))
		return
	}

	u := model.UserFromContext(r.Context())
	err := h.store.UpsertResponse(u.ID, *req.ItemID, req.Model, *req.Value)
	switch {
	case errors.Is(err, store.ErrUnknownItem):
		writeMessage(w, http.StatusNotFound, appI18n.T(r.Context(), "UnknownItem"))
		return
	case errors.Is(err, store.ErrInvalidValue):
		msgID := "InvalidChoice"
		if req.Model != "" {
			msgID = "InvalidRating"
		}
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), msgID))
		return
	case err != nil:
		slog.Error("upsert response", "user", u.ID, "item", *req.ItemID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"message": appI18n.T(r.Context(), "ResponseSaved")}

	// Quiz submissions may carry a navigation action; resolve it here so
	// the client can move on in one round trip.
	if req.Action != nil {
		item, err := h.store.GetItem(*req.ItemID)
		if err != nil || item == nil {
			http.Error(w, "navigation failed", http.StatusInternalServerError)
			return
		}
		seqs, err := h.store.SequenceNumbers()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["sequence_number"] = nav.Next(seqs, item.SequenceNumber, nav.Action(*req.Action))
	}
	writeJSON(w, http.StatusOK, resp)
}
