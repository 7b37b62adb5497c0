package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dykim/evalboard/internal/dataset"
	"github.com/dykim/evalboard/internal/export"
	appI18n "github.com/dykim/evalboard/internal/i18n"
	"github.com/dykim/evalboard/internal/model"
)

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	byModel, err := h.store.StatsByModel()
	if err != nil {
		slog.Error("stats by model", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	byCategory, err := h.store.StatsByCategory()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	byModelCategory, err := h.store.StatsByModelCategory()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	accuracy, err := h.store.ItemAccuracy()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"by_model":          byModel,
		"by_category":       byCategory,
		"by_model_category": byModelCategory,
		"per_item_accuracy": accuracy,
	})
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ResultMatrix()
	if err != nil {
		slog.Error("result matrix", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []model.ResultRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": rows})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "UnsupportedFormat"))
		return
	}

	rows, err := h.store.ExportRows()
	if err != nil {
		slog.Error("export rows", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("results_%s.%s", time.Now().Format("20060102_150405"), format)
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, rows)
	case "json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		err = export.WriteJSON(w, rows)
	}
	if err != nil {
		slog.Error("write export", "format", format, "error", err)
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type userView struct {
		ID       int64      `json:"id"`
		Username string     `json:"username"`
		Role     model.Role `json:"role"`
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || password == "" {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "MissingFields"))
		return
	}
	if role == "" {
		role = string(model.RoleUser)
	}
	if role != string(model.RoleUser) && role != string(model.RoleAdmin) {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "MissingFields"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id, err := h.store.CreateUser(model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.Role(role),
	})
	if err != nil {
		http.Error(w, "failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": appI18n.T(r.Context(), "UserCreated"),
	})
}

func (h *Handler) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("dataset_file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "DatasetUnreadable"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "DatasetUnreadable"))
		return
	}

	items, err := dataset.Parse(data)
	if err != nil {
		var ve *dataset.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"message": appI18n.T(r.Context(), "DatasetInvalid"),
				"detail":  ve.Error(),
			})
			return
		}
		writeMessage(w, http.StatusBadRequest, appI18n.T(r.Context(), "DatasetUnreadable"))
		return
	}

	if err := h.store.ReplaceItems(items); err != nil {
		slog.Error("replace items", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("loaded dataset via admin", "filename", header.Filename, "count", len(items))
	writeMessage(w, http.StatusOK,
		appI18n.Td(r.Context(), "DatasetLoaded", map[string]any{"Count": len(items)}))
}
