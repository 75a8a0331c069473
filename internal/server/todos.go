package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

const collectionPath = "/todos"

// TodosHandler serves the item collection:
//
//	GET    /todos[?completed=0|1]  list, in insertion order
//	POST   /todos/                 create; 201 with the stored item
//	GET    /todos/{id}             fetch one
//	PUT    /todos/{id}             replace name and completed; 200 with the stored item
//	DELETE /todos/{id}             204
type TodosHandler struct {
	repo   models.Repository
	logger *log.Logger
}

// NewTodosHandler creates a [TodosHandler] over repo.
func NewTodosHandler(repo models.Repository, logger *log.Logger) *TodosHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TodosHandler{repo: repo, logger: shared.WithLogger(logger, "component", "todos")}
}

// Routes returns the HTTP routes this handler serves.
func (h *TodosHandler) Routes() []string {
	return []string{collectionPath, collectionPath + "/"}
}

// ServeHTTP dispatches on path shape and method.
func (h *TodosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, collectionPath), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}

	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid item id %q", rest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *TodosHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCompleted(r.URL.Query().Get("completed"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.repo.List(filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TodosHandler) create(w http.ResponseWriter, r *http.Request) {
	var body models.ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.repo.Create(body)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Debug("item created", "id", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *TodosHandler) get(w http.ResponseWriter, id int) {
	item, err := h.repo.Get(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *TodosHandler) update(w http.ResponseWriter, r *http.Request, id int) {
	var body models.ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.repo.Update(id, body)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *TodosHandler) delete(w http.ResponseWriter, id int) {
	if err := h.repo.Delete(id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps repository errors to status codes.
func (h *TodosHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("repository failure", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseCompleted reads the completed query parameter. Both 0/1 and false/true are accepted.
func parseCompleted(v string) (models.Filter, error) {
	switch strings.ToLower(v) {
	case "":
		return models.FilterAll, nil
	case "0", "false":
		return models.FilterActive, nil
	case "1", "true":
		return models.FilterCompleted, nil
	default:
		return models.FilterAll, fmt.Errorf("invalid completed value %q", v)
	}
}
