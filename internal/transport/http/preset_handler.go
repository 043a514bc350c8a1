package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "spendscope/internal/errors"
	"spendscope/internal/mapping"
)

// PresetHandler manages saved column-mapping presets.
type PresetHandler struct {
	store        mapping.PresetStore
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPresetHandler creates a preset handler.
func NewPresetHandler(store mapping.PresetStore, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PresetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresetHandler{
		store:        store,
		logger:       logger.With(slog.String("component", "preset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the preset routes.
func (h *PresetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Route("/{name}", func(r chi.Router) {
		r.Use(h.NameCtx)
		r.Get("/", h.Get)
		r.Put("/", h.Save)
		r.Delete("/", h.Delete)
	})
	return r
}

// NameCtx validates the preset name parameter.
func (h *PresetHandler) NameCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || len(name) > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "Preset name must be 1-100 characters"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// List handles GET /api/v1/presets.
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	render.JSON(w, r, map[string]interface{}{"presets": names})
}

// Get handles GET /api/v1/presets/{name}.
func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	fm, ok, err := h.store.Load(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrPresetNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"name":    name,
		"mapping": fm.Assignments(),
	})
}

// Save handles PUT /api/v1/presets/{name}. The body carries the
// alias-id → source-column assignments, the shape mapping.Resolve
// accepts.
func (h *PresetHandler) Save(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body struct {
		Mapping map[string]string `json:"mapping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if len(body.Mapping) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mapping", "At least one column assignment is required"))
		return
	}

	fm := mapping.Resolve(body.Mapping)
	if err := h.store.Save(name, fm); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "preset saved",
		slog.String("name", name),
		slog.Int("assignments", len(body.Mapping)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"name":    name,
		"mapping": fm.Assignments(),
	})
}

// Delete handles DELETE /api/v1/presets/{name}.
func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.Delete(name); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
