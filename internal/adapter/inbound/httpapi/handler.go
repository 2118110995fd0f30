package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/jonny/edudiag/internal/adapter/inbound/httpapi/middleware"
	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/inbound"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
	"github.com/jonny/edudiag/internal/domain/service"
	"github.com/jonny/edudiag/internal/validation"
	"github.com/jonny/edudiag/pkg/apierror"
)

// Handler serves the diagnosis JSON API.
type Handler struct {
	diagnoser inbound.Diagnoser
	whitelist validation.Whitelist
	logger    *slog.Logger
}

func NewHandler(diagnoser inbound.Diagnoser, whitelist validation.Whitelist, logger *slog.Logger) *Handler {
	return &Handler{
		diagnoser: diagnoser,
		whitelist: validation.NewWhitelist(whitelist.Browsers, whitelist.Connections),
		logger:    logger,
	}
}

// Symptoms handles GET /api/symptoms.
func (h *Handler) Symptoms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"symptoms": h.diagnoser.Symptoms()})
}

// Diagnose handles POST /api/diagnose. The best diagnosis is persisted; with
// ?all=true every derived diagnosis is returned and nothing is persisted.
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		apierror.Write(w, apierror.UnsupportedMediaType("request body must be application/json"))
		return
	}

	var req model.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.WithDetail(http.StatusBadRequest, "malformed JSON body", err.Error()))
		return
	}
	if rej := h.whitelist.Check(req); rej != nil {
		apierror.Write(w, apierror.NotAllowed(rej.Message, rej.Allowed))
		return
	}

	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		diags, err := h.diagnoser.Diagnose(r.Context(), req)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, diags)
		return
	}

	best, err := h.diagnoser.Best(r.Context(), req, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

// History handles GET /api/diagnosis.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := outbound.PageRequest{}
	for name, dst := range map[string]*int{"page": &page.Page, "limit": &page.Size} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apierror.Write(w, apierror.BadRequest("invalid "+name+": "+v))
			return
		}
		*dst = n
	}

	filter := outbound.HistoryFilter{
		ProblemType: q.Get("problem_type"),
		Cause:       q.Get("cause"),
	}
	result, err := h.diagnoser.History(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.TotalCount, 10))
	writeJSON(w, http.StatusOK, result.Items)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case model.IsValidationError(err):
		apierror.Write(w, apierror.BadRequest(err.Error()))
	case errors.Is(err, model.ErrNoDiagnosis):
		apierror.Write(w, apierror.Unprocessable(err.Error()))
	case errors.Is(err, service.ErrHistoryDisabled):
		apierror.Write(w, apierror.Unavailable(err.Error()))
	default:
		h.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		apierror.Write(w, apierror.Internal("internal error"))
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
