package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "spendscope/internal/errors"
	"spendscope/internal/grid"
	"spendscope/internal/mapping"
	"spendscope/internal/pipeline"
	"spendscope/pkg/contracts/domain"
)

// AnalysisHandler handles spreadsheet analysis requests with RFC 7807
// error responses.
type AnalysisHandler struct {
	pipeline     *pipeline.Pipeline
	presets      mapping.PresetStore
	defaults     pipeline.Input
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates an analysis handler. The defaults input
// seeds every run; form fields on the request override per call.
func NewAnalysisHandler(p *pipeline.Pipeline, presets mapping.PresetStore, defaults pipeline.Input, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		pipeline:     p,
		presets:      presets,
		defaults:     defaults,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Analyze)
	return r
}

// AnalysisResponse is the body returned by a successful analyze call.
type AnalysisResponse struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Header      grid.HeaderReport        `json:"header"`
	Mapping     map[string]string        `json:"mapping"`
	Snapshot    domain.AggregateSnapshot `json:"snapshot"`
	NoiseRows   int                      `json:"noise_rows"`
	BlankRows   int                      `json:"blank_rows"`
}

// Analyze handles POST /api/v1/analyze. The request is multipart with a
// "file" part carrying the workbook or CSV, plus optional option fields.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook or CSV file part is required"))
		return
	}
	defer file.Close()

	in, err := h.buildInput(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".xlsx", ".xlsm":
		in.Grid, err = grid.LoadWorkbookReader(file, in.Sheet)
	case ".csv":
		in.Grid, err = grid.LoadCSVReader(file, ',')
	case ".tsv":
		in.Grid, err = grid.LoadCSVReader(file, '\t')
	default:
		h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormatError(ext))
		return
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "upload could not be read",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r,
			apierrors.NewParsingError("uploaded file could not be parsed", err).
				WithContext("filename", header.Filename))
		return
	}

	// Pipeline errors carry their own type (parsing, storage,
	// cancellation) and are translated by the error handler directly.
	result, err := h.pipeline.Run(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, AnalysisResponse{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Header:      result.Header,
		Mapping:     result.Mapping.Assignments(),
		Snapshot:    result.Snapshot,
		NoiseRows:   result.NoiseRows,
		BlankRows:   result.BlankRows,
	})
}

// analyzeForm carries the request's option fields. Numeric fields are
// pointers so "not sent" and "zero" stay distinguishable.
type analyzeForm struct {
	Sheet       string   `validate:"max=255"`
	Currency    string   `validate:"omitempty,len=3,alpha"`
	HeaderRow   *int     `validate:"omitempty,min=0"`
	FiscalStart *int     `validate:"omitempty,min=0,max=11"`
	TailMult    *float64 `validate:"omitempty,gt=0"`
	Preset      string   `validate:"max=100"`
}

var formValidate = validator.New()

func parseForm(r *http.Request) (analyzeForm, error) {
	f := analyzeForm{
		Sheet:    r.FormValue("sheet"),
		Currency: r.FormValue("currency"),
		Preset:   r.FormValue("preset"),
	}
	if v := r.FormValue("header_row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apierrors.ErrValidation("header_row", "Header row must be an integer")
		}
		f.HeaderRow = &n
	}
	if v := r.FormValue("fiscal_year_start_month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apierrors.ErrValidation("fiscal_year_start_month", "Fiscal year start month must be an integer")
		}
		f.FiscalStart = &n
	}
	if v := r.FormValue("tail_spend_multiplier"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, apierrors.ErrValidation("tail_spend_multiplier", "Tail spend multiplier must be a number")
		}
		f.TailMult = &x
	}

	if err := formValidate.Struct(f); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]apierrors.ValidationError, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, apierrors.ValidationError{
					Field:   formFieldName(fe.StructField()),
					Message: "failed validation rule: " + fe.Tag(),
				})
			}
			return f, apierrors.NewValidationErrors(fields)
		}
		return f, err
	}
	return f, nil
}

func formFieldName(structField string) string {
	switch structField {
	case "Sheet":
		return "sheet"
	case "Currency":
		return "currency"
	case "HeaderRow":
		return "header_row"
	case "FiscalStart":
		return "fiscal_year_start_month"
	case "TailMult":
		return "tail_spend_multiplier"
	case "Preset":
		return "preset"
	}
	return structField
}

// buildInput merges the handler defaults with the request's form
// fields. It never sets OutputDir: HTTP runs return the snapshot
// inline and write no artifacts.
func (h *AnalysisHandler) buildInput(r *http.Request) (pipeline.Input, error) {
	in := h.defaults
	in.OutputDir = ""
	if in.HeaderRow == 0 {
		in.HeaderRow = pipeline.AutoDetectHeader
	}

	f, err := parseForm(r)
	if err != nil {
		return in, err
	}

	if f.Sheet != "" {
		in.Sheet = f.Sheet
	}
	if f.Currency != "" {
		in.ReportingCurrency = strings.ToUpper(f.Currency)
	}
	if f.HeaderRow != nil {
		in.HeaderRow = *f.HeaderRow
	}
	if f.FiscalStart != nil {
		in.Options.FiscalYearStartMonth = f.FiscalStart
	}
	if f.TailMult != nil {
		in.Options.TailSpendMultiplier = *f.TailMult
	}
	if f.Preset != "" {
		fm, ok, err := h.presets.Load(f.Preset)
		if err != nil {
			return in, err
		}
		if !ok {
			return in, apierrors.ErrPresetNotFound
		}
		in.Mapping = fm
	}
	return in, nil
}
