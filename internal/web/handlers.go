package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tcgmatch/internal/core"
)

// Download file names.
const (
	outputFilename      = "tcgplayer_upload.csv"
	failuresFilePattern = "failed_rows_%s.csv"
)

// multipartOverhead is the slack allowed on top of the input limit for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

// ConversionResponse is the JSON body describing a finished conversion.
type ConversionResponse struct {
	ID         string       `json:"id"`
	Layout     core.Layout  `json:"layout"`
	Summary    core.Summary `json:"summary"`
	DurationMs int64        `json:"durationMs"`
	CreatedAt  time.Time    `json:"createdAt"`
	Links      Links        `json:"links"`
}

// Links point at the downloads of a conversion.
type Links struct {
	Self     string `json:"self"`
	Output   string `json:"output"`
	Failures string `json:"failures,omitempty"`
}

func toResponse(res *core.Result) ConversionResponse {
	base := "/api/convert/" + res.ID
	resp := ConversionResponse{
		ID:         res.ID,
		Layout:     res.Layout,
		Summary:    res.Summary,
		DurationMs: res.Duration.Milliseconds(),
		CreatedAt:  res.CreatedAt,
		Links: Links{
			Self:   base,
			Output: base + "/output",
		},
	}
	if res.Failures != nil {
		resp.Links.Failures = base + "/failures"
	}
	return resp
}

// handleConvert accepts a collection export as a multipart "file" part or as
// a raw CSV body and runs the conversion synchronously.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	maxSize := s.cfg.Convert.MaxInputSize
	body, closeBody, err := requestInput(w, r, maxSize)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer closeBody()

	res, err := s.service.Convert(r.Context(), body, opts)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			err = fmt.Errorf("%w: %v", core.ErrInputTooLarge, err)
		}
		respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Location", "/api/convert/"+res.ID)
	writeJSON(w, http.StatusCreated, toResponse(res))
}

// parseOptions reads the layout, failures and errors query parameters.
func parseOptions(r *http.Request) (core.Options, error) {
	q := r.URL.Query()

	layout, err := core.ParseLayout(q.Get("layout"))
	if err != nil {
		return core.Options{}, err
	}
	opts := core.Options{Layout: layout, IncludeFailures: true}

	if v := q.Get("failures"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return core.Options{}, fmt.Errorf("invalid parameter failures=%q", v)
		}
		opts.IncludeFailures = include
	}
	if v := q.Get("errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return core.Options{}, fmt.Errorf("invalid parameter errors=%q", v)
		}
		opts.ErrorSample = n
	}
	return opts, nil
}

// requestInput returns the CSV stream of r, bounded by maxSize.
func requestInput(w http.ResponseWriter, r *http.Request, maxSize int64) (io.Reader, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)
		return r.Body, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, noop, fmt.Errorf("%w: %v", core.ErrInputTooLarge, err)
		}
		return nil, noop, fmt.Errorf("%w: %v", core.ErrInvalidCSV, err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, noop, errNoFile
	}
	return file, func() {
		file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}, nil
}

// handleConversion returns the summary of a retained conversion.
func (s *Server) handleConversion(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

// handleOutput downloads the success export.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeAttachment(w, outputFilename, res.Output)
}

// handleFailures downloads the failure export.
func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if res.Failures == nil {
		respondError(w, r, core.ErrNoFailureExport, 0)
		return
	}

	filename := fmt.Sprintf(failuresFilePattern, res.CreatedAt.Format("20060102_150405"))
	writeAttachment(w, filename, res.Failures)
}

// handleStatus returns the current state of the conversion limiter.
// Used for monitoring and to check if the system can accept more work.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// handleHealth pings the catalog when a health check is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			respondError(w, r, fmt.Errorf("catalog: fetch health: %w", err), http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
