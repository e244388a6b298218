package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clair-gutierrez/sitetack/internal/config"
	"github.com/clair-gutierrez/sitetack/internal/fasta"
	"github.com/clair-gutierrez/sitetack/internal/jobs"
	"github.com/clair-gutierrez/sitetack/internal/model"
	"github.com/clair-gutierrez/sitetack/internal/predict"
)

const (
	// maxSubmitBytes bounds a submitted FASTA body.
	maxSubmitBytes = 8 << 20
	saveTimeout    = 10 * time.Second
)

type server struct {
	cfg      *config.Config
	registry *model.Registry
	store    jobs.Store
	tmpl     *template.Template
	logger   *log.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("POST /submit/", s.submitHandler)
	mux.HandleFunc("GET /ptms", kindsHandler(model.PtmDict()))
	mux.HandleFunc("GET /organisms", kindsHandler(model.OrganismDict()))
	mux.HandleFunc("GET /labels", kindsHandler(model.LabelDict()))
	mux.HandleFunc("GET /api/jobs", s.apiJobsHandler)
	mux.HandleFunc("GET /api/job/{id}", s.apiJobHandler)
	mux.HandleFunc("GET /api/job/{id}/csv", s.apiJobCSVHandler)
	return mux
}

// submitRequest is the body of POST /submit/.
type submitRequest struct {
	PTM      string `json:"ptm"`
	Organism string `json:"organism"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
	JobID  string `json:"job_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type indexPage struct {
	Ptms      []model.PtmKind
	Organisms []model.OrganismKind
	Labels    []model.LabelKind
	Models    int
}

func (s *server) indexHandler(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Ptms:      model.PtmKinds(),
		Organisms: model.OrganismKinds(),
		Labels:    model.LabelKinds(),
		Models:    s.registry.Len(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		s.logger.Error("render index", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func kindsHandler[T any](dict map[string]T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dict)
	}
}

// submitHandler validates and scores a FASTA text against the chosen model.
// The reply body is the prediction tree; the job id is in X-Job-Id.
func (s *server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	k, err := model.ParseKey(req.PTM, req.Organism, req.Label)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	p, err := predict.ForKey(s.registry, k, s.cfg.KmerLength)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	p.Concurrency = s.cfg.Concurrency
	p.Logger = s.logger.With("model", k.String())

	job := jobs.New(k)
	job.Start()
	s.saveJob(r.Context(), job)

	ctx, cancel := context.WithTimeout(r.Context(), 4*time.Minute)
	defer cancel()
	res, err := p.OnFasta(ctx, req.Text)
	job.Finish(res, err)
	s.saveJob(r.Context(), job)
	w.Header().Set("X-Job-Id", job.ID)

	if err != nil {
		if ve, ok := fasta.AsValidationError(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Detail: ve.Reason, Kind: ve.Kind.String(), Line: ve.Line, JobID: job.ID,
			})
			return
		}
		s.logger.Error("prediction failed", "job", job.ID, "model", k.String(), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "prediction failed", JobID: job.ID})
		return
	}
	s.logger.Info("prediction done", "job", job.ID, "model", k.String(), "records", job.Records, "sites", job.Sites)
	writeJSON(w, http.StatusOK, res)
}

// saveJob persists j even when the request that produced it was canceled,
// so a disconnected client still leaves the job in a final state.
func (s *server) saveJob(ctx context.Context, j jobs.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, j); err != nil {
		s.logger.Warn("failed to persist job", "job", j.ID, "state", j.State, "err", err)
	}
}

func (s *server) apiJobsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list jobs", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to read jobs"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) lookupJob(w http.ResponseWriter, r *http.Request) (jobs.Job, bool) {
	id := r.PathValue("id")
	j, err := s.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "job not found", JobID: id})
		return jobs.Job{}, false
	}
	if err != nil {
		s.logger.Error("get job", "job", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to read job", JobID: id})
		return jobs.Job{}, false
	}
	return j, true
}

func (s *server) apiJobHandler(w http.ResponseWriter, r *http.Request) {
	if j, ok := s.lookupJob(w, r); ok {
		writeJSON(w, http.StatusOK, j)
	}
}

// apiJobCSVHandler exports a finished job. ?threshold=p keeps only sites
// above p.
func (s *server) apiJobCSVHandler(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if j.Result == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "job has no result (state " + string(j.State) + ")", JobID: j.ID})
		return
	}
	res := *j.Result
	if t := r.URL.Query().Get("threshold"); t != "" {
		threshold, err := strconv.ParseFloat(t, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid threshold " + strconv.Quote(t)})
			return
		}
		res = res.Filter(threshold)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="predictions.csv"`)
	if err := predict.WriteCSV(w, res); err != nil {
		s.logger.Warn("write csv", "job", j.ID, "err", err)
	}
}
