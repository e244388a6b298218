// Package jobs records prediction submissions so they can be listed and
// fetched again after the request that produced them.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clair-gutierrez/sitetack/internal/model"
	"github.com/clair-gutierrez/sitetack/internal/predict"
)

// ErrNotFound means no job has the requested id.
var ErrNotFound = errors.New("job not found")

type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Job is one submission and, once done, its predictions.
type Job struct {
	ID        string                       `json:"id"`
	PTM       string                       `json:"ptm"`
	Organism  string                       `json:"organism"`
	Label     string                       `json:"label"`
	State     State                        `json:"state"`
	Message   string                       `json:"message,omitempty"`
	Records   int                          `json:"records"`
	Sites     int                          `json:"sites"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
	Result    *predict.SequencePredictions `json:"result,omitempty"`
}

// New returns a queued job for k with a fresh random id.
func New(k model.Key) Job {
	now := time.Now().UTC()
	return Job{
		ID:        uuid.NewString(),
		PTM:       k.Ptm.String(),
		Organism:  k.Organism.String(),
		Label:     k.Label.String(),
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start marks the job running.
func (j *Job) Start() {
	j.State = StateRunning
	j.UpdatedAt = time.Now().UTC()
}

// Finish records the outcome. A nil err stores res and marks the job done.
func (j *Job) Finish(res predict.SequencePredictions, err error) {
	j.UpdatedAt = time.Now().UTC()
	if err != nil {
		j.State = StateFailed
		j.Message = err.Error()
		j.Result = nil
		return
	}
	j.State = StateDone
	j.Message = ""
	j.Records = len(res.SequencePredictions)
	j.Sites = res.Sites()
	j.Result = &res
}

// Summary drops the result, for listings.
func (j Job) Summary() Job {
	j.Result = nil
	return j
}

// Store persists jobs.
type Store interface {
	Save(ctx context.Context, j Job) error
	Get(ctx context.Context, id string) (Job, error)
	// List returns every job without results, newest first.
	List(ctx context.Context) ([]Job, error)
	Close() error
}

// Open returns the store named by kind ("json" or "sqlite") at path.
func Open(kind, path string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(kind) {
	case "json", "":
		s, err = OpenJSON(path)
	case "sqlite":
		s, err = OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown jobs store %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s jobs store %s: %w", kind, path, err)
	}
	return s, nil
}

func newestFirst(js []Job) {
	sort.SliceStable(js, func(a, b int) bool {
		if !js[a].CreatedAt.Equal(js[b].CreatedAt) {
			return js[a].CreatedAt.After(js[b].CreatedAt)
		}
		return js[a].ID < js[b].ID
	})
}
