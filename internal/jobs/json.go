package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// JSONStore keeps every job in one JSON array file, rewritten on each save.
type JSONStore struct {
	path string
	mu   sync.Mutex
	jobs map[string]Job
}

// OpenJSON loads path if it exists.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, jobs: make(map[string]Job)}
	loaded, err := loadJobs(path)
	if err != nil {
		return nil, err
	}
	for _, j := range loaded {
		s.jobs[j.ID] = j
	}
	return s, nil
}

func loadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var js []Job
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("jobs file %s: %w", path, err)
	}
	return js, nil
}

func saveJobs(path string, js []Job) error {
	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *JSONStore) Save(_ context.Context, j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.jobs[j.ID]
	s.jobs[j.ID] = j
	all := make([]Job, 0, len(s.jobs))
	for _, v := range s.jobs {
		all = append(all, v)
	}
	newestFirst(all)
	if err := saveJobs(s.path, all); err != nil {
		if had {
			s.jobs[j.ID] = prev
		} else {
			delete(s.jobs, j.ID)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, nil
}

func (s *JSONStore) List(_ context.Context) ([]Job, error) {
	s.mu.Lock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Summary())
	}
	s.mu.Unlock()
	newestFirst(out)
	return out, nil
}

func (s *JSONStore) Close() error { return nil }
