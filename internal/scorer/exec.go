package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/clair-gutierrez/sitetack/internal/encode"
)

// Exec scores batches by running an external program, typically a small
// wrapper around the trained model. The batch is written to a temporary
// JSON file passed as the last argument; the program prints a JSON array of
// probabilities on stdout.
type Exec struct {
	Path     string
	Args     []string
	Encoding Encoding
	// Timeout bounds a single invocation; 0 means one minute.
	Timeout time.Duration
}

func (e Exec) Score(ctx context.Context, batch encode.Batch) ([]float64, error) {
	if batch.Len() == 0 {
		return nil, nil
	}
	if e.Path == "" {
		return nil, fmt.Errorf("exec scorer: no program configured")
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	tf, err := os.CreateTemp("", "batch-*.json")
	if err != nil {
		return nil, err
	}
	fname := tf.Name()
	defer os.Remove(fname)

	r := Remote{Encoding: e.Encoding}
	if err := json.NewEncoder(tf).Encode(predictRequest{Instances: r.instances(batch)}); err != nil {
		tf.Close()
		return nil, err
	}
	if err := tf.Close(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	args := append(append([]string(nil), e.Args...), fname)
	cmd := exec.CommandContext(ctx, e.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("exec scorer %s: %w: %s", e.Path, err, stderr.String())
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("exec scorer %s: parse output: %w", e.Path, err)
	}
	probs := make([]float64, len(raw))
	for i, r := range raw {
		p, err := lastFloat(r)
		if err != nil {
			return nil, fmt.Errorf("exec scorer %s: prediction %d: %w", e.Path, i, err)
		}
		probs[i] = p
	}
	return probs, nil
}
