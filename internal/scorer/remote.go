package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clair-gutierrez/sitetack/internal/encode"
)

// Encoding selects how a batch is sent to a model server.
type Encoding string

const (
	// EncodingIndices sends [count, L] alphabet indices.
	EncodingIndices Encoding = "indices"
	// EncodingOneHot sends [count, L, |alphabet|] one-hot vectors.
	EncodingOneHot Encoding = "onehot"
	// EncodingOneHotChannel adds a trailing channel axis: [count, L, |alphabet|, 1].
	EncodingOneHotChannel Encoding = "onehot_channel"
)

// ParseEncoding resolves a configured encoding name; "" means one-hot.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EncodingOneHot, nil
	case EncodingIndices, EncodingOneHot, EncodingOneHotChannel:
		return e, nil
	default:
		return "", fmt.Errorf("unknown batch encoding %q", s)
	}
}

// predictRequest mirrors the TensorFlow Serving REST "row" format.
type predictRequest struct {
	Instances any `json:"instances"`
}

// predictResponse accepts either [p, ...] or [[p], ...] / [[p0, p1], ...].
type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Error       string            `json:"error"`
}

// Remote scores batches against a model server speaking the TensorFlow
// Serving REST predict API, e.g.
// POST {BaseURL}/v1/models/{Model}:predict.
type Remote struct {
	BaseURL  string
	Model    string
	Encoding Encoding
	// Client performs requests; tests may replace it with a mock transport.
	Client *http.Client
}

// NewRemote returns a Remote with a client bounded by timeout.
func NewRemote(baseURL, model string, enc Encoding, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Remote{
		BaseURL:  baseURL,
		Model:    model,
		Encoding: enc,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (r *Remote) instances(batch encode.Batch) any {
	switch r.Encoding {
	case EncodingIndices:
		return batch.Indices
	case EncodingOneHotChannel:
		oh := batch.OneHot()
		out := make([][][][]float32, len(oh))
		for i, win := range oh {
			out[i] = make([][][]float32, len(win))
			for j, vec := range win {
				out[i][j] = make([][]float32, len(vec))
				for k, v := range vec {
					out[i][j][k] = []float32{v}
				}
			}
		}
		return out
	default:
		return batch.OneHot()
	}
}

// Score posts the batch and returns the positive-class probability of each
// window. When the server returns several outputs per window the last one
// is taken.
func (r *Remote) Score(ctx context.Context, batch encode.Batch) ([]float64, error) {
	if batch.Len() == 0 {
		return nil, nil
	}
	body, err := json.Marshal(predictRequest{Instances: r.instances(batch)})
	if err != nil {
		return nil, err
	}

	predictURL := strings.TrimRight(r.BaseURL, "/") + "/v1/models/" + r.Model + ":predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, predictURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model %s predict failed: %s: %s", r.Model, resp.Status, string(data))
	}

	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %v (body: %s)", err, string(data))
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model %s rejected batch: %s", r.Model, out.Error)
	}

	probs := make([]float64, len(out.Predictions))
	for i, raw := range out.Predictions {
		p, err := lastFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		probs[i] = p
	}
	return probs, nil
}

func lastFloat(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var fs []float64
	if err := json.Unmarshal(raw, &fs); err != nil {
		return 0, fmt.Errorf("unexpected prediction %s", string(raw))
	}
	if len(fs) == 0 {
		return 0, fmt.Errorf("empty prediction")
	}
	return fs[len(fs)-1], nil
}
