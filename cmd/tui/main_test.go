package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clair-gutierrez/sitetack/internal/predict"
)

func samplePreds() []predict.SequencePrediction {
	return []predict.SequencePrediction{{
		SequenceName: "p1",
		Sequence:     "SMASLEKS",
		SitePredictions: []predict.SitePrediction{
			{Site: 1, AminoAcid: "S", Probability: 0.9},
			{Site: 4, AminoAcid: "S", Probability: 0.3},
			{Site: 8, AminoAcid: "S", Probability: 0.6},
		},
	}}
}

func TestCycleMode(t *testing.T) {
	m := initialModel(samplePreds(), 0.5, 7)
	if m.currentMode != modeSequence {
		t.Fatalf("expected initial mode sequence, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeSites {
		t.Fatalf("expected sites, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeWindows {
		t.Fatalf("expected windows, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeSequence {
		t.Fatalf("expected sequence, got %v", m.currentMode)
	}
}

func TestAdjustThresholdClamps(t *testing.T) {
	m := initialModel(samplePreds(), 0.95, 7)
	m = m.adjustThreshold(thresholdStep)
	m = m.adjustThreshold(thresholdStep)
	if m.threshold != 1 {
		t.Fatalf("expected clamp at 1, got %v", m.threshold)
	}
	m = initialModel(samplePreds(), 0.05, 7)
	m = m.adjustThreshold(-thresholdStep)
	m = m.adjustThreshold(-thresholdStep)
	if m.threshold != 0 {
		t.Fatalf("expected clamp at 0, got %v", m.threshold)
	}
	if got := hits(samplePreds()[0], m.threshold); got != 3 {
		t.Fatalf("expected every site above 0, got %d", got)
	}
}

func TestBuildRightLinesWrap(t *testing.T) {
	m := initialModel(samplePreds(), 0.5, 7)
	m.width = 30
	m.height = 20
	rec := predict.SequencePrediction{SequenceName: "long", Sequence: strings.Repeat("MKT", 20)}
	lines := m.buildRightLines(rec)
	// title, blank, then 60 residues at 14 per line
	if len(lines) != 2+5 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
}

func TestWindowLines(t *testing.T) {
	m := initialModel(samplePreds(), 0.5, 7)
	m.currentMode = modeWindows
	lines := m.buildRightLines(samplePreds()[0])
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 windows, got %d", len(lines))
	}
	for i, w := range []string{"---SMAS", "SMASLEK", "LEKS---"} {
		if !strings.Contains(lines[i+1], w) {
			t.Fatalf("line %d %q missing window %s", i+1, lines[i+1], w)
		}
	}
}

func TestLoadPredictions(t *testing.T) {
	p := filepath.Join(t.TempDir(), "predictions.json")
	data := `{"sequence_predictions":[{"sequence_name":"p1","sequence":"S","site_predictions":[{"site":1,"amino_acid":"S","probability":0.5}]}]}`
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	preds, err := loadPredictions(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 1 || preds[0].SitePredictions[0].Probability != 0.5 {
		t.Fatalf("unexpected predictions %+v", preds)
	}
}
