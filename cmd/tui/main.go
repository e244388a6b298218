package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/clair-gutierrez/sitetack/internal/kmer"
	"github.com/clair-gutierrez/sitetack/internal/predict"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	sectionStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	// residues in the sequence view
	hitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(secondaryColor).Bold(true)
	siteStyle = lipgloss.NewStyle().Foreground(accentColor).Underline(true)
)

type listItem struct {
	pred      predict.SequencePrediction
	threshold float64
}

func (i listItem) FilterValue() string { return i.pred.SequenceName }

func (i listItem) Title() string { return i.pred.SequenceName }

func (i listItem) Description() string {
	return fmt.Sprintf("Length: %d    Sites: %d    Hits: %d",
		len(i.pred.Sequence), len(i.pred.SitePredictions), hits(i.pred, i.threshold))
}

func hits(p predict.SequencePrediction, threshold float64) int {
	n := 0
	for _, s := range p.SitePredictions {
		if s.Above(threshold) {
			n++
		}
	}
	return n
}

type mode int

const (
	modeSequence mode = iota
	modeSites
	modeWindows
)

func (m mode) String() string {
	switch m {
	case modeSequence:
		return "Sequence"
	case modeSites:
		return "Sites"
	case modeWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

const thresholdStep = 0.05

type model struct {
	list        list.Model
	preds       []predict.SequencePrediction
	currentMode mode
	threshold   float64
	kmerLength  int
	showHelp    bool
	width       int
	height      int
}

func initialModel(preds []predict.SequencePrediction, threshold float64, kmerLength int) model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sequences"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	m := model{
		list:        l,
		preds:       preds,
		currentMode: modeSequence,
		threshold:   threshold,
		kmerLength:  kmerLength,
	}
	m.refreshItems()
	return m
}

// refreshItems rebuilds list items so descriptions follow the threshold.
func (m *model) refreshItems() {
	items := make([]list.Item, len(m.preds))
	for i, p := range m.preds {
		items[i] = listItem{pred: p, threshold: m.threshold}
	}
	m.list.SetItems(items)
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) adjustThreshold(delta float64) model {
	t := m.threshold + delta
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	// keep steps exact for display
	m.threshold = float64(int(t*100+0.5)) / 100
	m.refreshItems()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.showHelp = !m.showHelp
			return m, nil
		case "tab":
			return m.cycleMode(), nil
		case "1":
			m.currentMode = modeSequence
			return m, nil
		case "2":
			m.currentMode = modeSites
			return m, nil
		case "3":
			m.currentMode = modeWindows
			return m, nil
		case "+", "=":
			return m.adjustThreshold(thresholdStep), nil
		case "-", "_":
			return m.adjustThreshold(-thresholdStep), nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeftPanel(), m.renderRightPanel())
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3
	panel := containerStyle.Width(rightWidth - 2).Height(m.height - 4)

	if len(m.preds) == 0 {
		return panel.Render("No predictions loaded")
	}
	item, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return panel.Render("No sequence selected")
	}
	p := item.pred
	header := titleStyle.Render(p.SequenceName)
	meta := labelStyle.Render(fmt.Sprintf("Length: %d    Sites: %d    Above %.2f: %d",
		len(p.Sequence), len(p.SitePredictions), m.threshold, hits(p, m.threshold)))

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		append([]string{header, meta, ""}, m.buildRightLines(p)...)...))
}

// contentWidth is the number of residues shown per line in the right panel.
func (m model) contentWidth() int {
	w := m.width*2/3 - 6
	if w < 10 {
		w = 10
	}
	return w
}

// buildRightLines renders the selected record for the current mode.
func (m model) buildRightLines(p predict.SequencePrediction) []string {
	switch m.currentMode {
	case modeSites:
		return m.siteLines(p)
	case modeWindows:
		return m.windowLines(p)
	default:
		return m.sequenceLines(p)
	}
}

func (m model) sequenceLines(p predict.SequencePrediction) []string {
	if p.Sequence == "" {
		return []string{labelStyle.Render("No sequence available")}
	}
	prob := make(map[int]float64, len(p.SitePredictions))
	for _, s := range p.SitePredictions {
		prob[s.Site] = s.Probability
	}

	width := m.contentWidth()
	lines := []string{sectionStyle.Render("Sequence:"), ""}
	var b strings.Builder
	for i := 0; i < len(p.Sequence); i++ {
		c := string(p.Sequence[i])
		if v, ok := prob[i+1]; ok {
			if v > m.threshold {
				c = hitStyle.Render(c)
			} else {
				c = siteStyle.Render(c)
			}
		}
		b.WriteString(c)
		if (i+1)%width == 0 {
			lines = append(lines, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

func (m model) siteLines(p predict.SequencePrediction) []string {
	lines := []string{sectionStyle.Render(fmt.Sprintf("%-8s %-10s %s", "Site", "Residue", "Probability"))}
	for _, s := range p.SitePredictions {
		row := fmt.Sprintf("%-8d %-10s %.4f", s.Site, s.AminoAcid, s.Probability)
		if s.Above(m.threshold) {
			row = hitStyle.Render(row)
		}
		lines = append(lines, row)
	}
	if len(p.SitePredictions) == 0 {
		lines = append(lines, labelStyle.Render("No candidate sites"))
	}
	return lines
}

func (m model) windowLines(p predict.SequencePrediction) []string {
	lines := []string{sectionStyle.Render(fmt.Sprintf("Windows (length %d):", m.kmerLength))}
	for _, s := range p.SitePredictions {
		w, err := kmer.Extract(p.Sequence, s.Site, m.kmerLength)
		if err != nil {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%6d  %v", s.Site, err)))
			continue
		}
		row := fmt.Sprintf("%6d  %s  %.4f", s.Site, w.Subsequence, s.Probability)
		if s.Above(m.threshold) {
			row = hitStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return lines
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d sequences", m.list.Index()+1, len(m.preds))
	centerInfo := fmt.Sprintf("Mode: %s    Threshold: %.2f", m.currentMode, m.threshold)
	rightInfo := "Press 'h' for help, 'q' to quit"

	spacing := m.width - len(leftInfo) - len(centerInfo) - len(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		statusContent = leftInfo + strings.Repeat(" ", spacing/2) + centerInfo + strings.Repeat(" ", spacing-spacing/2) + rightInfo
	} else {
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `Sitetack Predictions Browser - Help

Navigation:
  ↑/↓, j/k     Navigate sequences
  /            Filter by name

View Modes:
  1            Sequence with highlighted sites
  2            Site table
  3            Windows around each site
  Tab          Next mode

Threshold:
  +/-          Raise or lower by 0.05

General:
  h            Toggle this help
  q, Ctrl+C    Quit
`
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func loadPredictions(path string) ([]predict.SequencePrediction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res predict.SequencePredictions
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res.SequencePredictions, nil
}

func main() {
	in := flag.String("in", "predictions.json", "predictions JSON written by sitetack predict")
	threshold := flag.Float64("threshold", 0.5, "initial highlight threshold")
	kmerLength := flag.Int("kmer-length", predict.DefaultKmerLength, "window length for the windows view")
	flag.Parse()

	preds, err := loadPredictions(*in)
	if err != nil {
		log.Fatal("failed to load predictions", "path", *in, "err", err)
	}
	p := tea.NewProgram(initialModel(preds, *threshold, *kmerLength), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
