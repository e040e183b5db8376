package packer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/packer/internal/knapsack"
	"github.com/eugenenazirov/packer/internal/metrics"
	"github.com/eugenenazirov/packer/internal/parser"
)

const maxLineBytes = 1 << 20

// LimitsFunc supplies the validation limits for a run.
type LimitsFunc func() (parser.Limits, error)

// Packer reads package lines, validates them and optimises every package.
type Packer struct {
	optimizer knapsack.Optimizer
	limits    LimitsFunc
	logger    *zap.Logger
	metrics   metrics.Recorder
}

// Option configures Packer behaviour.
type Option func(*Packer)

// WithOptimizer overrides the default dynamic programming optimizer.
func WithOptimizer(opt knapsack.Optimizer) Option {
	return func(p *Packer) {
		p.optimizer = opt
	}
}

// WithLimits sets the source of validation limits, consulted once per run.
func WithLimits(fn LimitsFunc) Option {
	return func(p *Packer) {
		p.limits = fn
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Packer) {
		p.logger = logger
	}
}

// WithMetrics sets the recorder notified about solved and rejected packages.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(p *Packer) {
		p.metrics = recorder
	}
}

// New constructs a Packer with default limits, the DP optimizer and no-op
// logging and metrics.
func New(opts ...Option) *Packer {
	p := &Packer{
		optimizer: knapsack.New(),
		limits: func() (parser.Limits, error) {
			return parser.DefaultLimits(), nil
		},
		logger:  zap.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewNop()
	}
	return p
}

// PackFile reads the file at path and returns one rendered selection per line.
// Any failure is returned as a *FileError.
func (p *Packer) PackFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	selections, err := p.Pack(f)
	if err != nil {
		p.logger.Warn("packing failed", zap.String("path", path), zap.Error(err))
		return "", &FileError{Path: path, Err: err}
	}

	p.logger.Debug("file packed", zap.String("path", path), zap.Int("packages", len(selections)))
	return Render(selections), nil
}

// PackText packs newline-separated package lines.
func (p *Packer) PackText(input string) ([]knapsack.Selection, error) {
	return p.Pack(strings.NewReader(input))
}

// Pack parses every line from r before solving anything, so one malformed
// line fails the whole batch. Selections are returned in line order.
func (p *Packer) Pack(r io.Reader) ([]knapsack.Selection, error) {
	packages, err := p.parse(r)
	if err != nil {
		return nil, err
	}

	selections := make([]knapsack.Selection, 0, len(packages))
	for _, pkg := range packages {
		start := time.Now()
		selection := p.optimizer.Solve(pkg)
		p.metrics.PackageSolved(len(pkg.Items), len(selection.Items), time.Since(start))
		selections = append(selections, selection)
	}
	return selections, nil
}

func (p *Packer) parse(r io.Reader) ([]knapsack.Package, error) {
	limits, err := p.limits()
	if err != nil {
		return nil, fmt.Errorf("load limits: %w", err)
	}
	lineParser := parser.New(limits)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var packages []knapsack.Package
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		pkg, err := lineParser.Parse(line)
		if err != nil {
			p.metrics.ValidationFailed(parser.Reason(err))
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		packages = append(packages, pkg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return packages, nil
}

// Render joins selections into the output text, one line per selection.
func Render(selections []knapsack.Selection) string {
	lines := make([]string, 0, len(selections))
	for _, s := range selections {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}
