package postprocessors

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkPipeline = (*Pipeline)(nil)

// Pipeline implements ChunkPipeline.
// Stages run in Order(), starting with a Splitter. Positions of the final
// spans are renumbered so they stay contiguous after stages drop spans.
type Pipeline struct {
	mu     sync.RWMutex
	stages []driven.ChunkProcessor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add adds a stage to the pipeline.
func (p *Pipeline) Add(stage driven.ChunkProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stages = append(p.stages, stage)
	slices.SortStableFunc(p.stages, func(a, b driven.ChunkProcessor) int {
		return a.Order() - b.Order()
	})
}

// Process runs content through every stage.
func (p *Pipeline) Process(content string) []driven.TextSpan {
	p.mu.RLock()
	stages := slices.Clone(p.stages)
	p.mu.RUnlock()

	spans := []driven.TextSpan{{
		Content:   content,
		EndOffset: len(content),
	}}
	for _, stage := range stages {
		spans = stage.Process(spans)
	}

	for i := range spans {
		spans[i].Position = i
	}
	return spans
}

// List returns stage names in order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}

// DefaultPipeline splits into 1000 character spans with 200 characters of
// overlap, tidies whitespace and drops repeated spans.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(NewSplitter(DefaultSplitConfig()))
	p.Add(NewWhitespaceTidier())
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}

// SplitConfig configures the splitter.
type SplitConfig struct {
	// Size is the maximum bytes per span
	Size int

	// Overlap is how many bytes consecutive spans share
	Overlap int

	// PreferBoundaries moves span ends back to a paragraph, sentence or
	// word boundary found near the limit
	PreferBoundaries bool
}

// DefaultSplitConfig returns the page indexing defaults.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		Size:             1000,
		Overlap:          200,
		PreferBoundaries: true,
	}
}

// boundaryWindow is how far back from the limit a boundary is searched for.
const boundaryWindow = 100

// Splitter cuts text into overlapping spans. Cuts never fall inside a
// multi-byte character.
type Splitter struct {
	cfg SplitConfig
}

// Verify interface compliance
var _ driven.ChunkProcessor = (*Splitter)(nil)

// NewSplitter creates a splitter. Overlap is clamped below Size.
func NewSplitter(cfg SplitConfig) *Splitter {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSplitConfig().Size
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = 0
	}
	return &Splitter{cfg: cfg}
}

func (s *Splitter) Name() string { return "splitter" }

func (s *Splitter) Order() int { return 0 }

// Process splits every incoming span.
func (s *Splitter) Process(spans []driven.TextSpan) []driven.TextSpan {
	var out []driven.TextSpan
	for _, span := range spans {
		out = append(out, s.split(span.Content, span.StartOffset)...)
	}
	return out
}

func (s *Splitter) split(text string, base int) []driven.TextSpan {
	if len(text) <= s.cfg.Size {
		return []driven.TextSpan{{Content: text, StartOffset: base, EndOffset: base + len(text)}}
	}

	var out []driven.TextSpan
	start := 0
	for start < len(text) {
		end := min(start+s.cfg.Size, len(text))
		end = runeStart(text, end)
		if end <= start {
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}

		if end < len(text) && s.cfg.PreferBoundaries {
			if b := boundary(text, start, end); b > start {
				end = b
			}
		}

		out = append(out, driven.TextSpan{
			Content:     text[start:end],
			StartOffset: base + start,
			EndOffset:   base + end,
		})
		if end >= len(text) {
			break
		}

		next := runeStart(text, end-s.cfg.Overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// boundary returns the best cut position in text[start:end], or -1.
// Paragraph breaks win over sentence ends, which win over spaces.
func boundary(text string, start, end int) int {
	from := runeStart(text, max(end-boundaryWindow, start))
	window := text[from:end]

	if i := strings.LastIndex(window, "\n\n"); i != -1 {
		return from + i + 2
	}

	best := -1
	for _, ender := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(window, ender); i != -1 && i+len(ender) > best {
			best = i + len(ender)
		}
	}
	if best > 0 {
		return from + best
	}

	if i := strings.LastIndexByte(window, ' '); i != -1 {
		return from + i + 1
	}
	return -1
}

// runeStart moves i back to the first byte of the character containing it.
func runeStart(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// WhitespaceTidier collapses runs of blanks, normalises line endings and
// drops spans that end up empty.
type WhitespaceTidier struct{}

// Verify interface compliance
var _ driven.ChunkProcessor = (*WhitespaceTidier)(nil)

func NewWhitespaceTidier() *WhitespaceTidier { return &WhitespaceTidier{} }

func (w *WhitespaceTidier) Name() string { return "whitespace-tidier" }

func (w *WhitespaceTidier) Order() int { return 5 }

func (w *WhitespaceTidier) Process(spans []driven.TextSpan) []driven.TextSpan {
	out := make([]driven.TextSpan, 0, len(spans))
	for _, span := range spans {
		content := tidy(span.Content)
		if content == "" {
			continue
		}
		span.Content = content
		out = append(out, span)
	}
	return out
}

func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// DeduplicatorConfig configures the deduplicator.
type DeduplicatorConfig struct {
	// MinLength is the shortest span considered for removal; shorter spans
	// such as headings are always kept
	MinLength int
}

func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{MinLength: 50}
}

// Deduplicator drops spans whose text repeats an earlier span, ignoring case
// and surrounding whitespace. Navigation blocks repeated across a page are
// the usual source.
type Deduplicator struct {
	cfg DeduplicatorConfig
}

// Verify interface compliance
var _ driven.ChunkProcessor = (*Deduplicator)(nil)

func NewDeduplicator(cfg DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

func (d *Deduplicator) Name() string { return "deduplicator" }

func (d *Deduplicator) Order() int { return 10 }

func (d *Deduplicator) Process(spans []driven.TextSpan) []driven.TextSpan {
	seen := make(map[string]struct{}, len(spans))
	out := make([]driven.TextSpan, 0, len(spans))
	for _, span := range spans {
		if len(span.Content) >= d.cfg.MinLength {
			key := strings.ToLower(strings.TrimSpace(span.Content))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, span)
	}
	return out
}
