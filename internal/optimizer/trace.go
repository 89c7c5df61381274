package optimizer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/olekukonko/tablewriter"
)

// Strategy is the layout chosen for an alternation.
type Strategy int

const (
	StrategyChain Strategy = iota
	StrategyTrie
)

func (s Strategy) String() string {
	if s == StrategyTrie {
		return "trie"
	}
	return "chain"
}

// AlternationReport describes one alternation compilation.
type AlternationReport struct {
	Alternatives      int
	Strategy          Strategy
	TreeCost          int
	ChainCost         int
	SharedNodes       int
	PriorityViolation bool
	// Shape is the rendered trie; empty unless tracing is enabled.
	Shape string
}

// Tracer receives diagnostics from the optimizer.
type Tracer interface {
	Blocks(stage string, code bytecode.ByteCode, blocks []BasicBlock)
	Pass(name string, wordsBefore, wordsAfter int)
	Alternation(report AlternationReport)
}

type nopTracer struct{}

func (nopTracer) Blocks(string, bytecode.ByteCode, []BasicBlock) {}
func (nopTracer) Pass(string, int, int)                          {}
func (nopTracer) Alternation(AlternationReport)                  {}

func tracing(t Tracer) bool {
	_, inert := t.(nopTracer)
	return !inert
}

type blockTrace struct {
	stage  string
	code   bytecode.ByteCode
	blocks []BasicBlock
}

type passTrace struct {
	name          string
	before, after int
}

// Recorder is a Tracer that keeps every event for later rendering.
type Recorder struct {
	blockTraces  []blockTrace
	passes       []passTrace
	Alternations []AlternationReport
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Blocks(stage string, code bytecode.ByteCode, blocks []BasicBlock) {
	r.blockTraces = append(r.blockTraces, blockTrace{stage: stage, code: code.Clone(), blocks: append([]BasicBlock(nil), blocks...)})
}

func (r *Recorder) Pass(name string, before, after int) {
	r.passes = append(r.passes, passTrace{name: name, before: before, after: after})
}

func (r *Recorder) Alternation(report AlternationReport) {
	r.Alternations = append(r.Alternations, report)
}

// Saved returns the number of words removed across all recorded passes.
func (r *Recorder) Saved() int {
	saved := 0
	for _, p := range r.passes {
		saved += p.before - p.after
	}
	return saved
}

// Render writes the recorded events as tables and trees.
func (r *Recorder) Render(w io.Writer) error {
	for _, bt := range r.blockTraces {
		if _, err := fmt.Fprintf(w, "basic blocks (%s)\n", bt.stage); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header("#", "Start", "End", "Terminator", "Comment")
		for i, b := range bt.blocks {
			terminator := "-"
			if b.End < len(bt.code) {
				terminator = bytecode.Decode(bt.code, b.End).Describe()
			}
			if err := table.Append([]string{strconv.Itoa(i), strconv.Itoa(b.Start), strconv.Itoa(b.End), terminator, b.Comment}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(r.passes) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Pass", "Before", "After", "Saved")
		for _, p := range r.passes {
			if err := table.Append([]string{p.name, strconv.Itoa(p.before), strconv.Itoa(p.after), strconv.Itoa(p.before - p.after)}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	for _, a := range r.Alternations {
		if _, err := fmt.Fprintf(w, "alternation of %d: %s (tree cost %d, chain cost %d, shared %d, priority violation %v)\n",
			a.Alternatives, a.Strategy, a.TreeCost, a.ChainCost, a.SharedNodes, a.PriorityViolation); err != nil {
			return err
		}
		if a.Shape != "" {
			if _, err := io.WriteString(w, a.Shape); err != nil {
				return err
			}
		}
	}
	return nil
}
