package optimizer

import (
	"encoding/binary"
	"fmt"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/gammazero/deque"
	"github.com/xlab/treeprint"
)

// trieEntry records one alternative position merged into a trie node.
type trieEntry struct {
	alt int
	ip  int
	// first summarizes the first compare reachable from ip without consuming
	// input; nil when it is not a compare or cannot be interpreted.
	first *CompareSummary
}

// trieNode is one instruction of the merged alternation. Nodes live in an
// arena and refer to each other by index; the root (index 0) holds no
// instruction.
type trieNode struct {
	words    []bytecode.Word
	children []int
	byKey    map[string]int
	meta     []trieEntry
}

type alternationTrie struct {
	nodes []trieNode

	total      int // instructions inserted
	commonHits int // insertions that landed on an existing node
	entries    int // words held by distinct nodes
}

func newAlternationTrie() *alternationTrie {
	return &alternationTrie{nodes: []trieNode{{byKey: map[string]int{}}}}
}

func (t *alternationTrie) child(parent int, key string, words []bytecode.Word) (int, bool) {
	if idx, ok := t.nodes[parent].byKey[key]; ok {
		return idx, true
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, trieNode{words: words, byKey: map[string]int{}})
	t.nodes[parent].byKey[key] = idx
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx, false
}

// incomingEdges maps every jump target of code to the jumps that reach it.
func incomingEdges(code bytecode.ByteCode) map[int][]bytecode.Instruction {
	edges := map[int][]bytecode.Instruction{}
	for _, in := range code.Instructions() {
		if in.Op.IsJump() {
			edges[in.Target()] = append(edges[in.Target()], in)
		}
	}
	return edges
}

// nodeKey builds the merge key of an instruction. Two positions share a node
// only when their words and incoming edges agree; jumps and jump targets are
// additionally tied to their alternative so only straight-line prefixes merge.
func nodeKey(in bytecode.Instruction, edges []bytecode.Instruction, alt int) string {
	var buf []byte
	for _, w := range in.Words() {
		buf = binary.AppendUvarint(buf, w)
	}
	for _, e := range edges {
		buf = append(buf, '|')
		for _, w := range e.Words() {
			buf = binary.AppendUvarint(buf, w)
		}
	}
	if in.Op.IsJump() || len(edges) > 0 {
		buf = append(buf, '@')
		buf = binary.AppendUvarint(buf, uint64(alt))
	}
	return string(buf)
}

// firstCompare summarizes the compare that the alternative reaches from ip
// before any other observable instruction.
func firstCompare(code bytecode.ByteCode, ip int) *CompareSummary {
	for ip < len(code) {
		in := bytecode.Decode(code, ip)
		switch in.Op {
		case bytecode.OpCheckpoint, bytecode.OpSave, bytecode.OpClearCaptureGroup,
			bytecode.OpSaveLeftCaptureGroup, bytecode.OpSaveRightCaptureGroup,
			bytecode.OpSaveRightNamedCaptureGroup:
			ip = in.Next()
			continue
		case bytecode.OpCompare:
			summary, res := Interpret(in.FlatPredicates())
			if res == Opaque {
				return nil
			}
			return summary
		}
		return nil
	}
	return nil
}

// buildTrie inserts every alternative, each already terminated by an
// explicit jump to its end.
func buildTrie(alts []bytecode.ByteCode) *alternationTrie {
	t := newAlternationTrie()
	for i, alt := range alts {
		edges := incomingEdges(alt)
		node := 0
		for _, in := range alt.Instructions() {
			t.total++
			key := nodeKey(in, edges[in.IP], i)
			var hit bool
			node, hit = t.child(node, key, in.Words())
			if hit {
				t.commonHits++
			} else {
				t.entries += in.Size
			}
			t.nodes[node].meta = append(t.nodes[node].meta, trieEntry{alt: i, ip: in.IP, first: firstCompare(alt, in.IP)})
		}
	}
	return t
}

// violatesPriority walks the trie breadth first and reports whether some
// node tries a later alternative before an earlier one whose first compare
// can match the same character.
func (t *alternationTrie) violatesPriority(facts UnicodeFacts) bool {
	var queue deque.Deque[int]
	queue.PushBack(0)
	for queue.Len() > 0 {
		node := t.nodes[queue.PopFront()]
		var seen []trieEntry
		for _, c := range node.children {
			queue.PushBack(c)
			for _, e := range t.nodes[c].meta {
				for _, earlier := range seen {
					if earlier.alt > e.alt && SummariesOverlap(earlier.first, e.first, facts) {
						return true
					}
				}
			}
			seen = append(seen, t.nodes[c].meta...)
		}
	}
	return false
}

func (t *alternationTrie) shape(alts []bytecode.ByteCode) string {
	var walk func(tree treeprint.Tree, idx int)
	walk = func(tree treeprint.Tree, idx int) {
		for _, c := range t.nodes[idx].children {
			n := t.nodes[c]
			label := "(no metadata)"
			if len(n.meta) > 0 {
				in := bytecode.Decode(alts[n.meta[0].alt], n.meta[0].ip)
				label = fmt.Sprintf("%d@%d (%d entries) %s", n.meta[0].ip, n.meta[0].alt, len(n.meta), in.Describe())
			}
			walk(tree.AddBranch(label), c)
		}
	}
	root := treeprint.NewWithRoot("alternation")
	walk(root, 0)
	return root.String()
}

// AppendAlternation appends a program that tries alts in order, with the
// same priority and captures as trying each alternative in turn.
func (o *Optimizer) AppendAlternation(target *bytecode.ByteCode, alts []bytecode.ByteCode) error {
	switch len(alts) {
	case 0:
		return nil
	case 1:
		target.Extend(alts[0])
		return nil
	}

	allEmpty := true
	for _, a := range alts {
		if len(a) > 0 {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		return nil
	}

	terminated := make([]bytecode.ByteCode, len(alts))
	for i, a := range alts {
		terminated[i] = a.Clone()
		terminated[i].EmitJump(bytecode.OpJump, 0)
	}

	trie := buildTrie(terminated)
	report := AlternationReport{
		Alternatives: len(alts),
		TreeCost:     (trie.total - trie.commonHits) * 2,
		ChainCost:    trie.entries + len(alts)*2,
		SharedNodes:  trie.commonHits,
	}
	if trie.commonHits > 0 {
		report.PriorityViolation = trie.violatesPriority(o.opts.Facts)
	}
	if trie.commonHits > 0 && report.TreeCost < report.ChainCost && !report.PriorityViolation {
		report.Strategy = StrategyTrie
	}
	if tracing(o.tracer) {
		report.Shape = trie.shape(terminated)
	}
	o.tracer.Alternation(report)
	o.logger.Logw("alternation",
		"alternatives", report.Alternatives,
		"strategy", report.Strategy.String(),
		"tree_cost", report.TreeCost,
		"chain_cost", report.ChainCost,
		"shared", report.SharedNodes,
		"priority_violation", report.PriorityViolation)

	if report.Strategy == StrategyChain {
		appendChain(target, alts)
		return nil
	}
	return trie.emit(target, terminated)
}

// appendChain lays the alternatives out one after another. A run of forks
// schedules the later alternatives so the most recent one is the next, then
// every body but the last jumps past the rest.
func appendChain(target *bytecode.ByteCode, alts []bytecode.ByteCode) {
	n := len(alts)
	base := len(*target)

	starts := make([]int, n)
	pos := base + 2*(n-1)
	for i, a := range alts {
		starts[i] = pos
		pos += len(a)
		if i < n-1 {
			pos += 2
		}
	}
	end := pos

	for k := 0; k < n-1; k++ {
		source := len(*target)
		target.EmitJump(bytecode.OpForkStay, bytecode.ForwardOffset(source, 2, starts[n-1-k]))
	}
	for i, a := range alts {
		target.Extend(a)
		if i < n-1 {
			source := len(*target)
			target.EmitJump(bytecode.OpJump, bytecode.ForwardOffset(source, 2, end))
		}
	}
}

type qualifiedIP struct {
	alt int
	ip  int
}

// pendingJump is a copied jump whose target has not been emitted yet.
type pendingJump struct {
	source int
	size   int
	target qualifiedIP
	done   bool
}

// pendingFork is a child fork waiting for its node to be emitted.
type pendingFork struct {
	source int
	node   int
}

// emit writes the trie depth first: each node's instruction followed by one
// fork per child, in child order.
func (t *alternationTrie) emit(target *bytecode.ByteCode, alts []bytecode.ByteCode) error {
	emitted := make([]map[int]int, len(alts))
	for i := range emitted {
		emitted[i] = map[int]int{}
	}
	var jumps []pendingJump
	forks := map[int]pendingFork{}

	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := t.nodes[idx]
		here := len(*target)

		if f, ok := forks[idx]; ok {
			off := bytecode.ForwardOffset(f.source, 2, here)
			if off == 0 {
				(*target)[f.source] = bytecode.Word(bytecode.OpJump)
			}
			target.SetOffset(f.source, off)
			delete(forks, idx)
		}

		if idx != 0 {
			if len(node.meta) == 0 {
				return fmt.Errorf("%w: alternation trie node %d has no metadata", ErrInconsistentProgram, idx)
			}
			for _, e := range node.meta {
				emitted[e.alt][e.ip] = here
			}
			for i := range jumps {
				j := &jumps[i]
				if j.done {
					continue
				}
				if at, ok := emitted[j.target.alt][j.target.ip]; ok {
					target.SetOffset(j.source, bytecode.ForwardOffset(j.source, j.size, at))
					j.done = true
				}
			}

			target.Append(node.words...)
			in := bytecode.Decode(*target, here)
			if in.Op.IsJump() {
				e := node.meta[0]
				orig := bytecode.Decode(alts[e.alt], e.ip)
				dest := qualifiedIP{alt: e.alt, ip: orig.Target()}
				if at, ok := emitted[dest.alt][dest.ip]; ok {
					if in.Op == bytecode.OpRepeat {
						target.SetOffset(here, bytecode.BackwardOffset(here, at))
					} else {
						target.SetOffset(here, bytecode.ForwardOffset(here, in.Size, at))
					}
				} else if in.Op == bytecode.OpRepeat {
					return fmt.Errorf("%w: repeat at %d@%d precedes its body", ErrInconsistentProgram, e.ip, e.alt)
				} else {
					jumps = append(jumps, pendingJump{source: here, size: in.Size, target: dest})
				}
			}
		}

		for _, c := range node.children {
			forks[c] = pendingFork{source: len(*target), node: c}
			target.EmitJump(bytecode.OpForkJump, 0)
		}
		for _, c := range node.children {
			stack = append(stack, c)
		}
	}

	end := len(*target)
	for _, j := range jumps {
		if j.done {
			continue
		}
		if j.target.ip < len(alts[j.target.alt]) {
			return fmt.Errorf("%w: unresolved jump to %d@%d", ErrInconsistentProgram, j.target.ip, j.target.alt)
		}
		target.SetOffset(j.source, bytecode.ForwardOffset(j.source, j.size, end))
	}
	if len(forks) > 0 {
		return fmt.Errorf("%w: %d alternation nodes never emitted", ErrInconsistentProgram, len(forks))
	}
	return nil
}
