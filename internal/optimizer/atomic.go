package optimizer

import (
	"github.com/KromDaniel/regopt/internal/bytecode"
	"golang.org/x/exp/slices"
)

// precondition is the verdict of the atomic-loop safety check.
type precondition int

const (
	notSatisfied precondition = iota
	satisfiedWithProperHeader
	satisfiedWithEmptyHeader
)

func (p precondition) String() string {
	switch p {
	case satisfiedWithProperHeader:
		return "satisfied (proper header)"
	case satisfiedWithEmptyHeader:
		return "satisfied (empty follow)"
	}
	return "not satisfied"
}

// loopForm names the loop shapes the rewriter recognizes.
type loopForm int

const (
	loopWithoutHeader loopForm = iota
	loopWithHeader
)

var newline = []bytecode.Predicate{bytecode.Char('\n')}

// foldPredicates widens every character and range with its ASCII case
// counterpart. Lists that contain inversions are returned unchanged; the
// overlap test treats them conservatively.
func foldPredicates(preds []bytecode.Predicate) []bytecode.Predicate {
	if hasPredicate(preds, bytecode.CompareInverse, bytecode.CompareTemporaryInverse) {
		return preds
	}
	out := make([]bytecode.Predicate, 0, len(preds))
	for _, p := range preds {
		out = append(out, p)
		if p.Type != bytecode.CompareChar && p.Type != bytecode.CompareCharRange {
			continue
		}
		for _, r := range foldRanges([]bytecode.CharRange{p.Range()}) {
			out = append(out, bytecode.Range(r.From, r.To))
		}
		for _, r := range upperRanges(p.Range()) {
			out = append(out, bytecode.Range(r.From, r.To))
		}
	}
	return out
}

// upperRanges returns the ASCII uppercase counterparts of the lowercase
// letters in r.
func upperRanges(r bytecode.CharRange) []bytecode.CharRange {
	from, to := max(r.From, 'a'), min(r.To, 'z')
	if from > to {
		return nil
	}
	return []bytecode.CharRange{{From: from - ('a' - 'A'), To: to - ('a' - 'A')}}
}

func hasPredicate(preds []bytecode.Predicate, types ...bytecode.CompareType) bool {
	for _, p := range preds {
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
	}
	return false
}

// repeatedValues collects the operand list of every compare in the loop body.
func repeatedValues(code bytecode.ByteCode, body BasicBlock, insensitive bool) ([][]bytecode.Predicate, bool) {
	var values [][]bytecode.Predicate
	for ip := body.Start; ip < body.End; {
		in := bytecode.Decode(code, ip)
		switch in.Op {
		case bytecode.OpCompare:
			preds := in.FlatPredicates()
			if len(values) == 0 && hasPredicate(preds, bytecode.CompareAnyChar) {
				return nil, false
			}
			if insensitive {
				preds = foldPredicates(preds)
			}
			values = append(values, preds)
		case bytecode.OpCheckBoundary, bytecode.OpRestore, bytecode.OpGoBack, bytecode.OpFailForks:
			return nil, false
		case bytecode.OpJump, bytecode.OpJumpNonEmpty, bytecode.OpRepeat,
			bytecode.OpForkJump, bytecode.OpForkStay,
			bytecode.OpForkReplaceJump, bytecode.OpForkReplaceStay:
			return nil, false
		case bytecode.OpCheckBegin, bytecode.OpCheckEnd,
			bytecode.OpSave, bytecode.OpCheckpoint,
			bytecode.OpSaveLeftCaptureGroup, bytecode.OpSaveRightCaptureGroup,
			bytecode.OpSaveRightNamedCaptureGroup, bytecode.OpClearCaptureGroup:
		case bytecode.OpExit:
			return values, true
		}
		ip = in.Next()
	}
	return values, true
}

// atomicPrecondition decides whether the loop repeating body may drop its
// pending exits, given that following is where control goes when it exits.
func (o *Optimizer) atomicPrecondition(code bytecode.ByteCode, body, following BasicBlock, blocks []BasicBlock) precondition {
	values, ok := repeatedValues(code, body, o.opts.Insensitive)
	if !ok {
		return notSatisfied
	}

	overlapsBody := func(preds []bytecode.Predicate) bool {
		for _, v := range values {
			if Overlaps(preds, v, o.opts.Facts) {
				return true
			}
		}
		return false
	}

	// hop moves the follow walk along a forward jump.
	hops := 0
	hop := func(jump bytecode.Instruction) (BasicBlock, precondition, bool) {
		target := jump.Target()
		if target <= jump.IP {
			return BasicBlock{}, notSatisfied, false
		}
		hops++
		if hops > o.opts.MaxFollowHops {
			return BasicBlock{}, notSatisfied, false
		}
		if target >= len(code) {
			return BasicBlock{}, satisfiedWithEmptyHeader, false
		}
		next, found := blockStartingAt(blocks, target)
		if !found {
			return BasicBlock{}, notSatisfied, false
		}
		return next, notSatisfied, true
	}

	for {
		if following.Empty() && following.Start < len(code) {
			term := bytecode.Decode(code, following.Start)
			if term.Op != bytecode.OpJump {
				return notSatisfied
			}
			next, verdict, cont := hop(term)
			if !cont {
				return verdict
			}
			following = next
			continue
		}

		for ip := following.Start; ip < following.End; {
			in := bytecode.Decode(code, ip)
			switch in.Op {
			case bytecode.OpCompare:
				preds := in.FlatPredicates()
				if len(preds) == 0 {
					break
				}
				if hasPredicate(preds, bytecode.CompareAnyChar, bytecode.CompareReference) {
					return notSatisfied
				}
				if o.opts.Insensitive {
					preds = foldPredicates(preds)
				}
				if overlapsBody(preds) {
					return notSatisfied
				}
				return satisfiedWithProperHeader
			case bytecode.OpCheckEnd:
				if bytecode.CheckMode(in.Arg(0)) == bytecode.CheckLine && overlapsBody(newline) {
					return notSatisfied
				}
				return satisfiedWithProperHeader
			case bytecode.OpSave, bytecode.OpCheckpoint,
				bytecode.OpSaveLeftCaptureGroup, bytecode.OpSaveRightCaptureGroup,
				bytecode.OpSaveRightNamedCaptureGroup, bytecode.OpClearCaptureGroup:
			default:
				return notSatisfied
			}
			ip = in.Next()
		}

		if following.End >= len(code) {
			return satisfiedWithEmptyHeader
		}
		term := bytecode.Decode(code, following.End)
		if term.Op != bytecode.OpJump {
			return notSatisfied
		}
		next, verdict, cont := hop(term)
		if !cont {
			return verdict
		}
		following = next
	}
}

// isEligibleJump reports whether in closes a loop of the given form back to
// blockStart.
func isEligibleJump(in bytecode.Instruction, blockStart int, form loopForm) bool {
	switch in.Op {
	case bytecode.OpJumpNonEmpty:
		switch form {
		case loopWithHeader:
			if in.Form() != bytecode.OpJump {
				return false
			}
		case loopWithoutHeader:
			if in.Form() != bytecode.OpForkJump && in.Form() != bytecode.OpForkStay {
				return false
			}
		}
		return in.Target() == blockStart
	case bytecode.OpForkJump, bytecode.OpForkStay:
		return form == loopWithoutHeader && in.Target() == blockStart
	case bytecode.OpJump:
		return form == loopWithHeader && in.Target() == blockStart
	}
	return false
}

// rewriteAtomicLoops turns the closing fork of every provably safe loop into
// its non-backtracking variant. It returns the patched fork addresses.
func (o *Optimizer) rewriteAtomicLoops(code bytecode.ByteCode, blocks []BasicBlock) []int {
	candidates := map[int]bool{}

	for i, forking := range blocks {
		var fallback *BasicBlock
		if i+1 < len(blocks) {
			fallback = &blocks[i+1]
		}

		term := bytecode.Decode(code, forking.End)
		if forking.End < len(code) && isEligibleJump(term, forking.Start, loopWithoutHeader) {
			verdict := satisfiedWithEmptyHeader
			if fallback != nil {
				verdict = o.atomicPrecondition(code, forking, *fallback, blocks)
			}
			o.logger.Logw("loop candidate", "form", "self", "block", forking.Start, "fork", forking.End, "verdict", verdict.String())
			if verdict != notSatisfied {
				candidates[forking.End] = true
				continue
			}
		}

		if fallback == nil || fallback.End >= len(code) || forking.End >= len(code) {
			continue
		}
		closing := bytecode.Decode(code, fallback.End)
		if !isEligibleJump(closing, forking.Start, loopWithHeader) && !isEligibleJump(closing, forking.End, loopWithHeader) {
			continue
		}
		if term.Op != bytecode.OpForkJump && term.Op != bytecode.OpForkStay {
			continue
		}
		exit := len(code)
		var after *BasicBlock
		if i+2 < len(blocks) {
			after = &blocks[i+2]
			exit = after.Start
		}
		if term.Target() != exit {
			continue
		}
		verdict := satisfiedWithEmptyHeader
		if after != nil {
			verdict = o.atomicPrecondition(code, *fallback, *after, blocks)
		}
		o.logger.Logw("loop candidate", "form", "headered", "block", forking.Start, "fork", forking.End, "verdict", verdict.String())
		if verdict != notSatisfied {
			candidates[forking.End] = true
		}
	}

	patched := make([]int, 0, len(candidates))
	for ip := range candidates {
		patched = append(patched, ip)
	}
	slices.SortFunc(patched, func(a, b int) int { return b - a })

	for _, ip := range patched {
		in := bytecode.Decode(code, ip)
		switch in.Op {
		case bytecode.OpJumpNonEmpty:
			if replaced, ok := in.Form().ReplaceVariant(); ok {
				code[ip+3] = bytecode.Word(replaced)
			}
		default:
			if replaced, ok := in.Op.ReplaceVariant(); ok {
				code[ip] = bytecode.Word(replaced)
			}
		}
	}
	return patched
}
