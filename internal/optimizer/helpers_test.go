package optimizer

import (
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/stretchr/testify/require"
)

func chars(rs ...rune) []bytecode.Predicate {
	preds := make([]bytecode.Predicate, len(rs))
	for i, r := range rs {
		preds[i] = bytecode.Char(r)
	}
	return preds
}

func compare(preds ...bytecode.Predicate) bytecode.ByteCode {
	var code bytecode.ByteCode
	code.EmitCompare(preds)
	return code
}

func literal(s string) bytecode.ByteCode {
	var code bytecode.ByteCode
	for _, r := range s {
		code.EmitCompare(chars(r))
	}
	return code
}

func concat(parts ...bytecode.ByteCode) bytecode.ByteCode {
	var code bytecode.ByteCode
	for _, p := range parts {
		code.Extend(p)
	}
	return code
}

// star builds a greedy header-less loop over a single compare followed by
// follow:
//
//	0  ForkStay -> 9
//	2  Compare body
//	7  ForkJump -> 2
//	9  follow...
func star(body []bytecode.Predicate, follow bytecode.ByteCode) bytecode.ByteCode {
	var code bytecode.ByteCode
	code.EmitJump(bytecode.OpForkStay, 0)
	loop := len(code)
	code.EmitCompare(body)
	code.EmitJump(bytecode.OpForkJump, bytecode.ForwardOffset(len(code), 2, loop))
	code.SetOffset(0, bytecode.ForwardOffset(0, 2, len(code)))
	code.Extend(follow)
	return code
}

func newTestOptimizer(t *testing.T, opts Options) *Optimizer {
	t.Helper()
	o, err := New(opts)
	require.NoError(t, err)
	return o
}
