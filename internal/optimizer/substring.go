package optimizer

import (
	"strings"
	"unicode/utf8"

	"github.com/KromDaniel/regopt/internal/bytecode"
)

// literalOf returns the program as a plain literal when it is a straight
// sequence of single-character compares. The second result is false when
// the program is anything else. U+FFFD is refused in Unicode mode since the
// matcher reads every invalid input byte as that rune.
func literalOf(code bytecode.ByteCode, blocks []BasicBlock, unicode bool) (string, bool) {
	if len(blocks) > 1 {
		return "", false
	}
	if len(blocks) == 0 {
		return "", true
	}

	block := blocks[0]
	if block.End != len(code) {
		return "", false
	}

	var sb strings.Builder
	for ip := block.Start; ip < block.End; {
		in := bytecode.Decode(code, ip)
		if in.Op != bytecode.OpCompare {
			return "", false
		}
		preds := in.FlatPredicates()
		if len(preds) != 1 || preds[0].Type != bytecode.CompareChar {
			return "", false
		}
		ch := rune(preds[0].Value)
		if (!unicode && ch > 0xff) || (unicode && ch == utf8.RuneError) {
			return "", false
		}
		if unicode {
			sb.WriteRune(ch)
		} else {
			sb.WriteByte(byte(ch))
		}
		ip = in.Next()
	}
	return sb.String(), true
}
