package unicodefacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAndMembership(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		in    rune
		out   rune
		check func(Tables, rune, int) bool
	}{
		{GeneralCategory, "Lu", 'Q', 'q', Tables.HasGeneralCategory},
		{Script, "Greek", 'λ', 'l', Tables.HasScript},
		{ScriptExtension, "Cyrillic", 'ж', 'z', Tables.HasScriptExtension},
		{Property, "White_Space", ' ', 'x', Tables.HasProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Lookup(tt.kind, tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.name, Name(tt.kind, id))
			assert.True(t, tt.check(Tables{}, tt.in, id))
			assert.False(t, tt.check(Tables{}, tt.out, id))
		})
	}
}

func TestUnknownFacet(t *testing.T) {
	_, ok := Lookup(Script, "Klingon")
	assert.False(t, ok)
	assert.Equal(t, "", Name(Script, -1))
	assert.False(t, Tables{}.HasScript('a', 1<<20))
}
