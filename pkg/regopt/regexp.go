package regopt

import (
	"unicode/utf8"

	"github.com/KromDaniel/regopt/internal/optimizer"
	"github.com/KromDaniel/regopt/internal/vm"
)

// Regexp is a compiled pattern. It is safe for concurrent use.
type Regexp struct {
	prog    Program
	machine *vm.Machine
	minLen  int
	stats   optimizer.Stats
}

func newRegexp(p Program, maxSteps int) *Regexp {
	data := p.data()
	m := vm.New(p.Code, vm.Options{
		Unicode:     p.Unicode,
		Insensitive: p.CaseInsensitive,
		MaxSteps:    maxSteps,
		Data:        &data,
	})
	return &Regexp{prog: p, machine: m}
}

// String returns the source pattern.
func (re *Regexp) String() string { return re.prog.Pattern }

// Program returns the compiled program. It can be stored and passed to Load.
func (re *Regexp) Program() Program { return re.prog }

// NumSubexp returns the number of capture groups.
func (re *Regexp) NumSubexp() int {
	if re.prog.GroupNames != nil {
		return len(re.prog.GroupNames) - 1
	}
	return re.machine.NumGroups()
}

// SubexpNames returns the names of the capture groups, index 0 being the
// whole match.
func (re *Regexp) SubexpNames() []string {
	if re.prog.GroupNames != nil {
		return re.prog.GroupNames
	}
	return make([]string, re.NumSubexp()+1)
}

// SubexpIndex returns the index of the first group with the given name, or
// -1.
func (re *Regexp) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range re.prog.GroupNames {
		if n == name {
			return i
		}
	}
	return -1
}

// FindStringSubmatchIndex returns the byte offsets of the leftmost match and
// of every capture group, -1 for groups that did not participate. It
// returns nil when there is no match.
func (re *Regexp) FindStringSubmatchIndex(s string) ([]int, error) {
	if re.tooShort(s) {
		return nil, nil
	}
	return re.machine.Find(s)
}

// tooShort reports whether s is shorter than any match. The bound counts
// UTF-8 bytes, which an invalid byte read as U+FFFD undercuts in Unicode mode.
func (re *Regexp) tooShort(s string) bool {
	if len(s) >= re.minLen {
		return false
	}
	return !re.prog.Unicode || utf8.ValidString(s)
}

// FindStringIndex returns the byte offsets of the leftmost match, or nil.
func (re *Regexp) FindStringIndex(s string) ([]int, error) {
	loc, err := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, err
	}
	return loc[:2], err
}

// FindString returns the text of the leftmost match.
func (re *Regexp) FindString(s string) (string, bool, error) {
	loc, err := re.FindStringIndex(s)
	if loc == nil {
		return "", false, err
	}
	return s[loc[0]:loc[1]], true, nil
}

// FindStringSubmatch returns the text of the leftmost match and of every
// capture group. Groups that did not participate are empty.
func (re *Regexp) FindStringSubmatch(s string) ([]string, error) {
	loc, err := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, err
	}
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out, nil
}

// MatchString reports whether s contains a match.
func (re *Regexp) MatchString(s string) (bool, error) {
	loc, err := re.FindStringIndex(s)
	return loc != nil, err
}
