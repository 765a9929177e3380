package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		in  string
		rem string
		lo  int32
		hi  int32
		ok  bool
	}{
		{in: "123)", rem: "", lo: 123, hi: 124, ok: true},
		{in: "123) Teabot", rem: "Teabot", lo: 123, hi: 124, ok: true},
		{in: "  123  )  Teabot  ", rem: "Teabot  ", lo: 123, hi: 124, ok: true},
		{in: "-1)", rem: "", lo: -1, hi: 0, ok: true},
		{in: "1, 2, 3)", rem: "", lo: 1, hi: 4, ok: true},
		{in: "123-124)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "123 - 124)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "123 & 4)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "123 & 24)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "124 & 3)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "8, 7)", rem: "", lo: 7, hi: 9, ok: true},
		{in: "124-123)", rem: "", lo: 123, hi: 125, ok: true},
		{in: "1024 - 1048)", rem: "", lo: 1024, hi: 1049, ok: true},
		{in: "1024, 5 & 6)", rem: "", lo: 1024, hi: 1027, ok: true},
		{in: "1039, 8 & 40)", rem: "", lo: 1038, hi: 1041, ok: true},
		{in: "558/9)", rem: "", lo: 558, hi: 560, ok: true},
		{in: "no parenthesis", ok: false},
		{in: "Teabot)", ok: false},
		{in: ")", ok: false},
		{in: "2147483647)", ok: false},
		{in: "99999999999999999999)", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rem, lo, hi, ok := parseNumbers(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.rem, rem)
				assert.Equal(t, tt.lo, lo)
				assert.Equal(t, tt.hi, hi)
			}
		})
	}
}

func TestParseGroupSingleRobot(t *testing.T) {
	group, ok := ParseGroup("1207) Transrightsbot. Is just here to say trans rights.")
	require.True(t, ok)

	require.Len(t, group.Robots, 1)
	assert.Equal(t, int32(1207), group.Robots[0].Number)
	assert.Equal(t, "Transrights", group.Robots[0].Name.Prefix)
	assert.Equal(t, "bot", group.Robots[0].Name.Suffix)
	assert.Empty(t, group.Robots[0].Name.Plural)
	assert.Equal(t, "Is just here to say trans rights.", group.Body)
	assert.Empty(t, group.ContentWarning)
}

func TestParseGroupSharedSuffix(t *testing.T) {
	group, ok := ParseGroup("558/9) Salt- and Pepperbots. Bring you salt and pepper.")
	require.True(t, ok)

	require.Len(t, group.Robots, 2)

	assert.Equal(t, int32(558), group.Robots[0].Number)
	assert.Equal(t, "Salt", group.Robots[0].Name.Prefix)
	assert.Equal(t, "bot", group.Robots[0].Name.Suffix)
	assert.Empty(t, group.Robots[0].Name.Plural)

	assert.Equal(t, int32(559), group.Robots[1].Number)
	assert.Equal(t, "Pepper", group.Robots[1].Name.Prefix)
	assert.Equal(t, "bot", group.Robots[1].Name.Suffix)
	assert.Empty(t, group.Robots[1].Name.Plural)

	assert.Equal(t, "Bring you salt and pepper.", group.Body)
}

func TestParseGroupContentNote(t *testing.T) {
	group, ok := ParseGroup("[CN: sexual assault] 651) Believeherbot. Reminds you to believe her.")
	require.True(t, ok)

	assert.Equal(t, "sexual assault", group.ContentWarning)
	require.Len(t, group.Robots, 1)
	assert.Equal(t, int32(651), group.Robots[0].Number)
	assert.Equal(t, "Believeher", group.Robots[0].Name.Prefix)
}

func TestParseGroupThreeNames(t *testing.T) {
	group, ok := ParseGroup("690 - 692) Marybot, Josephbot and Donkeybot. A nativity scene.")
	require.True(t, ok)

	require.Len(t, group.Robots, 3)
	prefixes := []string{"Marybot", "Josephbot", "Donkeybot"}
	for i, want := range []int32{690, 691, 692} {
		assert.Equal(t, want, group.Robots[i].Number)
		assert.Equal(t, prefixes[i], group.Robots[i].Name.Display())
	}
}

func TestParseGroupPlural(t *testing.T) {
	group, ok := ParseGroup("100) Hugbots. Give you hugs.")
	require.True(t, ok)

	require.Len(t, group.Robots, 1)
	assert.Equal(t, "Hug", group.Robots[0].Name.Prefix)
	assert.Equal(t, "bot", group.Robots[0].Name.Suffix)
	assert.Equal(t, "s", group.Robots[0].Name.Plural)
	assert.Equal(t, "Hugbots", group.Robots[0].Name.Display())
}

func TestParseGroupPunctuatedSuffix(t *testing.T) {
	group, ok := ParseGroup("42) SecretB.O.T. Keeps your secrets.")
	require.True(t, ok)

	require.Len(t, group.Robots, 1)
	assert.Equal(t, "Secret", group.Robots[0].Name.Prefix)
	assert.Equal(t, "B.O.T", group.Robots[0].Name.Suffix)
}

func TestParseGroupCapsRange(t *testing.T) {
	// Ranges wider than five robots only yield up to five names.
	group, ok := ParseGroup("1 - 100) Abot, Bbot, Cbot, Dbot, Ebot, Fbot, Gbot.")
	require.True(t, ok)

	assert.Len(t, group.Robots, 5)
	assert.Equal(t, int32(1), group.Robots[0].Number)
	assert.Equal(t, int32(5), group.Robots[4].Number)
}

func TestParseGroupNoMatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "no parenthesis", in: "Foo baa"},
		{name: "empty", in: ""},
		{name: "numbers but no name", in: "123) nothing to see here."},
		{name: "overflow guard", in: "2147483647)"},
		{name: "text before numbers", in: "Say hello to 123) Teabot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseGroup(tt.in)
			assert.False(t, ok)
		})
	}
}

func TestParseGroupNeverPanics(t *testing.T) {
	inputs := []string{
		"", ")", "((((", "))))", "-", "--1)", "١٢٣) Oddbot.",
		"123) \xf0\x9f\xa4\x96bot", "[CN:]", "(cn: x) 1) Xbot.",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			ParseGroup(in)
		})
	}
}
