package core

import "math/rand"

// Palette is the fixed set of member colors, shared by every board.
// Allocation walks it in order, so the first joiner of a board always
// gets Palette[0].
var Palette = []string{
	"#1570EF",
	"#039855",
	"#DC6803",
	"#D92D20",
	"#7839EE",
	"#DD2590",
	"#0E9384",
	"#CA8504",
}

// allocateColor returns the first palette entry not present in used.
// When all entries are taken (9th+ concurrent member) it returns a
// random palette entry instead of failing: color collision under
// over-capacity is accepted policy.
func allocateColor(used map[string]struct{}) string {
	for _, c := range Palette {
		if _, taken := used[c]; !taken {
			return c
		}
	}
	return Palette[rand.Intn(len(Palette))]
}

// releaseColor is idempotent; releasing an absent color is a no-op.
func releaseColor(used map[string]struct{}, color string) {
	delete(used, color)
}
