// Package locale defines the jurisdictions govbot can track.
package locale

// codes lists every supported jurisdiction code, alphabetically. Each code is
// also the name of the windy-civi data repository for that jurisdiction.
var codes = []string{
	"ak", "al", "ar", "az", "ca", "co", "ct", "dc", "de", "fl",
	"ga", "hi", "ia", "id", "il", "in", "ks", "ky", "la", "ma",
	"md", "me", "mi", "mn", "mo", "ms", "mt", "nc", "nd", "ne",
	"nh", "nj", "nm", "nv", "ny", "oh", "ok", "or", "pa", "ri",
	"sc", "sd", "tn", "tx", "ut", "va", "vt", "wa", "wi", "wv",
	"wy",
}

var known = make(map[string]bool, len(codes))

func init() {
	for _, c := range codes {
		known[c] = true
	}
}

// All returns the supported jurisdiction codes in a fresh slice.
func All() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// IsKnown reports whether code names a supported jurisdiction.
func IsKnown(code string) bool {
	return known[code]
}
