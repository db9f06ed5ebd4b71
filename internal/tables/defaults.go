package tables

// Compiled-in resolution tables. These are the defaults served by the
// builtin source and the seed content for the other backends.

var defaultExact = map[string]string{
	"gmail.com":   "Mountain View, USA",
	"outlook.com": "Seattle, USA",
	"hotmail.com": "Seattle, USA",
	"icloud.com":  "Cupertino, USA",
	"yahoo.com":   "Sunnyvale, USA",
}

// Declaration order is the matching priority: ".co.uk" before ".uk",
// and the broad ".com" catch-all last.
var defaultSuffixes = []SuffixRule{
	{Suffix: ".co.uk", Location: "London, UK"},
	{Suffix: ".uk", Location: "London, UK"},
	{Suffix: ".za", Location: "Cape Town, South Africa"},
	{Suffix: ".de", Location: "Berlin, Germany"},
	{Suffix: ".fr", Location: "Paris, France"},
	{Suffix: ".in", Location: "Mumbai, India"},
	{Suffix: ".us", Location: "Los Angeles, USA"},
	{Suffix: ".edu", Location: "Boston, USA"},
	{Suffix: ".gov", Location: "Washington DC, USA"},
	{Suffix: ".com", Location: "The Moon"},
}

var defaultFallbacks = []string{
	"Nowhere, Internet",
	"The Cloud, Everywhere",
	"Area 51, USA",
	"Middle of Nowhere, Earth",
	"Narnia, Fictional",
	"Atlantis, Undersea",
	"Mars Colony, Mars",
	"The Moon, Space",
	"Back of the Fridge, Home",
	"42nd Parallel, Unknown",
}

// Default returns the compiled-in resolution tables.
func Default() *Tables {
	t, err := New(defaultExact, defaultSuffixes, defaultFallbacks)
	if err != nil {
		// The compiled-in fallback list is never empty.
		panic(err)
	}
	return t
}
