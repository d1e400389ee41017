// Package taxonomy holds the closed, ordered topic set articles are
// classified into. The table is defined once at compile time; iteration order
// is the tie-break order of the rule classifier, so it must stay an ordered
// slice rather than a map.
package taxonomy

import "NewsPulse/internal/domain"

// Entry is one topic with the keyword phrases the rule classifier matches.
type Entry struct {
	Slug     string
	Name     string
	Keywords []string
}

var table = []Entry{
	{
		Slug: "ai-ml",
		Name: "AI & Machine Learning",
		Keywords: []string{
			"artificial intelligence", "machine learning", "neural network",
			"deep learning", "large language model", "llm", "gpt", "chatgpt",
			"openai", "anthropic", "benchmark", "transformer model",
		},
	},
	{
		Slug: "startups",
		Name: "Startups & Business",
		Keywords: []string{
			"startup", "venture capital", "seed round", "series a", "series b",
			"valuation", "acquisition", "ipo", "fundraising", "unicorn",
		},
	},
	{
		Slug: "cybersecurity",
		Name: "Cybersecurity",
		Keywords: []string{
			"vulnerability", "ransomware", "data breach", "malware", "phishing",
			"zero-day", "exploit", "cyberattack", "encryption", "infosec",
		},
	},
	{
		Slug: "science-space",
		Name: "Science & Space",
		Keywords: []string{
			"nasa", "spacex", "satellite", "telescope", "quantum", "physics",
			"climate", "rocket launch", "mars", "asteroid", "genome",
		},
	},
	{
		Slug: "gadgets",
		Name: "Gadgets & Hardware",
		Keywords: []string{
			"smartphone", "wearable", "chipset", "semiconductor", "processor",
			"headset", "console", "foldable", "battery life", "teardown",
		},
	},
	{
		Slug: "software-dev",
		Name: "Software Development",
		Keywords: []string{
			"open source", "programming language", "kubernetes", "compiler",
			"framework release", "developer tools", "github", "sdk", "api design",
		},
	},
}

// Entries returns the taxonomy in its fixed order. Callers must not mutate
// the returned slice.
func Entries() []Entry {
	return table
}

// Options projects the taxonomy into the (slug, name) pairs handed to the
// external classifier.
func Options() []domain.TopicOption {
	opts := make([]domain.TopicOption, 0, len(table))
	for _, e := range table {
		opts = append(opts, domain.TopicOption{Slug: e.Slug, Name: e.Name})
	}
	return opts
}

// BySlug resolves one entry; ok is false for slugs outside the taxonomy.
func BySlug(slug string) (Entry, bool) {
	for _, e := range table {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry{}, false
}
