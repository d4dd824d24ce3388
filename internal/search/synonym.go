package search

var synonyms = map[string][]string{
	"front end":         {"frontend", "ui developer", "react", "web developer"},
	"back end":          {"backend", "server side", "api developer"},
	"full stack":        {"fullstack", "full-stack", "web developer"},
	"machine learning":  {"ml", "ai", "data scientist"},
	"data science":      {"data scientist", "analytics", "machine learning"},
	"dev ops":           {"devops", "site reliability", "sre", "platform engineer"},
	"ui ux":             {"ux", "ui designer", "product designer"},
	"software engineer": {"software developer", "programmer", "developer"},
	"golang":            {"go"},
	"js":                {"javascript"},
	"ts":                {"typescript"},
	"k8s":               {"kubernetes"},
	"postgres":          {"postgresql"},
	"intern":            {"internship", "trainee"},
	"internship":        {"intern", "trainee"},
	"qa":                {"quality assurance", "tester", "test engineer"},
}

// Synonyms returns a copy of the variants registered for phrase.
func Synonyms(phrase string) []string {
	v, ok := synonyms[phrase]
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
