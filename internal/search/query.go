package search

import (
	"strings"
	"unicode"
)

const maxVariants = 10

type QueryContext struct {
	Original   string
	Normalized string
	Variants   []string
}

// NormalizeQuery lowercases and drops punctuation, keeping the symbols that
// matter in technology names (c++, c#, node.js, .net).
func NormalizeQuery(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case r == '+' || r == '#' || r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/' || r == ',':
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	for i, f := range fields {
		fields[i] = strings.TrimRight(f, ".")
	}
	return strings.Join(strings.Fields(strings.Join(fields, " ")), " ")
}

// ExpandQuery returns the query followed by synonym and compact-form
// variants, at most maxVariants in total.
func ExpandQuery(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || len(out) >= maxVariants {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)
	for _, syn := range Synonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)

	// "frontend developer" -> "front end developer" and the synonyms of "front end"
	if key, ok := spacedKey(words[0]); ok {
		rest := strings.Join(words[1:], " ")
		add(join(key, rest))
		for _, syn := range Synonyms(key) {
			add(join(syn, rest))
		}
	}

	replacePrefix := func(phrase string, rest []string) {
		r := strings.Join(rest, " ")
		for _, syn := range Synonyms(phrase) {
			add(join(syn, r))
		}
	}
	if len(words) > 1 {
		replacePrefix(words[0], words[1:])
	}
	if len(words) > 2 {
		replacePrefix(words[0]+" "+words[1], words[2:])
	}

	return out
}

func ProcessQuery(input string) QueryContext {
	qc := QueryContext{Original: input, Normalized: NormalizeQuery(input)}
	qc.Variants = ExpandQuery(qc.Normalized)
	return qc
}

func spacedKey(word string) (string, bool) {
	for k := range synonyms {
		if strings.Contains(k, " ") && strings.ReplaceAll(k, " ", "") == word {
			return k, true
		}
	}
	return "", false
}

func join(head, rest string) string {
	if rest == "" {
		return head
	}
	return head + " " + rest
}
