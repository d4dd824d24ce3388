package fetch

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Posting is the subset of a schema.org JobPosting we map onto a draft.
type Posting struct {
	Title          string
	Description    string
	Company        string
	Location       string
	EmploymentType string
	Remote         bool
	SalaryMin      *int
	SalaryMax      *int
	Currency       string
}

// JobPosting returns the first JobPosting found in the page's JSON-LD.
func (p Page) JobPosting() (Posting, bool) {
	for _, raw := range p.Postings {
		if !gjson.Valid(raw) {
			continue
		}
		if node, ok := findPosting(gjson.Parse(raw)); ok {
			return postingFrom(node), true
		}
	}
	return Posting{}, false
}

func findPosting(v gjson.Result) (gjson.Result, bool) {
	if v.IsArray() {
		for _, item := range v.Array() {
			if n, ok := findPosting(item); ok {
				return n, true
			}
		}
		return gjson.Result{}, false
	}
	if isType(v.Get("@type"), "JobPosting") {
		return v, true
	}
	if g := v.Get("@graph"); g.Exists() {
		return findPosting(g)
	}
	return gjson.Result{}, false
}

func isType(t gjson.Result, want string) bool {
	if t.IsArray() {
		for _, x := range t.Array() {
			if strings.EqualFold(x.String(), want) {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(t.String(), want)
}

func postingFrom(n gjson.Result) Posting {
	p := Posting{
		Title:       strings.TrimSpace(n.Get("title").String()),
		Description: strings.TrimSpace(stripTags(n.Get("description").String())),
		Company:     strings.TrimSpace(n.Get("hiringOrganization.name").String()),
		Currency:    strings.TrimSpace(n.Get("baseSalary.currency").String()),
		Remote:      strings.EqualFold(n.Get("jobLocationType").String(), "TELECOMMUTE"),
	}

	et := n.Get("employmentType")
	if et.IsArray() && len(et.Array()) > 0 {
		p.EmploymentType = et.Array()[0].String()
	} else {
		p.EmploymentType = et.String()
	}

	loc := n.Get("jobLocation")
	if loc.IsArray() && len(loc.Array()) > 0 {
		loc = loc.Array()[0]
	}
	var parts []string
	for _, k := range []string{"address.addressLocality", "address.addressRegion", "address.addressCountry"} {
		if s := strings.TrimSpace(loc.Get(k).String()); s != "" {
			parts = append(parts, s)
		}
	}
	p.Location = strings.Join(parts, ", ")

	val := n.Get("baseSalary.value")
	if min := val.Get("minValue"); min.Exists() {
		v := int(min.Int())
		p.SalaryMin = &v
	}
	if max := val.Get("maxValue"); max.Exists() {
		v := int(max.Int())
		p.SalaryMax = &v
	}
	if p.SalaryMin == nil && p.SalaryMax == nil && val.Get("value").Exists() {
		v := int(val.Get("value").Int())
		p.SalaryMin, p.SalaryMax = &v, &v
	}
	return p
}

func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
			b.WriteByte(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
