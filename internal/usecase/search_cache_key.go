package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	jobListKeyPrefix = "jobs:list:"
	jobLockKeyPrefix = "jobs:lock:"

	// JobListCachePattern matches every cached job listing page.
	JobListCachePattern = jobListKeyPrefix + "*"

	// JobListGenerationKey holds a counter bumped on every job mutation.
	// Listing keys embed it, so pages filled before a mutation are never
	// read after it.
	JobListGenerationKey = "jobs:gen"
)

type jobListCacheKeyInput struct {
	Keyword      string   `json:"keyword"`
	Types        []string `json:"job_types"`
	Industry     string   `json:"industry"`
	CompanySize  string   `json:"company_size"`
	RemoteOption string   `json:"remote_option"`
	Location     string   `json:"location"`
	CompanyID    string   `json:"company_id"`
	SalaryMin    *int     `json:"salary_min"`
	SalaryMax    *int     `json:"salary_max"`
	Sort         string   `json:"sort_by"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JobListCacheKey hashes the normalized listing parameters, so equivalent
// queries share an entry.
func JobListCacheKey(p JobListParams) string {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		t = normalizeSearchValue(t)
		if t == "" {
			continue
		}
		types = append(types, t)
	}
	sort.Strings(types)

	in := jobListCacheKeyInput{
		Keyword:      normalizeSearchValue(p.Keyword),
		Types:        types,
		Industry:     normalizeSearchValue(p.Industry),
		CompanySize:  normalizeSearchValue(p.CompanySize),
		RemoteOption: normalizeSearchValue(p.RemoteOption),
		Location:     normalizeSearchValue(p.Location),
		SalaryMin:    p.SalaryMin,
		SalaryMax:    p.SalaryMax,
		Sort:         normalizeSearchValue(p.SortBy),
		Page:         p.Page,
		PageSize:     p.PageSize,
	}
	if p.CompanyID != nil {
		in.CompanyID = p.CompanyID.String()
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return jobListKeyPrefix + hex.EncodeToString(sum[:])
}

func JobListLockKey(listKey string) string {
	listKey = strings.TrimSpace(listKey)
	return jobLockKeyPrefix + strings.TrimPrefix(listKey, jobListKeyPrefix)
}

// generationKey scopes a listing key to one cache generation.
func generationKey(listKey string, gen int64) string {
	if gen == 0 {
		return listKey
	}
	return listKey + ":g" + strconv.FormatInt(gen, 10)
}
