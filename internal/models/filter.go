package models

import (
	"net/url"
	"strings"
)

// DeveloperFilter narrows a developer listing. Zero-valued fields are ignored.
// All set options are AND-combined and always scoped to a single owner.
type DeveloperFilter struct {
	// Domain matches as a case-insensitive substring of the record's domain.
	Domain string
	// TechStack terms must all be present in the record's tech stack,
	// compared case-insensitively as whole terms.
	TechStack []string
	// Search matches as a case-insensitive substring of name or email, and of
	// domain when SearchDomain is set.
	Search       string
	SearchDomain bool
}

// ParseDeveloperFilter reads the domain, techstack and search query parameters.
func ParseDeveloperFilter(q url.Values, searchDomain bool) DeveloperFilter {
	return DeveloperFilter{
		Domain:       strings.TrimSpace(q.Get("domain")),
		TechStack:    ParseTechStack(q.Get("techstack")),
		Search:       strings.TrimSpace(q.Get("search")),
		SearchDomain: searchDomain,
	}
}

// IsEmpty reports whether the filter selects every owned record.
func (f DeveloperFilter) IsEmpty() bool {
	return f.Domain == "" && len(f.TechStack) == 0 && f.Search == ""
}

// LowerTechStack returns the tech stack terms lower-cased.
func (f DeveloperFilter) LowerTechStack() []string {
	out := make([]string, len(f.TechStack))
	for i, term := range f.TechStack {
		out[i] = strings.ToLower(term)
	}
	return out
}
