package services

import (
	"sort"
	"strings"

	"github.com/isdelr/devlink/internal/models"
)

// ComputeStats summarizes devs in two passes: one grouping by domain, one
// counting technologies. A record counts at most once per technology, terms
// are compared case-insensitively and reported in the spelling seen first.
// Domains keep first-seen order; technologies are ranked by count with ties
// in first-seen order, and only the top topN are kept.
func ComputeStats(devs []models.Developer, topN int) models.DeveloperStats {
	stats := models.DeveloperStats{
		TotalCount:   len(devs),
		ByDomain:     []models.DomainCount{},
		TopTechStack: []models.TechCount{},
	}

	domainIdx := map[string]int{}
	for _, dev := range devs {
		i, ok := domainIdx[dev.Domain]
		if !ok {
			i = len(stats.ByDomain)
			domainIdx[dev.Domain] = i
			stats.ByDomain = append(stats.ByDomain, models.DomainCount{Name: dev.Domain})
		}
		stats.ByDomain[i].Value++
	}

	var tech []models.TechCount
	techIdx := map[string]int{}
	for _, dev := range devs {
		seen := map[string]bool{}
		for _, term := range dev.TechStack {
			key := strings.ToLower(term)
			if seen[key] {
				continue
			}
			seen[key] = true

			i, ok := techIdx[key]
			if !ok {
				i = len(tech)
				techIdx[key] = i
				tech = append(tech, models.TechCount{Name: term})
			}
			tech[i].Count++
		}
	}

	sort.SliceStable(tech, func(a, b int) bool { return tech[a].Count > tech[b].Count })
	if len(tech) > topN {
		tech = tech[:topN]
	}
	stats.TopTechStack = append(stats.TopTechStack, tech...)

	return stats
}
