package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/devlink/internal/models"
)

func dev(domain string, techstack ...string) models.Developer {
	return models.Developer{Domain: domain, TechStack: techstack}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, TopTechSkills)
	assert.Zero(t, stats.TotalCount)
	assert.NotNil(t, stats.ByDomain)
	assert.NotNil(t, stats.TopTechStack)
	assert.Empty(t, stats.ByDomain)
	assert.Empty(t, stats.TopTechStack)
}

func TestComputeStats_Domains(t *testing.T) {
	stats := ComputeStats([]models.Developer{
		dev("Frontend"), dev(""), dev("Backend"), dev("Frontend"),
	}, TopTechSkills)

	assert.Equal(t, 4, stats.TotalCount)
	assert.Equal(t, []models.DomainCount{
		{Name: "Frontend", Value: 2},
		{Name: "", Value: 1},
		{Name: "Backend", Value: 1},
	}, stats.ByDomain)
}

func TestComputeStats_TechRanking(t *testing.T) {
	stats := ComputeStats([]models.Developer{
		dev("", "Go", "go", "GO"),
		dev("", "Rust", "Go"),
		dev("", "python", "Rust"),
	}, TopTechSkills)

	// "go" counts once for the first record; ties keep first-seen order.
	assert.Equal(t, []models.TechCount{
		{Name: "Go", Count: 2},
		{Name: "Rust", Count: 2},
		{Name: "python", Count: 1},
	}, stats.TopTechStack)
}

func TestComputeStats_TopNCap(t *testing.T) {
	stats := ComputeStats([]models.Developer{
		dev("", "A", "B", "C", "D", "E", "F", "G"),
		dev("", "G"),
	}, TopTechSkills)

	assert.Equal(t, []models.TechCount{
		{Name: "G", Count: 2},
		{Name: "A", Count: 1},
		{Name: "B", Count: 1},
		{Name: "C", Count: 1},
		{Name: "D", Count: 1},
	}, stats.TopTechStack)
}
