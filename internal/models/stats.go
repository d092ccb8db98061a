package models

// DomainCount is the number of developers in one domain.
type DomainCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TechCount is the number of developers listing one technology.
type TechCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DeveloperStats is the dashboard summary of a user's developer records.
type DeveloperStats struct {
	TotalCount   int           `json:"totalDevelopers"`
	ByDomain     []DomainCount `json:"developersByDomain"`
	TopTechStack []TechCount   `json:"topTechSkills"`
}
