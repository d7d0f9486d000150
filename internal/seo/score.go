package seo

import (
	"strings"
	"unicode/utf8"

	"marketplace-console/internal/models"
)

// Recommended length ranges in characters
const (
	TitleMin       = 30
	TitleMax       = 60
	DescriptionMin = 120
	DescriptionMax = 160
)

// CheckItem is one line of the SEO checklist
type CheckItem struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Passed     bool   `json:"passed"`
	Points     int    `json:"points"`
	Max        int    `json:"max"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Report is a score with its checklist in declaration order
type Report struct {
	Score int         `json:"score"`
	Max   int         `json:"max"`
	Items []CheckItem `json:"items"`
}

type check struct {
	key        string
	label      string
	max        int
	suggestion string
	// eval returns the points earned
	eval func(s *models.SEOSettings) int
}

var checklist = []check{
	{
		key: "title", label: "Site title length", max: 15,
		suggestion: "Use a site title between 30 and 60 characters",
		eval: func(s *models.SEOSettings) int {
			return lengthPoints(s.SiteTitle, TitleMin, TitleMax, 15, 7)
		},
	},
	{
		key: "description", label: "Meta description length", max: 15,
		suggestion: "Use a meta description between 120 and 160 characters",
		eval: func(s *models.SEOSettings) int {
			return lengthPoints(s.SiteDescription, DescriptionMin, DescriptionMax, 15, 7)
		},
	},
	{
		key: "keywords", label: "Keywords", max: 10,
		suggestion: "Add target keywords",
		eval:       present(func(s *models.SEOSettings) string { return s.Keywords }, 10),
	},
	{
		key: "og_image", label: "Open Graph image", max: 10,
		suggestion: "Add an Open Graph image URL for social sharing",
		eval:       present(func(s *models.SEOSettings) string { return s.OGImageURL }, 10),
	},
	{
		key: "og_enabled", label: "Open Graph tags", max: 10,
		suggestion: "Enable Open Graph meta tags",
		eval:       enabled(func(s *models.SEOSettings) bool { return s.OGEnabled }, 10),
	},
	{
		key: "schema", label: "Structured data", max: 10,
		suggestion: "Enable schema.org structured data",
		eval:       enabled(func(s *models.SEOSettings) bool { return s.SchemaEnabled }, 10),
	},
	{
		key: "sitemap", label: "XML sitemap", max: 5,
		suggestion: "Enable the XML sitemap",
		eval:       enabled(func(s *models.SEOSettings) bool { return s.SitemapEnabled }, 5),
	},
	{
		key: "canonical", label: "Canonical URLs", max: 5,
		suggestion: "Enable canonical URLs",
		eval:       enabled(func(s *models.SEOSettings) bool { return s.CanonicalEnabled }, 5),
	},
	{
		key: "analytics", label: "Google Analytics", max: 10,
		suggestion: "Add a Google Analytics measurement ID",
		eval:       present(func(s *models.SEOSettings) string { return s.GoogleAnalyticsID }, 10),
	},
	{
		key: "search_console", label: "Search Console verification", max: 10,
		suggestion: "Add the Google Search Console verification code",
		eval:       present(func(s *models.SEOSettings) string { return s.SearchConsoleCode }, 10),
	},
}

// Score computes the 0-100 SEO score of s. It only reads its argument.
func Score(s models.SEOSettings) Report {
	r := Report{Items: make([]CheckItem, 0, len(checklist))}
	for _, c := range checklist {
		points := c.eval(&s)
		item := CheckItem{
			Key:    c.key,
			Label:  c.label,
			Passed: points == c.max,
			Points: points,
			Max:    c.max,
		}
		if !item.Passed {
			item.Suggestion = c.suggestion
		}
		r.Score += points
		r.Max += c.max
		r.Items = append(r.Items, item)
	}
	return r
}

func lengthPoints(text string, min, max, full, partial int) int {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n == 0:
		return 0
	case n >= min && n <= max:
		return full
	default:
		return partial
	}
}

func present(field func(*models.SEOSettings) string, points int) func(*models.SEOSettings) int {
	return func(s *models.SEOSettings) int {
		if strings.TrimSpace(field(s)) != "" {
			return points
		}
		return 0
	}
}

func enabled(field func(*models.SEOSettings) bool, points int) func(*models.SEOSettings) int {
	return func(s *models.SEOSettings) int {
		if field(s) {
			return points
		}
		return 0
	}
}
