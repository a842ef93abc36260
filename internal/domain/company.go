package domain

import "time"

// CompanyInfo is the best-effort research snapshot for a founder's company.
// Any field other than Name may be empty; an all-empty snapshot is still a
// valid pipeline result.
type CompanyInfo struct {
	ID           int64
	Name         string
	Title        string // the founder's role there, from the profile
	Website      string
	Description  string
	News         []NewsItem
	ResearchedAt time.Time
}

type NewsItem struct {
	Title string
	URL   string
}

// Partial reports whether any research lookup came back empty.
func (c *CompanyInfo) Partial() bool {
	return c.Website == "" || c.Description == "" || len(c.News) == 0
}
