package domain

import "time"

// Profile is one scraped LinkedIn profile. Immutable once produced for a
// given run; re-processing a URL produces a fresh Profile.
type Profile struct {
	LinkedInURL string // canonical form, unique per person
	FullName    string
	Headline    string
	Location    string
	About       string
	Experience  []ExperienceEntry
	Education   []EducationEntry
	ScrapedAt   time.Time
}

type ExperienceEntry struct {
	Title     string
	Company   string
	DateRange string
	Current   bool // date range contains "present"
}

type EducationEntry struct {
	School    string
	Degree    string
	DateRange string
}

// CurrentCompany picks the company to research: the first entry still held,
// else the most recent one. Empty when the profile lists no experience.
func (p *Profile) CurrentCompany() (name, title string) {
	if len(p.Experience) == 0 {
		return "", ""
	}
	for _, e := range p.Experience {
		if e.Current {
			return e.Company, e.Title
		}
	}
	return p.Experience[0].Company, p.Experience[0].Title
}

// FirstName is used for message personalization.
func (p *Profile) FirstName() string {
	for i, r := range p.FullName {
		if r == ' ' {
			return p.FullName[:i]
		}
	}
	return p.FullName
}
