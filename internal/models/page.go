package models

// PageRecord is one crawled page together with the defects found on it.
// URL is absolute, normalized, and same-origin with the scan seed.
type PageRecord struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	LoadTimeMS int64    `json:"loadTimeMs"`
	Defects    []Defect `json:"defects"`
}

// DefectCount returns the number of defects recorded on the page.
func (pr *PageRecord) DefectCount() int {
	if pr == nil {
		return 0
	}
	return len(pr.Defects)
}
