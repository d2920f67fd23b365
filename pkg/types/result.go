package types

import "strings"

// ResultStatus is the outcome of researching one website.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success" // StatusSuccess means a price was found.
	StatusFail    ResultStatus = "fail"    // StatusFail means no price could be established.
)

// ResultRecord is the structured answer for a single website.
type ResultRecord struct {
	Status       ResultStatus `json:"status"`
	Price        string       `json:"price"`
	Availability string       `json:"availability"`
	URL          string       `json:"url"`
	Notes        string       `json:"notes,omitempty"`
}

// Results maps each researched website to its record.
type Results map[string]ResultRecord

// FailRecord returns the record used when nothing could be extracted for a site.
func FailRecord() ResultRecord {
	return ResultRecord{Status: StatusFail}
}

// FailResults returns a uniform failure record for every website.
func FailResults(websites []string) Results {
	out := make(Results, len(websites))
	for _, site := range websites {
		out[site] = FailRecord()
	}
	return out
}

// ParseWebsites accepts a comma-separated list and returns the trimmed, non-empty entries.
func ParseWebsites(raw string) []string {
	var sites []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sites = append(sites, part)
		}
	}
	return sites
}
