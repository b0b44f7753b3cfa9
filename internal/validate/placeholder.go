package validate

import "regexp"

// placeholderPatterns are fragments that must not survive into a finished
// construction plan.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`○○`),
	regexp.MustCompile(`△△`),
	regexp.MustCompile(`□□`),
	regexp.MustCompile(`XXX`),
	regexp.MustCompile(`YYY`),
	regexp.MustCompile(`ZZZ`),
	regexp.MustCompile(`000-0000-0000`),
	regexp.MustCompile(`\d{2,4}-XXX-\d{4}`),
	regexp.MustCompile(`UNKNOWN`),
	regexp.MustCompile(`TBD`),
	regexp.MustCompile(`TODO`),
	regexp.MustCompile(`未定`),
	regexp.MustCompile(`検討中`),
	regexp.MustCompile(`仮`),
}

// PlaceholderReport lists leftover placeholders. Count includes repeats;
// Placeholders is deduplicated in first-seen order.
type PlaceholderReport struct {
	Count        int      `json:"placeholder_count"`
	Placeholders []string `json:"placeholders"`
	Clean        bool     `json:"is_clean"`
}

// ScanPlaceholders searches text for every forbidden pattern.
func ScanPlaceholders(text string) PlaceholderReport {
	rep := PlaceholderReport{Placeholders: []string{}}
	seen := map[string]struct{}{}
	for _, re := range placeholderPatterns {
		for _, m := range re.FindAllString(text, -1) {
			rep.Count++
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			rep.Placeholders = append(rep.Placeholders, m)
		}
	}
	rep.Clean = rep.Count == 0
	return rep
}
