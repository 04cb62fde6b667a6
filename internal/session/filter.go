package session

import "strings"

// FilterConfig is a case-insensitive substring filter over inbound lines.
// It only gates sink delivery; counters always reflect the full stream.
type FilterConfig struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// Set replaces the filter text. The filter is enabled iff the text is
// non-empty, so setting "" is an explicit disable.
func (f *FilterConfig) Set(text string) {
	f.Text = text
	f.Enabled = text != ""
}

// Match reports whether a line passes the filter. A disabled filter passes
// everything.
func (f FilterConfig) Match(line string) bool {
	if !f.Enabled {
		return true
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(f.Text))
}
