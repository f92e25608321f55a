// Package merge splices generated stub code into suite files without
// disturbing what is already there. It works on plain text: fixed marker
// comments embedded by the suite and group templates anchor every insertion,
// so no target-language parsing is needed.
package merge

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker prefixes embedded in generated output by the suite and group
// templates. They are an external contract with the template content: the
// engine never writes them itself, it only searches for them.
const (
	SuiteMarker = "Planter Suite:"
	GroupMarker = "Planter Group:"
)

var groupMarkerRe = regexp.MustCompile(GroupMarker + ` (.*)`)

// SuiteMarkerFor returns the marker text identifying a suite.
func SuiteMarkerFor(name string) string {
	return SuiteMarker + " " + name
}

// GroupMarkerFor returns the marker text identifying a group.
func GroupMarkerFor(name string) string {
	return GroupMarker + " " + name
}

// ContainsSuite reports whether content already carries the marker for the
// named suite.
func ContainsSuite(content, name string) bool {
	return strings.Contains(content, SuiteMarkerFor(name))
}

// ExistingGroups returns the group names marked anywhere in content, in
// order of appearance.
func ExistingGroups(content string) []string {
	var groups []string
	for _, m := range groupMarkerRe.FindAllStringSubmatch(content, -1) {
		groups = append(groups, strings.TrimSpace(m[1]))
	}
	return groups
}

// Chunk is the region of a suite file belonging to one suite: everything
// between that suite's marker and the next suite marker (or end of file).
// Start and End are byte offsets into the file content the chunk was cut
// from, so the mutated chunk can be spliced back exactly.
type Chunk struct {
	Content string
	Start   int
	End     int
}

// SuiteChunk cuts the named suite's chunk out of content. The suite marker
// must be present. Marker lookup is a plain substring search; a suite name
// that is a prefix of another suite name can misidentify the boundary (known
// limitation, matching generation behavior).
func SuiteChunk(content, name string) (*Chunk, error) {
	marker := SuiteMarkerFor(name)
	idx := strings.Index(content, marker)
	if idx < 0 {
		return nil, fmt.Errorf("suite marker %q not found", marker)
	}
	start := idx + len(marker)

	end := len(content)
	if next := strings.Index(content[start:], SuiteMarker); next >= 0 {
		end = start + next
	}

	return &Chunk{
		Content: content[start:end],
		Start:   start,
		End:     end,
	}, nil
}

// SpliceInto replaces the chunk's original region of content with its current
// Content.
func (c *Chunk) SpliceInto(content string) string {
	return content[:c.Start] + c.Content + content[c.End:]
}

// InsertAfterKeyword inserts text immediately after the first occurrence of
// keyword. The caller must have established that the keyword exists; a
// missing keyword is an engine bug, not a user error, so it panics.
func InsertAfterKeyword(original, insert, keyword string) string {
	pos := strings.Index(original, keyword)
	if pos < 0 {
		panic(fmt.Sprintf("merge: keyword not found: %q", keyword))
	}
	cut := pos + len(keyword)

	var b strings.Builder
	b.Grow(len(original) + len(insert))
	b.WriteString(original[:cut])
	b.WriteString(insert)
	b.WriteString(original[cut:])
	return b.String()
}
