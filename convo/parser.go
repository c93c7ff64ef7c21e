package convo

import (
	"regexp"
	"strings"
)

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// ParseReply extracts the clean human-readable text and the raw
// recommended-id list from a generation reply.
//
// The ids come back unvalidated; checking them against the turn's
// actual candidate set is the orchestrator's job, which keeps this a
// pure text transform.
func ParseReply(raw string) (clean string, ids []string) {
	ids, start, found := DecodeIDsTag(raw)
	if found {
		clean = raw[:start]
	} else {
		clean = raw
	}
	// Drop any tag markup that leaked inline, then tidy whitespace.
	clean = StripTags(clean)
	clean = spacesRe.ReplaceAllString(clean, " ")
	clean = newlinesRe.ReplaceAllString(clean, "\n\n")
	return strings.TrimSpace(clean), ids
}
