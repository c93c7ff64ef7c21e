// Package convo implements the conversation core: intent analysis,
// prompt assembly and the reserved-tag reply protocol.
package convo

import (
	"regexp"
	"strings"
)

// The reply protocol: a generation reply must end with a single
// [FOOD_IDS:a,b,c] tag naming the ids it actually discusses, and each
// candidate is presented to the model as [FOOD_ID:x] so ids stay
// machine-extractable no matter what the item names contain.

var (
	idsTagRe    = regexp.MustCompile(`\[FOOD_IDS:([^\]]*)\]`)
	inlineTagRe = regexp.MustCompile(`\[FOOD_ID:[^\]]*\]`)
)

// EncodeIDTag renders the per-candidate identifier tag.
func EncodeIDTag(id string) string {
	return "[FOOD_ID:" + id + "]"
}

// EncodeIDsTag renders the end-of-reply recommendation tag.
func EncodeIDsTag(ids []string) string {
	return "[FOOD_IDS:" + strings.Join(ids, ",") + "]"
}

// DecodeIDsTag locates the first recommendation tag in text. It returns
// the listed ids (comma-split, whitespace-trimmed, empties dropped),
// the byte offset where the tag starts and whether a tag was found.
func DecodeIDsTag(text string) (ids []string, start int, found bool) {
	loc := idsTagRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, -1, false
	}
	list := text[loc[2]:loc[3]]
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids, loc[0], true
}

// StripTags removes any leaked tag markup from text: every
// recommendation tag and every inline candidate tag.
func StripTags(text string) string {
	text = idsTagRe.ReplaceAllString(text, "")
	return inlineTagRe.ReplaceAllString(text, "")
}
