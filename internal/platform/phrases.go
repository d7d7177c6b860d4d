package platform

import "strings"

// Phrase families scanned against listing-page text. Order matters twice:
// families are checked decline, deletion, pending; and within a family the
// first hit wins. All matching is case-insensitive on visible text.

var declinePhrases = []string{
	"has been rejected",
	"was declined",
	"declined by moderation",
	"failed moderation review",
	"violates our community standards",
	"removed for a violation",
}

var deletionPhrases = []string{
	"has been deleted",
	"is no longer available",
	"this item was removed",
}

// strictDeletionPhrases is the subset of deletion wording that names
// moderation as the cause. A generic deletion phrase on a still-downloadable
// asset is re-checked against this list before it counts as a decline.
var strictDeletionPhrases = []string{
	"deleted due to a violation",
	"deleted by moderation",
	"permanently deleted",
}

var pendingPhrases = []string{
	"pending review",
	"under review",
	"awaiting moderation",
	"not yet approved",
	"review in progress",
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ScanPageText classifies listing-page text into a PageSignal. Decline
// phrases are checked before pending phrases: decline is semantically an
// override and must not be shadowed by boilerplate pending wording elsewhere
// on the page.
func ScanPageText(text string) PageSignal {
	if containsAny(text, declinePhrases) {
		return PageDecline
	}
	if containsAny(text, deletionPhrases) {
		return PageDeletion
	}
	if containsAny(text, pendingPhrases) {
		return PagePending
	}
	return PageNone
}

// confirmsStrictDeletion reports whether the text matches the stricter
// deletion subset used by the resolver's re-check.
func confirmsStrictDeletion(text string) bool {
	return containsAny(text, strictDeletionPhrases)
}
