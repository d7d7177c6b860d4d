package platform

import "time"

// Reachability is the tri-state result of a binary-delivery probe. Only
// 200/403/404 are interpreted; anything else is unknown.
type Reachability int

const (
	ReachUnknown Reachability = iota
	ReachOK                   // 200: publicly consumable
	ReachForbidden            // 403: exists but gated
	ReachAbsent               // 404: not consumable
)

func (r Reachability) String() string {
	switch r {
	case ReachOK:
		return "reachable"
	case ReachForbidden:
		return "forbidden"
	case ReachAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// CatalogPresence is the result of the structured catalog lookup.
type CatalogPresence int

const (
	CatalogUnknown CatalogPresence = iota
	CatalogPresent
	CatalogAbsent
)

func (c CatalogPresence) String() string {
	switch c {
	case CatalogPresent:
		return "present"
	case CatalogAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// CatalogInfo is the metadata subset the resolver consults when the catalog
// lists the asset.
type CatalogInfo struct {
	ForSale    bool
	Restricted bool
	Limited    bool
	CreatedAt  time.Time
}

// PageSignal is the outcome of scanning the listing page's visible text
// against the ordered phrase families.
type PageSignal int

const (
	PageNone PageSignal = iota
	PageDecline
	PagePending
	PageDeletion
	PageNotFound
	PageFetchFailed
)

func (p PageSignal) String() string {
	switch p {
	case PageDecline:
		return "decline-phrase-found"
	case PagePending:
		return "pending-phrase-found"
	case PageDeletion:
		return "deletion-phrase-found"
	case PageNotFound:
		return "page-not-found"
	case PageFetchFailed:
		return "fetch-failed"
	default:
		return "none"
	}
}

// EvidenceBundle carries the independently sourced signals for one status
// determination. Bundles are ephemeral: produced fresh per check, never
// persisted. Each field degrades to its unknown value on probe failure, so
// any combination (including all-unknown) is a valid input to Resolve.
type EvidenceBundle struct {
	Anonymous     Reachability
	Authenticated Reachability
	Catalog       CatalogPresence
	CatalogInfo   *CatalogInfo // nil unless Catalog == CatalogPresent
	Page          PageSignal
	PageText      string // visible listing-page text; consulted by the strict deletion re-check
}
