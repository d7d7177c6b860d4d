package platform

// Resolve turns an evidence bundle into a status judgment. It is a pure
// function: no I/O, no clock, no hidden state. For identical bundles it
// always returns the same status.
//
// The rules run highest-priority first; the first match wins. The ordering
// encodes hard-won domain knowledge and must be preserved:
//
//   - Page text outranks raw reachability. The platform keeps declined assets
//     technically downloadable for a grace period, so a decline phrase beats
//     a 200 on the delivery path.
//   - Reachability outranks catalog presence.
//   - Declines are sticky: the first strong decline signal decides.
//     Acceptance needs two independent positive signals (public reachability
//     AND unrestricted catalog presence).
//   - Nothing decisive resolves to pending, never to accepted.
//
// Owner-only visibility (authenticated 200 while anonymous is not 200) is
// treated as declined: it is how the platform parks content that failed
// moderation, whereas genuinely pending assets gate the anonymous path with
// 403 rather than hiding it.
func Resolve(b *EvidenceBundle) Status {
	if b == nil {
		return StatusPending
	}

	// 1. The listing page is gone: the asset was deleted or scrubbed.
	if b.Page == PageNotFound {
		return StatusDeclined
	}

	// 2. Explicit decline wording overrides every other signal.
	if b.Page == PageDecline {
		return StatusDeclined
	}

	// 3. Deletion wording on a still-downloadable asset is suspicious but not
	// decisive; only the stricter moderation-deletion subset confirms it.
	if b.Page == PageDeletion && b.Anonymous == ReachOK {
		if confirmsStrictDeletion(b.PageText) {
			return StatusDeclined
		}
	}

	// 4. Explicit pending wording.
	if b.Page == PagePending {
		return StatusPending
	}

	// 5. Acceptance requires public reachability plus unrestricted catalog
	// presence.
	if b.Anonymous == ReachOK && b.Catalog == CatalogPresent && b.CatalogInfo != nil &&
		!b.CatalogInfo.Restricted && !b.CatalogInfo.Limited {
		return StatusAccepted
	}

	// 6. Restriction overrides raw reachability.
	if b.Anonymous == ReachOK && b.Catalog == CatalogPresent && b.CatalogInfo != nil {
		return StatusPending
	}

	// 7. Not publicly consumable.
	if b.Anonymous == ReachAbsent {
		return StatusDeclined
	}

	// 8. Exists but gated.
	if b.Anonymous == ReachForbidden {
		return StatusPending
	}

	// 9. Owner can see it, public cannot.
	if b.Authenticated == ReachOK && b.Anonymous != ReachOK {
		return StatusDeclined
	}

	// 10. The catalog does not list it at all.
	if b.Catalog == CatalogAbsent {
		return StatusDeclined
	}

	// 11. Safe default.
	return StatusPending
}
