package platform

import "testing"

func bundle(mut ...func(*EvidenceBundle)) *EvidenceBundle {
	b := &EvidenceBundle{}
	for _, m := range mut {
		m(b)
	}
	return b
}

func TestResolve_NilBundle(t *testing.T) {
	if got := Resolve(nil); got != StatusPending {
		t.Fatalf("expected pending for nil bundle, got %v", got)
	}
}

func TestResolve_AllUnknownIsPending(t *testing.T) {
	// Total probe failure must never look like a verdict.
	if got := Resolve(bundle()); got != StatusPending {
		t.Fatalf("expected pending when every signal is unknown, got %v", got)
	}
}

func TestResolve_PageGoneIsDeclined(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Page = PageNotFound
		b.Anonymous = ReachOK
		b.Catalog = CatalogPresent
		b.CatalogInfo = &CatalogInfo{ForSale: true}
	})
	if got := Resolve(b); got != StatusDeclined {
		t.Fatalf("missing listing page must decline, got %v", got)
	}
}

func TestResolve_DeclinePhraseOverridesDownloadability(t *testing.T) {
	// Declined assets stay downloadable for a grace period; the page wording
	// must win over the 200.
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachOK
		b.Authenticated = ReachOK
		b.Catalog = CatalogPresent
		b.CatalogInfo = &CatalogInfo{ForSale: true}
		b.Page = PageDecline
		b.PageText = "This item has been rejected by moderation."
	})
	if got := Resolve(b); got != StatusDeclined {
		t.Fatalf("decline wording must override reachability, got %v", got)
	}
}

func TestResolve_DeletionPhraseNeedsStrictConfirmation(t *testing.T) {
	base := func(text string) *EvidenceBundle {
		return bundle(func(b *EvidenceBundle) {
			b.Anonymous = ReachOK
			b.Catalog = CatalogPresent
			b.CatalogInfo = &CatalogInfo{}
			b.Page = PageDeletion
			b.PageText = text
		})
	}

	// Generic deletion wording on a downloadable asset is not decisive; the
	// positive signals still win.
	if got := Resolve(base("this item was removed")); got != StatusAccepted {
		t.Errorf("weak deletion phrase with 200 should fall through, got %v", got)
	}

	if got := Resolve(base("deleted by moderation")); got != StatusDeclined {
		t.Errorf("strict deletion phrase should decline, got %v", got)
	}
}

func TestResolve_PendingPhrase(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachAbsent
		b.Page = PagePending
		b.PageText = "This item is pending review."
	})
	if got := Resolve(b); got != StatusPending {
		t.Fatalf("pending wording must win over 404 delivery, got %v", got)
	}
}

func TestResolve_AcceptanceNeedsTwoSignals(t *testing.T) {
	accepted := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachOK
		b.Catalog = CatalogPresent
		b.CatalogInfo = &CatalogInfo{ForSale: true}
	})
	if got := Resolve(accepted); got != StatusAccepted {
		t.Fatalf("public 200 plus unrestricted catalog entry should accept, got %v", got)
	}

	// Reachable but not cataloged must not accept.
	reachOnly := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachOK
	})
	if got := Resolve(reachOnly); got == StatusAccepted {
		t.Fatalf("reachability alone must not accept")
	}
}

func TestResolve_RestrictionBlocksAcceptance(t *testing.T) {
	for _, info := range []*CatalogInfo{
		{Restricted: true},
		{Limited: true},
	} {
		b := bundle(func(b *EvidenceBundle) {
			b.Anonymous = ReachOK
			b.Catalog = CatalogPresent
			b.CatalogInfo = info
		})
		if got := Resolve(b); got != StatusPending {
			t.Errorf("restricted/limited catalog entry should stay pending, got %v (info %+v)", got, info)
		}
	}
}

func TestResolve_AnonymousAbsentIsDeclined(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachAbsent
		b.Catalog = CatalogPresent
		b.CatalogInfo = &CatalogInfo{ForSale: true}
	})
	if got := Resolve(b); got != StatusDeclined {
		t.Fatalf("404 on the public delivery path should decline, got %v", got)
	}
}

func TestResolve_AnonymousForbiddenIsPending(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachForbidden
	})
	if got := Resolve(b); got != StatusPending {
		t.Fatalf("gated asset should stay pending, got %v", got)
	}
}

func TestResolve_OwnerOnlyVisibilityIsDeclined(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachUnknown
		b.Authenticated = ReachOK
	})
	if got := Resolve(b); got != StatusDeclined {
		t.Fatalf("owner-only visibility should decline, got %v", got)
	}
}

func TestResolve_CatalogAbsentIsDeclined(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Catalog = CatalogAbsent
	})
	if got := Resolve(b); got != StatusDeclined {
		t.Fatalf("catalog suppression should decline, got %v", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	b := bundle(func(b *EvidenceBundle) {
		b.Anonymous = ReachForbidden
		b.Catalog = CatalogPresent
		b.CatalogInfo = &CatalogInfo{Restricted: true}
	})
	first := Resolve(b)
	for i := 0; i < 10; i++ {
		if got := Resolve(b); got != first {
			t.Fatalf("resolution flapped: %v then %v", first, got)
		}
	}
}
