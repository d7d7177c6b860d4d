package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/webclient"
)

// Collector runs the battery of read-only probes for one asset and returns a
// raw evidence bundle. It never returns an error: every probe failure
// degrades its field to the unknown value instead of aborting the bundle.
//
// Probes run sequentially with independent timeouts, so worst-case latency is
// the sum of the configured probe timeouts. A timed-out probe is left to its
// context; the collector moves on.
type Collector struct {
	cfg    Config
	wc     webclient.WebClient
	pageWC webclient.WebClient // listing-page fetches; may be a rendering backend
	logger logging.Logger
}

// NewCollector creates a Collector. pageWC is used for the listing-page probe
// and may be nil, in which case wc is used for all four probes.
func NewCollector(cfg Config, wc, pageWC webclient.WebClient, logger logging.Logger) *Collector {
	if pageWC == nil {
		pageWC = wc
	}
	return &Collector{
		cfg:    cfg,
		wc:     wc,
		pageWC: pageWC,
		logger: logger.With(logging.Field{Key: "component", Value: "collector"}),
	}
}

// Collect gathers evidence for assetID. session may be nil or anonymous; the
// authenticated probe only runs when a credential is available.
func (c *Collector) Collect(ctx context.Context, assetID string, kind Kind, session *Session) *EvidenceBundle {
	bundle := &EvidenceBundle{
		Anonymous:     ReachUnknown,
		Authenticated: ReachUnknown,
		Catalog:       CatalogUnknown,
		Page:          PageFetchFailed,
	}

	// Probe 1: anonymous binary delivery. The single strongest signal.
	bundle.Anonymous = c.probeDelivery(ctx, assetID, nil)

	// Probe 2: authenticated delivery, credential permitting. Used only to
	// detect owner-only visibility.
	if session != nil && session.Authenticated() {
		bundle.Authenticated = c.probeDelivery(ctx, assetID, session.authHeaders())
	}

	// Probe 3: catalog metadata lookup.
	bundle.Catalog, bundle.CatalogInfo = c.probeCatalog(ctx, assetID, kind)

	// Probe 4: listing page fetch and phrase scan.
	bundle.Page, bundle.PageText = c.probePage(ctx, assetID)

	c.logger.Debug("collected evidence",
		logging.Field{Key: "asset_id", Value: assetID},
		logging.Field{Key: "anonymous", Value: bundle.Anonymous.String()},
		logging.Field{Key: "authenticated", Value: bundle.Authenticated.String()},
		logging.Field{Key: "catalog", Value: bundle.Catalog.String()},
		logging.Field{Key: "page", Value: bundle.Page.String()})

	return bundle
}

func (c *Collector) probeDelivery(ctx context.Context, assetID string, headers http.Header) Reachability {
	tctx, cancel := context.WithTimeout(ctx, c.timeout(c.cfg.DeliveryTimeout, 5*time.Second))
	defer cancel()

	resp, err := c.wc.Do(tctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     c.cfg.BaseURL + "/asset/?id=" + url.QueryEscape(assetID),
		Headers: headers,
	})
	if err != nil {
		c.logger.Warn("delivery probe failed",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return ReachUnknown
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return ReachOK
	case http.StatusForbidden:
		return ReachForbidden
	case http.StatusNotFound:
		return ReachAbsent
	default:
		return ReachUnknown
	}
}

// catalogItemType maps the asset kind to the catalog's item descriptor.
func catalogItemType(kind Kind) string {
	if kind == KindAudio {
		return "Audio"
	}
	return "Image"
}

func (c *Collector) probeCatalog(ctx context.Context, assetID string, kind Kind) (CatalogPresence, *CatalogInfo) {
	tctx, cancel := context.WithTimeout(ctx, c.timeout(c.cfg.CatalogTimeout, 5*time.Second))
	defer cancel()

	reqBody, err := json.Marshal(map[string]any{
		"items": []map[string]string{
			{"itemType": catalogItemType(kind), "id": assetID},
		},
	})
	if err != nil {
		return CatalogUnknown, nil
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := c.wc.Do(tctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.cfg.BaseURL + "/catalog/v1/items/details",
		Headers: headers,
		Body:    reqBody,
	})
	if err != nil {
		c.logger.Warn("catalog probe failed",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return CatalogUnknown, nil
	}
	if resp.StatusCode != http.StatusOK {
		return CatalogUnknown, nil
	}

	var parsed struct {
		Data []struct {
			ID         string `json:"id"`
			IsForSale  bool   `json:"isForSale"`
			Restricted bool   `json:"isRestricted"`
			Limited    bool   `json:"isLimited"`
			CreatedUTC string `json:"createdUtc"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		c.logger.Warn("catalog response unparseable",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return CatalogUnknown, nil
	}

	// 200 with an empty result list means the catalog does not list the
	// asset, which is strong (not absolute) evidence of decline/removal.
	if len(parsed.Data) == 0 {
		return CatalogAbsent, nil
	}

	item := parsed.Data[0]
	info := &CatalogInfo{
		ForSale:    item.IsForSale,
		Restricted: item.Restricted,
		Limited:    item.Limited,
	}
	if t, err := time.Parse(time.RFC3339, item.CreatedUTC); err == nil {
		info.CreatedAt = t
	}
	return CatalogPresent, info
}

func (c *Collector) probePage(ctx context.Context, assetID string) (PageSignal, string) {
	tctx, cancel := context.WithTimeout(ctx, c.timeout(c.cfg.PageTimeout, 10*time.Second))
	defer cancel()

	resp, err := c.pageWC.Get(tctx, c.cfg.BaseURL+"/library/"+url.PathEscape(assetID))
	if err != nil {
		c.logger.Warn("listing page fetch failed",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return PageFetchFailed, ""
	}

	// A 404 on the listing page itself is a deletion/decline signal.
	if resp.StatusCode == http.StatusNotFound {
		return PageNotFound, ""
	}
	if resp.StatusCode != http.StatusOK {
		return PageFetchFailed, ""
	}

	text := VisibleText(resp.Body)
	return ScanPageText(text), text
}

func (c *Collector) timeout(configured, fallback time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return fallback
}
