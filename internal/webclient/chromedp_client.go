package webclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/rinwao/hakobu/internal/logging"
)

// ChromeDPClient renders pages in a headless browser before returning them.
// Only GET is supported; the listing-page probe uses it for deployments that
// build the page client-side.
type ChromeDPClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      logging.Logger
}

func NewChromeDPClient(cfg Config, logger logging.Logger) (*ChromeDPClient, error) {
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	idleAfter := cfg.IdleAfter
	if idleAfter == 0 {
		idleAfter = 2 * time.Second
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	componentLogger.Info("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromeDPClient{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		idleAfter:   idleAfter,
		logger:      componentLogger,
	}, nil
}

// waitNetworkIdle signals once no network requests have been active for
// idleAfter. Used instead of load events because listing pages keep fetching
// after load.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					close(idleChan)
				})
			}
		})
	}

	chromedp.ListenTarget(ctx,
		func(ev any) {
			switch ev.(type) {
			case *network.EventRequestWillBeSent:
				atomic.AddInt32(&activeReqs, 1)
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if atomic.AddInt32(&activeReqs, -1) == 0 {
					startTimer()
				}
			}
		})

	// Arm the timer in case the page makes no requests after navigation.
	startTimer()

	return idleChan
}

func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Method != "" && req.Method != http.MethodGet {
		return nil, fmt.Errorf("chromedp backend only supports GET, got %s", req.Method)
	}

	tabCtx, cancel := chromedp.NewContext(cdc.allocCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var tcancel context.CancelFunc
		tabCtx, tcancel = context.WithDeadline(tabCtx, deadline)
		defer tcancel()
	}

	waitIdleChan := waitNetworkIdle(tabCtx, cdc.idleAfter)

	if err := chromedp.Run(tabCtx, chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	select {
	case <-waitIdleChan:
	case <-tabCtx.Done():
		return nil, tabCtx.Err()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", req.URL, err)
	}

	// The CDP snapshot path does not expose the response status; a rendered
	// document is treated as 200. Status-sensitive probes use nethttp.
	return &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    http.Header{"Content-Type": []string{"text/html"}},
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromeDPClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (cdc *ChromeDPClient) Close() error {
	cdc.logger.Info("closing chromedp webclient")
	cdc.allocCancel()
	return nil
}
