package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// HeadlessFetcher renders pages in headless Chrome before they are parsed.
type HeadlessFetcher struct {
	timeout time.Duration
	settle  time.Duration
}

func NewHeadlessFetcher(timeout time.Duration) *HeadlessFetcher {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &HeadlessFetcher{timeout: timeout, settle: 1500 * time.Millisecond}
}

func (f *HeadlessFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	if f == nil {
		return "", fmt.Errorf("nil fetcher")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(httpHeaders()["User-Agent"]),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, f.timeout)
	defer reqCancel()

	var body string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &body, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless fetch %s: %w", pageURL, err)
	}
	return body, nil
}
