package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-goodreads/config"
)

const (
	phaseList   = "list"
	phaseDetail = "detail"

	pageKey  = "page"
	phaseKey = "phase"
	startKey = "start"
)

// page receives the response of a single request through the colly context.
type page struct {
	status int
	body   []byte
}

// fetcher issues synchronous GETs through one colly collector. The collector's
// limit rule holds each request slot for cfg.Delay after the response arrives.
type fetcher struct {
	collector *colly.Collector
	metrics   *Metrics

	requestCount int64
}

func newFetcher(cfg *config.Config, host string, metrics *Metrics) (*fetcher, error) {
	collector := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.DetailWorkers,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	f := &fetcher{collector: collector, metrics: metrics}
	f.configureHandlers()
	return f, nil
}

func (f *fetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(startKey, time.Now())
		atomic.AddInt64(&f.requestCount, 1)
		f.metrics.IncRequest(r.Ctx.Get(phaseKey))
		slog.Debug("fetching page",
			slog.String("phase", r.Ctx.Get(phaseKey)),
			slog.String("url", r.URL.String()),
		)
	})

	f.collector.OnResponse(func(r *colly.Response) {
		if p, ok := r.Ctx.GetAny(pageKey).(*page); ok {
			p.status = r.StatusCode
			p.body = r.Body
		}
		f.observe(r)
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Ctx == nil {
			return
		}
		if p, ok := r.Ctx.GetAny(pageKey).(*page); ok {
			p.status = r.StatusCode
		}
		f.observe(r)
	})
}

func (f *fetcher) observe(r *colly.Response) {
	if start, ok := r.Ctx.GetAny(startKey).(time.Time); ok {
		f.metrics.ObserveDuration(r.Ctx.Get(phaseKey), time.Since(start))
	}
}

// get fetches target and parses it as HTML. Any non-2xx status is an *ErrTransport.
func (f *fetcher) get(ctx context.Context, phase, target string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &page{}
	cctx := colly.NewContext()
	cctx.Put(pageKey, result)
	cctx.Put(phaseKey, phase)

	err := f.collector.Request(http.MethodGet, target, nil, cctx, nil)
	if err != nil || result.status < http.StatusOK || result.status >= http.StatusMultipleChoices {
		cause := classifyError(err, result.status)
		if cause == nil {
			cause = fmt.Errorf("http status %d", result.status)
		}
		transportErr := &ErrTransport{URL: target, StatusCode: result.status, Err: cause}
		f.metrics.IncError(errorTypeLabel(cause))
		slog.Error("request error",
			slog.String("phase", phase),
			slog.String("url", target),
			slog.String("category", errorTypeLabel(cause)),
			slog.Any("error", err),
		)
		return nil, transportErr
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, nil
}

func (f *fetcher) requests() int {
	return int(atomic.LoadInt64(&f.requestCount))
}
