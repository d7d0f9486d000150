package seo

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
)

// Fetcher retrieves the HTML of a public page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches raw server HTML
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a plain HTTP fetcher
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status code %d", url, resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

// ChromeFetcher renders the page in headless Chrome so client-rendered meta tags are present
type ChromeFetcher struct {
	execPath  string
	userAgent string
	timeout   time.Duration
}

// NewChromeFetcher creates a headless browser fetcher. An empty execPath uses chromedp's lookup.
func NewChromeFetcher(execPath, userAgent string, timeout time.Duration) *ChromeFetcher {
	return &ChromeFetcher{execPath: execPath, userAgent: userAgent, timeout: timeout}
}

// Fetch implements Fetcher
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true), // Required for systemd/Docker
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`head`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	return html, nil
}

// Page is the SEO-relevant markup of a live page
type Page struct {
	URL                string `json:"url"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Keywords           string `json:"keywords"`
	OGTitle            string `json:"og_title"`
	OGImage            string `json:"og_image"`
	Canonical          string `json:"canonical"`
	StructuredData     bool   `json:"structured_data"`
	GoogleVerification string `json:"google_verification"`
	Analytics          bool   `json:"analytics"`
}

// Finding compares one saved setting with the live page
type Finding struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Match    bool   `json:"match"`
}

// AuditResult is the live page plus its mismatches with saved settings
type AuditResult struct {
	Page      Page      `json:"page"`
	Findings  []Finding `json:"findings"`
	Mismatch  int       `json:"mismatch"`
	CheckedAt time.Time `json:"checked_at"`
}

// ParsePage extracts meta tags from HTML
func ParsePage(url, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(v)
	}

	p := &Page{
		URL:                url,
		Title:              strings.TrimSpace(doc.Find("head title").First().Text()),
		Description:        meta(`meta[name="description"]`),
		Keywords:           meta(`meta[name="keywords"]`),
		OGTitle:            meta(`meta[property="og:title"]`),
		OGImage:            meta(`meta[property="og:image"]`),
		GoogleVerification: meta(`meta[name="google-site-verification"]`),
		StructuredData:     doc.Find(`script[type="application/ld+json"]`).Length() > 0,
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		p.Canonical = strings.TrimSpace(href)
	}
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if strings.Contains(src, "googletagmanager.com") || strings.Contains(src, "google-analytics.com") {
			p.Analytics = true
			return false
		}
		return true
	})
	return p, nil
}

// Auditor checks the public site against the saved SEO settings
type Auditor struct {
	fetcher Fetcher
	siteURL string
}

// NewAuditor creates an auditor for siteURL
func NewAuditor(fetcher Fetcher, siteURL string) *Auditor {
	return &Auditor{fetcher: fetcher, siteURL: strings.TrimRight(siteURL, "/")}
}

// Audit fetches path on the site and compares it with s
func (a *Auditor) Audit(ctx context.Context, s models.SEOSettings, path string) (*AuditResult, error) {
	if a.siteURL == "" {
		return nil, fmt.Errorf("seo audit: site URL is not configured")
	}
	url := a.siteURL + "/" + strings.TrimLeft(path, "/")

	html, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		logging.Logger.Warnf("SEO: Audit fetch of %s failed: %v", url, err)
		return nil, err
	}
	page, err := ParsePage(url, html)
	if err != nil {
		return nil, err
	}

	res := &AuditResult{Page: *page, CheckedAt: time.Now()}
	add := func(field, expected, actual string, match bool) {
		res.Findings = append(res.Findings, Finding{Field: field, Expected: expected, Actual: actual, Match: match})
		if !match {
			res.Mismatch++
		}
	}

	add("title", s.SiteTitle, page.Title, sameText(s.SiteTitle, page.Title))
	add("description", s.SiteDescription, page.Description, sameText(s.SiteDescription, page.Description))
	add("og_image", s.OGImageURL, page.OGImage, sameText(s.OGImageURL, page.OGImage))
	if s.CanonicalEnabled {
		add("canonical", "present", page.Canonical, page.Canonical != "")
	}
	if s.SchemaEnabled {
		add("structured_data", "present", boolText(page.StructuredData), page.StructuredData)
	}
	if s.SearchConsoleCode != "" {
		add("search_console", s.SearchConsoleCode, page.GoogleVerification, sameText(s.SearchConsoleCode, page.GoogleVerification))
	}
	if s.GoogleAnalyticsID != "" || s.GoogleTagManagerID != "" {
		add("analytics", "present", boolText(page.Analytics), page.Analytics)
	}

	logging.Logger.Infof("SEO: Audited %s (%d mismatches)", url, res.Mismatch)
	return res, nil
}

func sameText(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func boolText(b bool) string {
	if b {
		return "present"
	}
	return "missing"
}
