package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidURL = errors.New("url must be absolute http(s)")
	// ErrBlockedHost matches ErrInvalidURL so callers report it as bad input.
	ErrBlockedHost = fmt.Errorf("%w: host is not publicly routable", ErrInvalidURL)
)

const (
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// Pages with less visible text than this are assumed to be rendered
	// client side and are retried in a headless browser.
	minStaticText = 200
)

// Page is the readable content of a fetched job advert.
type Page struct {
	URL      string
	Title    string
	Text     string
	Postings []string
}

type Fetcher struct {
	timeout  time.Duration
	headless bool
	logger   *logrus.Logger

	// allowPrivate lifts the public-address guard for tests against
	// httptest servers.
	allowPrivate bool
	resolver     *net.Resolver
}

func New(logger *logrus.Logger) *Fetcher {
	return &Fetcher{timeout: 25 * time.Second, headless: true, logger: logger, resolver: net.DefaultResolver}
}

// WithoutHeadless disables the browser fallback.
func (f *Fetcher) WithoutHeadless() *Fetcher {
	cp := *f
	cp.headless = false
	return &cp
}

func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// blockedIP reports addresses an import must never reach: loopback,
// private, link-local (cloud metadata), CGNAT, multicast and unspecified.
func blockedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		return v4[0] == 0 || (v4[0] == 100 && v4[1]&0xc0 == 64) || v4[0] >= 240
	}
	return false
}

// checkHost resolves host and fails when any of its addresses is blocked.
func (f *Fetcher) checkHost(ctx context.Context, host string) error {
	if f.allowPrivate {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if blockedIP(ip) {
			return ErrBlockedHost
		}
		return nil
	}
	if strings.EqualFold(strings.TrimSuffix(host, "."), "localhost") {
		return ErrBlockedHost
	}
	resolver := f.resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: %s does not resolve", ErrInvalidURL, host)
	}
	for _, a := range addrs {
		if blockedIP(a.IP) {
			return ErrBlockedHost
		}
	}
	return nil
}

// checkURL validates a URL reached directly, by redirect or by the browser.
func (f *Fetcher) checkURL(ctx context.Context, raw string) error {
	u, err := ValidateURL(raw)
	if err != nil {
		return err
	}
	return f.checkHost(ctx, u.Hostname())
}

// dialControl re-checks the address actually dialled, so a DNS answer that
// changes between the check and the connection still cannot reach a
// private host.
func (f *Fetcher) dialControl(_, address string, _ syscall.RawConn) error {
	if f.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if blockedIP(net.ParseIP(host)) {
		return ErrBlockedHost
	}
	return nil
}

func (f *Fetcher) transport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second, Control: f.dialControl}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, raw string) (Page, error) {
	u, err := ValidateURL(raw)
	if err != nil {
		return Page{}, err
	}
	if err := f.checkHost(ctx, u.Hostname()); err != nil {
		return Page{}, err
	}

	html, err := f.fetchStatic(ctx, u.String())
	if errors.Is(err, ErrBlockedHost) {
		return Page{}, err
	}
	if ctx.Err() != nil {
		return Page{}, ctx.Err()
	}
	if err != nil && !f.headless {
		return Page{}, err
	}
	var page Page
	if err == nil {
		page, err = ParseHTML(u.String(), html)
		if err == nil && (len(page.Text) >= minStaticText || len(page.Postings) > 0 || !f.headless) {
			return page, nil
		}
	}
	if f.logger != nil {
		f.logger.WithField("url", u.String()).Info("static fetch thin, rendering headless")
	}

	rendered, herr := f.fetchHeadless(ctx, u.String())
	if herr != nil {
		if err == nil && page.Text != "" {
			return page, nil
		}
		return Page{}, fmt.Errorf("fetch %s: %w", u.Host, herr)
	}
	return ParseHTML(u.String(), []byte(rendered))
}

func (f *Fetcher) fetchStatic(ctx context.Context, target string) ([]byte, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.Context = ctx
	c.WithTransport(f.transport())
	c.SetRequestTimeout(f.timeout)
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("too many redirects")
		}
		return f.checkURL(req.Context(), req.URL.String())
	})

	var body []byte
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9,ms;q=0.8")
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(target); err != nil {
		return nil, blockedOr(err)
	}
	c.Wait()
	if reqErr != nil {
		return nil, blockedOr(reqErr)
	}
	return body, nil
}

// blockedOr surfaces ErrBlockedHost from transport errors whose wrapping
// does not always unwrap cleanly.
func blockedOr(err error) error {
	if err != nil && !errors.Is(err, ErrBlockedHost) && strings.Contains(err.Error(), ErrBlockedHost.Error()) {
		return fmt.Errorf("%w: %v", ErrBlockedHost, err)
	}
	return err
}

func (f *Fetcher) fetchHeadless(ctx context.Context, target string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, f.timeout)
	defer reqCancel()

	if err := f.checkURL(reqCtx, target); err != nil {
		return "", err
	}

	var html, final string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&final),
	)
	if err != nil {
		return "", err
	}
	// The browser follows redirects on its own; refuse the page if it
	// landed somewhere private.
	if err := f.checkURL(reqCtx, final); err != nil {
		return "", err
	}
	err = chromedp.Run(reqCtx,
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// ParseHTML pulls the title, visible text and any JSON-LD blocks out of a
// document.
func ParseHTML(pageURL string, html []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, err
	}

	p := Page{URL: pageURL}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if raw := strings.TrimSpace(s.Text()); raw != "" {
			p.Postings = append(p.Postings, raw)
		}
	})

	p.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find("script, style, noscript, nav, footer, header, svg").Remove()

	var lines []string
	doc.Find("body").Find("h1, h2, h3, h4, p, li, td").Each(func(_ int, s *goquery.Selection) {
		t := strings.Join(strings.Fields(s.Text()), " ")
		if t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		lines = append(lines, strings.Join(strings.Fields(doc.Find("body").Text()), " "))
	}
	p.Text = strings.TrimSpace(strings.Join(lines, "\n"))
	return p, nil
}
