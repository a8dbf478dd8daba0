// Package browser extracts BookRAG service cookies from installed web browsers.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/bookrag/internal/config"
	"github.com/diogo/bookrag/internal/models"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// AllSupportedBrowsers returns the supported browsers in the order auto
// mode searches them
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}
}

func (b SupportedBrowser) String() string {
	return string(b)
}

var browserAliases = map[string]SupportedBrowser{
	"":                BrowserAuto,
	"auto":            BrowserAuto,
	"chrome":          BrowserChrome,
	"google-chrome":   BrowserChrome,
	"chromium":        BrowserChromium,
	"firefox":         BrowserFirefox,
	"mozilla":         BrowserFirefox,
	"mozilla-firefox": BrowserFirefox,
	"edge":            BrowserEdge,
	"microsoft-edge":  BrowserEdge,
	"msedge":          BrowserEdge,
	"opera":           BrowserOpera,
}

// ParseBrowser parses a --browser value
func ParseBrowser(s string) (SupportedBrowser, error) {
	if b, ok := browserAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return "", fmt.Errorf("unsupported browser: %s. Supported: auto, chrome, chromium, firefox, edge, opera", s)
}

// browserKind classifies the browser name reported by a kooky store
func browserKind(name string) SupportedBrowser {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "chromium"):
		return BrowserChromium
	case strings.Contains(name, "chrome"):
		return BrowserChrome
	case strings.Contains(name, "firefox"):
		return BrowserFirefox
	case strings.Contains(name, "edge"):
		return BrowserEdge
	case strings.Contains(name, "opera"):
		return BrowserOpera
	default:
		return ""
	}
}

// orderStores keeps the stores of target, or for auto every known browser's
// stores in search order. Profiles of one browser keep their original order.
func orderStores[S interface{ Browser() string }](stores []S, target SupportedBrowser) []S {
	wanted := []SupportedBrowser{target}
	if target == BrowserAuto {
		wanted = AllSupportedBrowsers()
	}

	var ordered []S
	for _, b := range wanted {
		for _, s := range stores {
			if browserKind(s.Browser()) == b {
				ordered = append(ordered, s)
			}
		}
	}
	return ordered
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Credentials *config.Credentials
	BrowserName string
	Host        string
}

// CookieHost returns the host whose cookies authenticate requests to baseURL
func CookieHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// domainScore ranks how well a cookie's domain attribute applies to host:
// 2 for the host itself, 1 for a parent domain, 0 when the cookie would not
// be sent to host at all.
func domainScore(cookieDomain, host string) int {
	d := strings.ToLower(strings.TrimPrefix(cookieDomain, "."))
	switch {
	case d == "":
		return 0
	case d == host:
		return 2
	case strings.HasSuffix(host, "."+d):
		return 1
	default:
		return 0
	}
}

// picker keeps the best-scoring value seen for each service cookie
type picker struct {
	host   string
	values map[string]string
	scores map[string]int
}

func newPicker(host string) *picker {
	return &picker{host: host, values: map[string]string{}, scores: map[string]int{}}
}

func (p *picker) offer(name, domain, value string) {
	if name != models.CookieCSRF && name != models.CookieSession {
		return
	}
	score := domainScore(domain, p.host)
	if score == 0 || value == "" || score <= p.scores[name] {
		return
	}
	p.values[name] = value
	p.scores[name] = score
}

func (p *picker) credentials() (*config.Credentials, bool) {
	csrf := p.values[models.CookieCSRF]
	if csrf == "" {
		return nil, false
	}
	creds := &config.Credentials{}
	creds.Set(csrf, p.values[models.CookieSession])
	return creds, true
}

// ExtractCredentials reads the csrf_token and session cookies set by the
// service at baseURL. With BrowserAuto every supported browser is searched.
func ExtractCredentials(ctx context.Context, browser SupportedBrowser, baseURL string) (*ExtractResult, error) {
	host, err := CookieHost(baseURL)
	if err != nil {
		return nil, err
	}

	stores := kooky.FindAllCookieStores(ctx)
	defer func() {
		for _, s := range stores {
			_ = s.Close()
		}
	}()

	candidates := orderStores(stores, browser)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var searched []string
	for _, store := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := storeName(store)
		searched = append(searched, name)

		creds, err := readStore(ctx, store, host)
		if err != nil {
			return nil, fmt.Errorf("failed to read cookies from %s: %w", name, err)
		}
		if creds != nil {
			return &ExtractResult{Credentials: creds, BrowserName: name, Host: host}, nil
		}
	}

	return nil, fmt.Errorf("cookie %s for %s not found in %s. Please log in to %s in the browser first",
		models.CookieCSRF, host, strings.Join(searched, ", "), baseURL)
}

func storeName(store kooky.CookieStore) string {
	if store.Profile() != "" {
		return fmt.Sprintf("%s (profile: %s)", store.Browser(), store.Profile())
	}
	return store.Browser()
}

// readStore returns the service credentials held by store, or nil
func readStore(ctx context.Context, store kooky.CookieStore, host string) (*config.Credentials, error) {
	p := newPicker(host)
	for cookie := range store.TraverseCookies(kooky.Valid).OnlyCookies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.offer(cookie.Name, cookie.Domain, cookie.Value)
	}
	creds, _ := p.credentials()
	return creds, nil
}

// ListAvailableBrowsers returns the browsers that have a cookie store
func ListAvailableBrowsers() []string {
	stores := kooky.FindAllCookieStores(context.Background())

	var browsers []string
	seen := make(map[string]bool)
	for _, store := range stores {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		_ = store.Close()
	}
	return browsers
}
