package browser

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

const (
	cookieDomain  = ".xiaohongshu.com"
	feedSelector  = ".feeds-item"
	maxScrollRuns = 20
	navTimeout    = 30 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36",
}

type XHSFetcherConfig struct {
	Manager  *Manager
	BaseURL  string
	DelayMin time.Duration
	DelayMax time.Duration
	Logger   *logger.Logger
}

// XHSFetcher reads search result cards from the site's web search page.
type XHSFetcher struct {
	manager  *Manager
	baseURL  string
	delayMin time.Duration
	delayMax time.Duration
	logger   *logger.Logger
}

func NewXHSFetcher(cfg XHSFetcherConfig) *XHSFetcher {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &XHSFetcher{
		manager:  cfg.Manager,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		delayMin: cfg.DelayMin,
		delayMax: cfg.DelayMax,
		logger:   log,
	}
}

func (f *XHSFetcher) FetchPosts(ctx context.Context, keyword string, maxItems int, cookies map[string]string) ([]domain.RawItem, error) {
	if maxItems <= 0 {
		return []domain.RawItem{}, nil
	}

	b, err := f.manager.Browser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		// A browser that cannot open tabs is as good as absent.
		f.manager.Reset()
		return nil, fmt.Errorf("%w: open tab: %v", ports.ErrFetcherUnavailable, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: randomUserAgent()}); err != nil {
		f.logger.Debugw("xhs_set_user_agent_failed", "error", err)
	}
	if len(cookies) > 0 {
		if err := page.SetCookies(cookieParams(cookies)); err != nil {
			f.logger.Warnw("xhs_cookie_injection_failed", "error", err)
		} else {
			f.logger.Infow("xhs_cookies_injected", "count", len(cookies))
		}
	}

	if err := f.open(ctx, page, f.searchURL(keyword)); err != nil {
		return nil, err
	}
	if err := f.sleep(ctx); err != nil {
		return nil, err
	}
	if err := f.loadMore(ctx, page, maxItems); err != nil {
		return nil, err
	}

	cards, err := page.Elements(feedSelector)
	if err != nil {
		return nil, fmt.Errorf("find result cards: %w", err)
	}

	crawledAt := time.Now().UTC()
	items := make([]domain.RawItem, 0, min(maxItems, len(cards)))
	for i, card := range cards {
		if len(items) >= maxItems {
			break
		}
		item, ok := f.readCard(card)
		if !ok {
			f.logger.Debugw("xhs_card_skipped", "keyword", keyword, "index", i)
			continue
		}
		item.Keyword = keyword
		item.Source = domain.DefaultSource
		item.CrawledAt = crawledAt
		items = append(items, item)
	}

	f.logger.Infow("xhs_fetch_done", "keyword", keyword, "cards", len(cards), "items", len(items))
	return items, nil
}

func (f *XHSFetcher) searchURL(keyword string) string {
	return fmt.Sprintf("%s/search_result?keyword=%s", f.baseURL, url.QueryEscape(keyword))
}

func (f *XHSFetcher) open(ctx context.Context, page *rod.Page, target string) error {
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(target); err != nil {
		return fmt.Errorf("navigate %s: %w", target, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		f.logger.Warnw("xhs_wait_load_timeout", "url", target, "error", err)
	}
	return nil
}

// loadMore scrolls until enough cards are present or the page stops growing.
func (f *XHSFetcher) loadMore(ctx context.Context, page *rod.Page, target int) error {
	lastHeight, err := scrollHeight(page)
	if err != nil {
		return fmt.Errorf("read scroll height: %w", err)
	}

	for run := 0; run < maxScrollRuns; run++ {
		cards, err := page.Elements(feedSelector)
		if err != nil {
			return fmt.Errorf("count result cards: %w", err)
		}
		if len(cards) >= target {
			return nil
		}

		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := f.sleep(ctx); err != nil {
			return err
		}

		height, err := scrollHeight(page)
		if err != nil {
			return fmt.Errorf("read scroll height: %w", err)
		}
		if height == lastHeight {
			return nil
		}
		lastHeight = height
	}
	return nil
}

func (f *XHSFetcher) readCard(card *rod.Element) (domain.RawItem, bool) {
	title := firstText(card, ".title, .note-title")
	content := firstText(card, ".desc, .note-desc")
	if title == "" && content == "" {
		return domain.RawItem{}, false
	}

	images := []string{}
	if imgs, err := card.Elements(".image img, .cover img"); err == nil {
		for _, img := range imgs {
			src, err := img.Attribute("src")
			if err == nil && src != nil && *src != "" {
				images = append(images, *src)
			}
		}
	}

	return domain.RawItem{
		Title:   title,
		Content: content,
		Images:  images,
		Author:  firstText(card, ".author, .username"),
	}, true
}

// sleep waits a random duration in [delayMin, delayMax].
func (f *XHSFetcher) sleep(ctx context.Context) error {
	d := f.delayMin
	if spread := f.delayMax - f.delayMin; spread > 0 {
		d += rand.N(spread)
	}
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// firstText uses Elements rather than Element so a missing child does not
// block waiting for it to appear.
func firstText(card *rod.Element, selector string) string {
	els, err := card.Elements(selector)
	if err != nil || len(els) == 0 {
		return ""
	}
	text, err := els[0].Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func scrollHeight(page *rod.Page) (int, error) {
	res, err := page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func cookieParams(cookies map[string]string) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for name, value := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   name,
			Value:  value,
			Domain: cookieDomain,
			Path:   "/",
		})
	}
	return params
}

func randomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}
