package browser

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledFetcherReportsUnavailable(t *testing.T) {
	_, err := DisabledFetcher{}.FetchPosts(context.Background(), "成都", 5, nil)
	assert.True(t, errors.Is(err, ports.ErrFetcherUnavailable))
}

func TestClosedManagerReportsUnavailable(t *testing.T) {
	m := NewManager(ManagerConfig{Headless: true})
	require.NoError(t, m.Close())

	_, err := m.Browser(context.Background())
	assert.ErrorIs(t, err, ports.ErrFetcherUnavailable)

	f := NewXHSFetcher(XHSFetcherConfig{Manager: m, BaseURL: "https://www.xiaohongshu.com"})
	_, err = f.FetchPosts(context.Background(), "成都", 3, nil)
	assert.ErrorIs(t, err, ports.ErrFetcherUnavailable)
}

func TestFetchPostsZeroMaxSkipsBrowser(t *testing.T) {
	m := NewManager(ManagerConfig{})
	require.NoError(t, m.Close())
	f := NewXHSFetcher(XHSFetcherConfig{Manager: m})

	items, err := f.FetchPosts(context.Background(), "成都", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchURLEscapesKeyword(t *testing.T) {
	f := NewXHSFetcher(XHSFetcherConfig{BaseURL: "https://www.xiaohongshu.com/"})
	u, err := url.Parse(f.searchURL("成都 美食"))
	require.NoError(t, err)
	assert.Equal(t, "/search_result", u.Path)
	assert.Equal(t, "成都 美食", u.Query().Get("keyword"))
}

func TestCookieParamsUseSiteDomain(t *testing.T) {
	params := cookieParams(map[string]string{"web_session": "abc", "a1": "x"})
	require.Len(t, params, 2)
	for _, p := range params {
		assert.Equal(t, cookieDomain, p.Domain)
		assert.Equal(t, "/", p.Path)
	}
}

func TestSleepStaysWithinBoundsAndHonoursContext(t *testing.T) {
	f := NewXHSFetcher(XHSFetcherConfig{DelayMin: 5 * time.Millisecond, DelayMax: 10 * time.Millisecond})
	start := time.Now()
	require.NoError(t, f.sleep(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	slow := NewXHSFetcher(XHSFetcherConfig{DelayMin: time.Hour, DelayMax: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slow.sleep(ctx), context.Canceled)
}

func TestRandomUserAgentFromPool(t *testing.T) {
	assert.Contains(t, userAgents, randomUserAgent())
}
