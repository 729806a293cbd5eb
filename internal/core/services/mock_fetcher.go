package services

import (
	"context"
	"fmt"

	"github.com/starrycyq/travle/internal/domain"
)

const (
	mockItemCap = 3
	mockAuthor  = "小红书用户"
)

// MockFetcher produces deterministic placeholder posts. It is only wired as a
// development fallback; every item it returns is marked Synthetic.
type MockFetcher struct{}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

func (m *MockFetcher) FetchPosts(ctx context.Context, keyword string, maxItems int, _ map[string]string) ([]domain.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := min(mockItemCap, maxItems)
	if n < 0 {
		n = 0
	}
	crawledAt := now()
	items := make([]domain.RawItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.RawItem{
			Title:     fmt.Sprintf("%s旅游攻略 %d", keyword, i+1),
			Content:   fmt.Sprintf("这是关于%s的详细旅游攻略，包含景点推荐、美食介绍和行程安排。", keyword),
			Images:    []string{},
			Author:    mockAuthor,
			Keyword:   keyword,
			Source:    domain.DefaultSource,
			CrawledAt: crawledAt,
			Synthetic: true,
		})
	}
	return items, nil
}
