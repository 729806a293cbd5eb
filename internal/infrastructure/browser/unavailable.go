package browser

import (
	"context"
	"fmt"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
)

// DisabledFetcher stands in when browser automation is switched off.
type DisabledFetcher struct{}

func (DisabledFetcher) FetchPosts(context.Context, string, int, map[string]string) ([]domain.RawItem, error) {
	return nil, fmt.Errorf("%w: browser automation disabled", ports.ErrFetcherUnavailable)
}
