package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/urfave/cli/v3"
)

func SearchAction(ctx context.Context, cmd *cli.Command) error {
	filters, err := parseFilters(cmd.StringSlice("filter"))
	if err != nil {
		return err
	}
	query := cmd.String("query")
	if query == "" {
		query = strings.Join(cmd.Args().Slice(), " ")
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	results, err := c.SearchService.Search(ctx, ports.SearchInput{
		Query:   query,
		Limit:   cmd.Int("limit"),
		Filters: filters,
	})
	if err != nil {
		return err
	}
	return printJSON(results)
}

func SearchInfoAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	info, err := c.SearchService.Info(ctx)
	if err != nil {
		return err
	}
	return printJSON(info)
}

// parseFilters turns key=value pairs into a filter map.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
