package pagination

import (
	"context"

	"github.com/spf13/cobra"
)

const (
	LimitFlag = "limit"
	PageFlag  = "page"
)

// Collect drains a continuation-token listing. more reports whether another page exists and
// next fetches it; both usually come from an SDK paginator.
func Collect[T any](ctx context.Context, more func() bool, next func(context.Context) ([]T, error)) ([]T, error) {
	var items []T
	for more() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := next(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// Options holds display pagination parameters
type Options struct {
	Limit int
	Page  int
}

// PageInfo provides pagination metadata for display
type PageInfo struct {
	Page    int
	Limit   int
	Total   int
	Showing int
	HasMore bool
}

// RegisterFlags adds --limit and --page to a command. -p is taken by --profile.
func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(LimitFlag, "l", 0, "Maximum records to show (0 = all)")
	cmd.Flags().Int(PageFlag, 1, "Page number when limit is set")
}

func GetOptions(cmd *cobra.Command) Options {
	limit, _ := cmd.Flags().GetInt(LimitFlag)
	page, _ := cmd.Flags().GetInt(PageFlag)
	if page < 1 {
		page = 1
	}
	return Options{Limit: limit, Page: page}
}

// Paginate slices items for display. It never fetches anything.
func Paginate[T any](items []T, opts Options) ([]T, PageInfo) {
	total := len(items)
	info := PageInfo{Page: opts.Page, Limit: opts.Limit, Total: total}

	if opts.Limit <= 0 {
		info.Showing = total
		return items, info
	}

	start := (opts.Page - 1) * opts.Limit
	if start >= total {
		return []T{}, info
	}
	end := min(start+opts.Limit, total)

	info.Showing = end - start
	info.HasMore = end < total
	return items[start:end], info
}
