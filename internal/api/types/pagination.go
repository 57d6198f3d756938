package types

import (
	"context"

	"github.com/gin-gonic/gin"

	"wsadmin/internal/config"
	"wsadmin/internal/pagination"
	"wsadmin/internal/storage"
)

// BindPagination reads page and page_size from the query string and applies
// the configured defaults and limits.
func BindPagination(c *gin.Context, cfg config.PaginationConfig) (pagination.Params, *ErrorWithContext) {
	var req PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return pagination.Params{}, ValidationError(err.Error())
	}

	params, err := pagination.Params{Page: req.Page, PageSize: req.PageSize}.
		Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)
	if err != nil {
		return pagination.Params{}, ValidationError(err.Error())
	}
	return params, nil
}

// Paginate counts the entities matching where, clamps the requested page,
// and loads that page ordered by orderBy.
func Paginate[T storage.Entity](
	ctx context.Context,
	repo *storage.Repository[T],
	params pagination.Params,
	orderBy string,
	where ...storage.Clause,
) ([]T, *PaginationResponse, error) {
	total, err := repo.Count(ctx, where...)
	if err != nil {
		return nil, nil, err
	}

	meta := NewPaginationResponse(params.Page, params.PageSize, total)
	if total == 0 {
		return []T{}, meta, nil
	}

	items, err := repo.Page(ctx, storage.ListOptions{
		Where:   where,
		OrderBy: orderBy,
		Limit:   meta.PageSize,
		Offset:  pagination.Offset(meta.Page, meta.PageSize),
	})
	if err != nil {
		return nil, nil, err
	}
	return items, meta, nil
}
