// Package pages exposes the pagination window calculator over HTTP.
package pages

import "wsadmin/internal/pagination"

// WindowRequest is the query of a window request.
type WindowRequest struct {
	TotalPages  *int `form:"total_pages" binding:"required,min=0"`
	CurrentPage *int `form:"current_page"`
}

// WindowResponse is the computed page control.
type WindowResponse struct {
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
	Window      pagination.Window `json:"window"`
	Text        string            `json:"text"`
}
