package types

import "wsadmin/internal/pagination"

// PaginationResponse represents pagination metadata in API responses
type PaginationResponse struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
	Window     pagination.Window `json:"window"`
}

// Response represents the standard API response wrapper
type Response struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Error      *Error              `json:"error,omitempty"`
	Pagination *PaginationResponse `json:"pagination,omitempty"`
}

// SuccessResponse creates a successful API response
func SuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessResponseWithPagination creates a successful API response with pagination
func SuccessResponseWithPagination(data any, pagination *PaginationResponse) Response {
	return Response{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	}
}

// NewPaginationResponse builds the metadata for a listing of total items,
// clamping page into the available range.
func NewPaginationResponse(page, pageSize int, total int64) *PaginationResponse {
	totalPages := pagination.TotalPages(total, pageSize)
	page = pagination.Clamp(page, totalPages)

	return &PaginationResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Window:     pagination.ComputeWindow(totalPages, page),
	}
}
