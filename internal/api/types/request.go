package types

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationRequest represents pagination parameters in requests. Zero
// values mean "use the default".
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

// ParseID parses the named path parameter as a positive integer ID.
func ParseID(c *gin.Context, param, resource string) (int64, *ErrorWithContext) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidationError("invalid " + resource + " ID")
	}
	return id, nil
}

// OptionalBool parses an optional boolean query parameter. ok is false when
// the parameter is absent.
func OptionalBool(c *gin.Context, name string) (value, ok bool, apiErr *ErrorWithContext) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, ValidationError(name + " must be a boolean")
	}
	return v, true, nil
}

// OptionalID parses an optional positive integer query parameter.
func OptionalID(c *gin.Context, name string) (id int64, ok bool, apiErr *ErrorWithContext) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false, ValidationError(name + " must be a positive integer")
	}
	return v, true, nil
}
