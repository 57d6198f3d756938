// Package pagination computes the page markers shown by the dashboard's
// pagination controls and the offset arithmetic behind paginated listings.
//
// The package contains:
//   - ComputeWindow: the ordered page-number/ellipsis sequence for a control
//   - Token and Window: the values a UI renders left-to-right
//   - TotalPages, Clamp, Offset: helpers shared by list endpoints
//
// Everything here is pure and allocation-local, so it is safe for concurrent use.
package pagination
