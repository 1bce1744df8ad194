// Package pagination derives page counts and a clamped current page from a
// filtered result size. It is pure and never fails: out-of-range inputs are
// clamped or ignored rather than rejected.
package pagination

// State describes the pagination of one result set.
type State struct {
	CurrentPage int `json:"currentPage"` // >= 1
	TotalPages  int `json:"totalPages"`  // >= 1, even for an empty set
	TotalItems  int `json:"totalItems"`
	PageSize    int `json:"pageSize"`
}

// DefaultPageSize matches the dashboard's default page length.
const DefaultPageSize = 10

// Compute derives the State for totalItems at the requested page.
// TotalPages is floored to 1 so an empty result set still has one
// (empty) page, and CurrentPage is clamped into [1, TotalPages].
func Compute(totalItems, requestedPage, pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return State{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PageSize:    pageSize,
	}
}

// Change returns the state moved to newPage, or the state unchanged when
// newPage is outside [1, TotalPages].
func (s State) Change(newPage int) State {
	if newPage < 1 || newPage > s.TotalPages {
		return s
	}
	s.CurrentPage = newPage
	return s
}

// Window returns the [start, end) slice bounds of the current page within a
// result set of TotalItems elements.
func (s State) Window() (start, end int) {
	start = (s.CurrentPage - 1) * s.PageSize
	if start > s.TotalItems {
		start = s.TotalItems
	}
	end = start + s.PageSize
	if end > s.TotalItems {
		end = s.TotalItems
	}
	return start, end
}
