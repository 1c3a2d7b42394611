// Package paginate holds the page arithmetic shared by the order history
// and category listing pages.
package paginate

import "strconv"

// WindowSize is how many page links are shown at once.
const WindowSize = 5

// Page describes one page of a paginated result.
type Page struct {
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	HasPrevious bool  `json:"has_previous"`
	HasNext     bool  `json:"has_next"`
	Window      []int `json:"window"`
}

// NumPages returns how many pages count items fill. An empty result still
// has one (empty) page.
func NumPages(count int64, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	n := int((count + int64(perPage) - 1) / int64(perPage))
	if n < 1 {
		return 1
	}
	return n
}

// Clamp parses a raw page number. Anything that is not an integer in
// [1, total] falls back to page 1.
func Clamp(raw string, total int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > total {
		return 1
	}
	return n
}

// Window returns the page numbers to link around current:
//
//	total <= 5            all pages
//	current <= 3          1..5
//	total-current <= 2    the last five
//	otherwise             current-2..current+2
func Window(current, total int) []int {
	var from, to int
	switch {
	case total <= WindowSize:
		from, to = 1, total
	case current <= 3:
		from, to = 1, WindowSize
	case total-current <= 2:
		from, to = total-WindowSize+1, total
	default:
		from, to = current-2, current+2
	}

	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return pages
}

// New builds the Page for number out of total pages.
func New(number, total int) Page {
	return Page{
		Number:      number,
		NumPages:    total,
		HasPrevious: number > 1,
		HasNext:     number < total,
		Window:      Window(number, total),
	}
}

// Offset returns the row offset of page number.
func Offset(number, perPage int) int {
	if number < 1 {
		number = 1
	}
	return (number - 1) * perPage
}
