package blog

import (
	"strconv"
	"strings"
)

const DefaultPageSize = 3

type Page struct {
	Number         int  `json:"number"`
	NumPages       int  `json:"num_pages"`
	Count          int  `json:"count"`
	PerPage        int  `json:"per_page"`
	HasNext        bool `json:"has_next"`
	HasPrevious    bool `json:"has_previous"`
	NextNumber     int  `json:"next_page_number,omitempty"`
	PreviousNumber int  `json:"previous_page_number,omitempty"`
}

// Paginate resolves a raw page token against count items.
// Empty, non-integer and zero tokens give page 1; negative tokens and
// tokens past the end give the last page. With no items there is still one
// (empty) page.
func Paginate(count, perPage int, token string) Page {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}

	numPages := (count + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(token))
	switch {
	case err != nil, number == 0:
		number = 1
	case number < 0, number > numPages:
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		PerPage:     perPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = number - 1
	}

	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}
