package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PageRange is an inclusive range of manual page numbers.
// The zero value represents an empty range.
type PageRange struct {
	Start int
	End   int
}

// NewPageRange builds a range, swapping the bounds if they are reversed.
func NewPageRange(start, end int) PageRange {
	if start > end {
		start, end = end, start
	}
	return PageRange{Start: start, End: end}
}

// IsEmpty reports whether the range carries no page information.
func (p PageRange) IsEmpty() bool {
	return p.Start == 0 && p.End == 0
}

func (p PageRange) String() string {
	if p.IsEmpty() {
		return ""
	}
	if p.Start == p.End {
		return strconv.Itoa(p.Start)
	}
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

// MarshalJSON encodes the range as a two element array, or null when empty.
func (p PageRange) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal([]int{p.Start, p.End})
}

// UnmarshalJSON accepts [start, end], [page], "start-end", "page", a bare number, or null.
func (p *PageRange) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = PageRange{}
		return nil
	}

	switch data[0] {
	case '[':
		var pages []int
		if err := json.Unmarshal(data, &pages); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPageRange, err)
		}
		switch len(pages) {
		case 0:
			*p = PageRange{}
		case 1:
			*p = NewPageRange(pages[0], pages[0])
		default:
			*p = NewPageRange(pages[0], pages[len(pages)-1])
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPageRange, err)
		}
		r, err := ParsePageRange(s)
		if err != nil {
			return err
		}
		*p = r
		return nil
	default:
		var page int
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPageRange, err)
		}
		*p = NewPageRange(page, page)
		return nil
	}
}

// ParsePageRange parses "12-15", "12~15" or "12". Blank input yields an empty range.
func ParsePageRange(s string) (PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PageRange{}, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '~' || r == ','
	})
	if len(parts) == 0 || len(parts) > 2 {
		return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidPageRange, s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidPageRange, s)
	}
	end := start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidPageRange, s)
		}
	}
	return NewPageRange(start, end), nil
}
