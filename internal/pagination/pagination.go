// Package pagination holds page requests and page results shared by the
// repositories, services and handlers.
package pagination

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage = 0
	DefaultSize = 20
	MaxSize     = 100
)

// Order sorts by one property.
type Order struct {
	Property string
	Desc     bool
}

// Pageable requests a zero-based page of Size elements.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

func Default() Pageable {
	return Pageable{Page: DefaultPage, Size: DefaultSize}
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Parse builds a Pageable from raw query values. Empty page or size fall back
// to the defaults; sort entries look like "name" or "name,desc" and must name
// one of the allowed properties.
func Parse(page, size string, sorts []string, allowed ...string) (Pageable, error) {
	p := Default()

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid page %q", page)
		}
		p.Page = n
	}

	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid size %q", size)
		}
		if n > MaxSize {
			n = MaxSize
		}
		p.Size = n
	}

	// Offset and the end of the page must both fit in an int.
	if p.Page > math.MaxInt/p.Size-1 {
		return p, fmt.Errorf("invalid page %q", page)
	}

	for _, raw := range sorts {
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		o := Order{Property: strings.TrimSpace(parts[0])}
		if !contains(allowed, o.Property) {
			return p, fmt.Errorf("cannot sort by %q", o.Property)
		}
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "asc":
			case "desc":
				o.Desc = true
			default:
				return p, fmt.Errorf("invalid sort direction %q", parts[1])
			}
		}
		p.Sort = append(p.Sort, o)
	}

	return p, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Page is one slice of a larger ordered result.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if p.Size > 0 {
		totalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Page[T]{
		Content:          content,
		Number:           p.Page,
		Size:             p.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            p.Page == 0,
		Last:             p.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

// Map converts the content of a page, keeping its metadata.
func Map[S, T any](page Page[S], fn func(S) T) Page[T] {
	content := make([]T, 0, len(page.Content))
	for _, s := range page.Content {
		content = append(content, fn(s))
	}
	return Page[T]{
		Content:          content,
		Number:           page.Number,
		Size:             page.Size,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages,
		NumberOfElements: page.NumberOfElements,
		First:            page.First,
		Last:             page.Last,
		Empty:            page.Empty,
	}
}
