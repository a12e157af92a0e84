package pkg

import (
	"fmt"
	"net/http"
	"strconv"
)

// Pagination varsayılanları — query parametresi verilmezse kullanılır.
const (
	DefaultPage  = 0
	DefaultLimit = 20
)

// Pagination, sayfalı endpoint'lerin skip/limit hesabını taşır.
// skip = page * limit; her iki parametre de negatif olamaz.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

// Skip, atlanacak döküman sayısını döner.
func (p Pagination) Skip() int64 {
	return p.Page * p.Limit
}

// ParsePagination, request query'sinden page/limit değerlerini okur.
// Negatif veya sayı olmayan değerler ErrUnprocessable ile reddedilir.
func ParsePagination(r *http.Request) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || page < 0 {
			return p, fmt.Errorf("%w: page must be a non-negative integer", ErrUnprocessable)
		}
		p.Page = page
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return p, fmt.Errorf("%w: limit must be a non-negative integer", ErrUnprocessable)
		}
		p.Limit = limit
	}

	return p, nil
}
