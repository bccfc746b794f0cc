package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPage    = errors.New("page must be a positive integer")
	ErrInvalidPerPage = errors.New("perPage must be a positive integer")
)

// ParsePage reads page/perPage query values. Missing values fall back to
// page 1 and defaultPerPage; perPage is clamped to maxPerPage.
func ParsePage(pageRaw, perPageRaw string, defaultPerPage, maxPerPage int) (page, perPage int, err error) {
	page, perPage = 1, defaultPerPage

	if v := strings.TrimSpace(pageRaw); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, ErrInvalidPage
		}
		page = n
	}

	if v := strings.TrimSpace(perPageRaw); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, ErrInvalidPerPage
		}
		perPage = n
	}

	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, nil
}

func IsUUID(s string) bool {
	return uuid.Validate(s) == nil && len(s) == 36
}
