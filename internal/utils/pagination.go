// Package utils holds request-parsing helpers with no domain knowledge:
// integer query values and page bounds.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Page bounds applied by Clamp.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Clamp parses raw page and page_size values and bounds them: page is at
// least 1, pageSize lies in [1, MaxPageSize]. Unparseable values fall back
// to DefaultPage and DefaultPageSize.
func Clamp(rawPage, rawPageSize string) (page, pageSize int) {
	page = max(AtoiDefault(rawPage, DefaultPage), 1)
	pageSize = min(max(AtoiDefault(rawPageSize, DefaultPageSize), 1), MaxPageSize)
	return page, pageSize
}

// TotalPages returns how many pages of pageSize items hold total items.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
