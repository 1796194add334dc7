//go:build !linux

package proctitle

import (
	"os"
	"strings"
)

// Set only rewrites argv outside Linux; there is no prctl to call.
func Set(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if len(os.Args) > 0 {
		os.Args[0] = title
	}
	return nil
}
