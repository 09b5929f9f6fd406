package handlers

import "strings"

// isDuplicateKey matches postgres unique-violation errors surfaced through
// the driver's error text.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
