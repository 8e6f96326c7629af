// Package web holds the browser shell served at the site root.
package web

import _ "embed"

//go:embed index.html
var index []byte

// Index returns the single-page chat UI.
func Index() []byte {
	return index
}
