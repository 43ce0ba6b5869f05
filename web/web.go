// Package web holds the embedded chat page.
package web

import _ "embed"

//go:embed static/index.html
var Index []byte
