package serve

import (
	_ "embed"
)

// pageTitle is the <title> and heading of the embedded UI page
const pageTitle = "Go Web UI Demo"

//go:embed page/index.html
var indexPage []byte
