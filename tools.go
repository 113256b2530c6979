//go:build tools

package ddt

//go:generate go install gotest.tools/gotestsum

import (
	_ "gotest.tools/gotestsum"
)
