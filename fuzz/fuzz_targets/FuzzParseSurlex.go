//go:build gofuzz
// +build gofuzz

package fuzz

import (
	"fmt"

	"github.com/zalando/surlex"
)

func FuzzParseSurlex(data []byte) int {
	nodes, err := surlex.Parse(string(data))
	if err != nil {
		return 0
	}

	rendered := surlex.Render(nodes)
	again, err := surlex.Parse(rendered)
	if err != nil {
		panic(fmt.Sprintf("failed to parse rendered pattern %q: %v", rendered, err))
	}

	if !surlex.Equal(nodes, again) {
		panic(fmt.Sprintf("render round trip failed: %x\n", data))
	}

	return 1
}
