//go:build gofuzz
// +build gofuzz

package fuzz

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/predicates/surlexpath"
)

// the input is the pattern and the subject, separated by a zero byte
func split(data []byte) (string, string) {
	pattern, subject, _ := bytes.Cut(data, []byte{0})
	return string(pattern), string(subject)
}

func FuzzSurlexMatch(data []byte) int {
	pattern, subject := split(data)
	sx := surlex.New(pattern)
	captures, ok, err := sx.Match(subject)
	if err != nil || !ok {
		return 0
	}

	if captures == nil {
		panic(fmt.Sprintf("nil captures on match: %x\n", data))
	}

	return 1
}

func FuzzSurlexPredicate(data []byte) int {
	pattern, path := split(data)
	p, err := surlexpath.NewPrefix(nil).Create([]interface{}{pattern})
	if err != nil {
		return 0
	}

	if !p.Match(&http.Request{URL: &url.URL{Path: path}}) {
		return 0
	}

	return 1
}
