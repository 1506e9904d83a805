package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBaseHref(t *testing.T) {
	tests := map[string]string{
		"./":           "",
		"":             "",
		"guide/":       "../",
		"guide/setup/": "../../",
		"a/b/c/":       "../../../",
	}
	for url, want := range tests {
		assert.Equal(t, want, ComputeBaseHref(url), url)
	}
}
