package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/graphstyle/errors"
)

func TestPrintError(t *testing.T) {
	t.Run("hints follow the message", func(t *testing.T) {
		var out bytes.Buffer
		err := errors.Wrap(errors.WithHint(errors.New("catalog missing"), "run graphstyle catalog init"), "load catalog")
		printError(&out, err)
		assert.Equal(t, "load catalog: catalog missing\nhint: run graphstyle catalog init\n", out.String())
	})

	t.Run("assertion failures carry a stack", func(t *testing.T) {
		var out bytes.Buffer
		printError(&out, errors.AssertionFailedf("store used before %s", "Load"))
		assert.Contains(t, out.String(), "internal error:")
		assert.Contains(t, out.String(), "store used before Load")
		assert.Contains(t, out.String(), "main_test.go")
	})
}
