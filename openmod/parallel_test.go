package openmod

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelize(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel_%v", parallel), func(t *testing.T) {
			var ran atomic.Int32

			count := func() error {
				ran.Add(1)
				return nil
			}

			fail := func() error {
				return fmt.Errorf("boom")
			}

			err := Parallelize(parallel, count, fail, count)

			require.Error(t, err)
			assert.Equal(t, int32(2), ran.Load())
		})
	}
}

func TestParallelizeNoErrors(t *testing.T) {
	assert.NoError(t, Parallelize(true,
		func() error { return nil },
		func() error { return nil }))
}
