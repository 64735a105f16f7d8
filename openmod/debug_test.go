package openmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogContext(t *testing.T) {
	repo := &fakeRepository{provider: "fake"}
	oc := newTestContext(t, repo)

	assert.NotPanics(t, func() { LogContext(oc) })
}
