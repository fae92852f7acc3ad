package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersion(t *testing.T) {
	assert.Equal(t, "dev", GetFullVersion())

	old := Version
	Version = "1.2.0"
	t.Cleanup(func() { Version = old })

	assert.Equal(t, "1.2.0", GetVersion())
	assert.Equal(t, "1.2.0 (commit unknown, built unknown)", GetFullVersion())
}
