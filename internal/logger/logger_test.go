package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupWriterLevels(t *testing.T) {
	t.Parallel()

	var prod bytes.Buffer
	logger := SetupWriter(&prod, false)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, prod.String(), "hidden")
	assert.Contains(t, prod.String(), `"message":"shown"`)

	var dev bytes.Buffer
	logger = SetupWriter(&dev, true)
	logger.Debug().Str("flow", "connect").Msg("visible")

	assert.Contains(t, dev.String(), "visible")
	assert.Contains(t, dev.String(), "flow=")
	assert.NotContains(t, dev.String(), `"message"`)
}
