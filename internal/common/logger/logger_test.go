// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStructured(t *testing.T) {
	// Error level keeps the assertions below silent.
	log := NewStructured("error", "json")
	require.NotNil(t, log)

	log.Debug("suppressed", nil)
	log.WithFields(map[string]interface{}{"component": "test"}).Debug("suppressed", nil)
	log.WithError(errors.New("boom")).Debug("suppressed", nil)
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	require.NotNil(t, log)
	log.Info("discarded", map[string]interface{}{"k": "v"})
}
