package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("verboso", "").GetLevel())
}

func TestNewLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ofertas.log")

	log := NewLogger("info", file)
	log.WithField("encarte", "folheto.pdf").Info("encarte recebido")

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "encarte recebido")
	assert.Contains(t, string(b), "folheto.pdf")
}
