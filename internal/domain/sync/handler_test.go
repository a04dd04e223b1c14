package sync

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-livestock-history/internal/platform/logger"
)

// El timestamp del sobre de pull es el watermark que el cliente guarda
// para el próximo since: debe salir del reloj inyectado del servicio,
// no de time.Now directo.
func TestWritePull_UsesServiceClock(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.FixedZone("GMT-5", -5*60*60))
	svc := NewService(nil, logger.Nop())
	svc.now = func() time.Time { return fixed }

	rec := httptest.NewRecorder()
	writePull(rec, svc, []syncAnimalRecord{}, 0)

	var resp pullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
	assert.True(t, resp.Timestamp.Equal(fixed))
	assert.Equal(t, time.UTC, resp.Timestamp.Location())
}
