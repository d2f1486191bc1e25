package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func restoreProvider(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestSetupDisabled(t *testing.T) {
	restoreProvider(t)
	prev := otel.GetTracerProvider()

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), "xander", false, &buf)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Equal(t, prev, otel.GetTracerProvider())
	assert.Zero(t, buf.Len())
}

func TestSetupWritesSpans(t *testing.T) {
	restoreProvider(t)

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), "xander", true, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "replay")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name": "replay"`)
	assert.Contains(t, buf.String(), "xander")
}
