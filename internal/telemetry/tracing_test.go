package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/nikolayk812/cartstore-demo/internal/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracerProvider(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
	})

	_, err := telemetry.InitTracerProvider(t.Context(), "", "cartd")
	require.EqualError(t, err, "endpoint is empty")

	tp, err := telemetry.InitTracerProvider(t.Context(), "localhost:4317", "cartd")
	require.NoError(t, err)
	require.Same(t, tp, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// nothing was recorded, so there is nothing to flush
	require.NoError(t, tp.Shutdown(ctx))
}
