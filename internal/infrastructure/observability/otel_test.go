package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Enabled: false}

	tp, err := InitTracerProvider(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := InitMeterProvider(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.NoError(t, mp.Shutdown(ctx))

	lp, logger, err := InitLogger(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.NotNil(t, logger)
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestConfig_ServiceName(t *testing.T) {
	assert.Equal(t, DefaultServiceName, Config{}.serviceName())
	assert.Equal(t, "custom", Config{ServiceName: "custom"}.serviceName())
	assert.Len(t, Config{}.dialOptions(), 1)
}
