package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

func TestTruckKey(t *testing.T) {
	assert.Equal(t, "trucks:abc123", truckKey("abc123"))
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	truck, err := c.Get(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, truck)

	assert.NoError(t, c.Set(ctx, "t1", &models.Truck{Status: models.StatusOpen}))
	assert.NoError(t, c.Invalidate(ctx, "t1"))
	assert.NoError(t, c.InvalidateAll(ctx))
}
