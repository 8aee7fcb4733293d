package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAggregatesChecks(t *testing.T) {
	s := NewService()
	s.Register("database", func(context.Context) error { return nil })
	s.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	s.Register("ignored", nil)

	report := s.Status(context.Background())
	assert.False(t, report.OK)
	assert.Equal(t, "ok", report.Components["database"])
	assert.Equal(t, "connection refused", report.Components["redis"])
	assert.Equal(t, []string{"database", "redis"}, s.Names())
}

func TestStatusWithoutChecksIsHealthy(t *testing.T) {
	report := NewService().Status(context.Background())
	assert.True(t, report.OK)
	assert.Empty(t, report.Components)
}
