package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/virtual-classroom/pkg/errors"
)

func TestMetricsServiceObserveOperation(t *testing.T) {
	m := NewMetricsService()

	m.ObserveOperation(OpAddClassroom, nil, time.Millisecond)
	m.ObserveOperation(OpAddClassroom, appErrors.Clone(appErrors.ErrDuplicateName, ""), time.Millisecond)
	m.ObserveOperation(OpRemoveClassroom, appErrors.Clone(appErrors.ErrNotFound, ""), time.Millisecond)
	m.SetClassrooms(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues(OpAddClassroom, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues(OpAddClassroom, "DUPLICATE_NAME")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues(OpRemoveClassroom, "NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classrooms))

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(3), snapshot.OperationsTotal)
	assert.Equal(t, uint64(2), snapshot.OperationsFailed)
	assert.Equal(t, uint64(2), snapshot.ByOperation[OpAddClassroom])
	assert.False(t, snapshot.GeneratedAt.IsZero())

	count, err := testutil.GatherAndCount(m.Registry(), "classroom_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveOperation(OpListClassrooms, nil, time.Millisecond)
		m.SetClassrooms(2)
	})
	assert.Nil(t, m.Registry())
	assert.Empty(t, m.Snapshot().ByOperation)
}

func TestMetricsServiceWiredIntoRegistry(t *testing.T) {
	ctx := context.Background()
	m := NewMetricsService()
	svc := NewRegistryService(nil, nil, m)

	_, err := svc.AddClassroom(ctx, "Math")
	require.NoError(t, err)
	_, err = svc.ListStudents(ctx, "Art")
	require.Error(t, err)
	require.NoError(t, svc.RemoveClassroom(ctx, "Math"))

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(3), snapshot.OperationsTotal)
	assert.Equal(t, uint64(1), snapshot.OperationsFailed)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.classrooms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues(OpListStudents, "NOT_FOUND")))
}

func TestRegistryServiceWithDisabledMetrics(t *testing.T) {
	ctx := context.Background()
	var m *MetricsService
	svc := NewRegistryService(nil, nil, m)

	_, err := svc.AddClassroom(ctx, "Math")
	require.NoError(t, err)
	_, err = svc.AddClassroom(ctx, "Math")
	require.Error(t, err)
	assert.Equal(t, 1, svc.CountClassrooms(ctx))
}
