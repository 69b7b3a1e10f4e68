package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeMetrics_CountsPartitionServices(t *testing.T) {
	snap := Snapshot{
		Services: []Service{
			{ID: "svc-1", Status: ServiceHealthy},
			{ID: "svc-2", Status: ServiceUnhealthy},
		},
	}

	m := ComputeMetrics(snap)

	assert.Equal(t, 1, m.HealthyCount)
	assert.Equal(t, 1, m.UnhealthyCount)
	assert.Equal(t, len(snap.Services), m.HealthyCount+m.UnhealthyCount)
}

func TestComputeMetrics_UnknownCountsAsUnhealthy(t *testing.T) {
	snap := Snapshot{
		Services: []Service{
			{ID: "svc-1", Status: ServiceHealthy},
			{ID: "svc-2", Status: ServiceUnknown},
			{ID: "svc-3", Status: "degraded"}, // статус, о котором консоль не знает
		},
	}

	m := ComputeMetrics(snap)

	assert.Equal(t, 1, m.HealthyCount)
	assert.Equal(t, 2, m.UnhealthyCount)
}

func TestComputeMetrics_ActiveIncidents(t *testing.T) {
	snap := Snapshot{
		Incidents: []Incident{
			{ID: "inc-1", Status: "open"},
			{ID: "inc-2", Status: IncidentResolved},
		},
	}

	m := ComputeMetrics(snap)

	assert.Equal(t, 1, m.ActiveIncidentCount)
}

func TestComputeMetrics_MitigatingIsStillActive(t *testing.T) {
	snap := Snapshot{
		Incidents: []Incident{
			{ID: "inc-1", Status: "mitigating"},
			{ID: "inc-2", Status: "detected"},
			{ID: "inc-3", Status: IncidentResolved},
		},
	}

	assert.Equal(t, 2, ComputeMetrics(snap).ActiveIncidentCount)
}

func TestComputeMetrics_EmptySnapshot(t *testing.T) {
	m := ComputeMetrics(Snapshot{})

	assert.Zero(t, m.HealthyCount)
	assert.Zero(t, m.UnhealthyCount)
	assert.Zero(t, m.ActiveIncidentCount)
}

func TestSnapshot_Freshness(t *testing.T) {
	var s Snapshot
	assert.True(t, s.Empty())
	assert.True(t, s.Fresh())

	s.LastSyncedAt = time.Now()
	s.SyncError = SyncNetwork
	assert.False(t, s.Empty())
	assert.False(t, s.Fresh())
}
