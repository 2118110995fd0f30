package kubernetes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
)

var probeNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func testProbe(objs ...runtime.Object) *Probe {
	p := NewProbe(fake.NewSimpleClientset(objs...), ProbeConfig{
		Namespace:         "edu",
		Deployment:        "platform",
		Timeout:           time.Second,
		MaintenanceWindow: 24 * time.Hour,
		EventWindow:       15 * time.Minute,
	})
	p.now = func() time.Time { return probeNow }
	return p
}

func deployment(ready int32, conditions ...appsv1.DeploymentCondition) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "platform", Namespace: "edu"},
		Status: appsv1.DeploymentStatus{
			Replicas:      3,
			ReadyReplicas: ready,
			Conditions:    conditions,
		},
	}
}

func event(name, typ string, at time.Time) *corev1.Event {
	return &corev1.Event{
		ObjectMeta:    metav1.ObjectMeta{Name: name, Namespace: "edu"},
		Type:          typ,
		Reason:        "BackOff",
		LastTimestamp: metav1.NewTime(at),
	}
}

func TestProbe_Healthy(t *testing.T) {
	p := testProbe(deployment(3))

	status, err := p.ServerStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
	assert.Zero(t, status.ReportedIssues)
	assert.Empty(t, status.LastMaintenance)
}

func TestProbe_NoReadyReplicasIsOffline(t *testing.T) {
	p := testProbe(deployment(0))

	status, err := p.ServerStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestProbe_CountsRecentWarnings(t *testing.T) {
	p := testProbe(
		deployment(2),
		event("w1", corev1.EventTypeWarning, probeNow.Add(-time.Minute)),
		event("w2", corev1.EventTypeWarning, probeNow.Add(-10*time.Minute)),
		event("old", corev1.EventTypeWarning, probeNow.Add(-time.Hour)),
		event("normal", corev1.EventTypeNormal, probeNow.Add(-time.Minute)),
	)

	status, err := p.ServerStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.ReportedIssues)
}

func TestProbe_RecentRollout(t *testing.T) {
	d := deployment(3, appsv1.DeploymentCondition{
		Type:           appsv1.DeploymentProgressing,
		Status:         corev1.ConditionTrue,
		Reason:         "NewReplicaSetAvailable",
		LastUpdateTime: metav1.NewTime(probeNow.Add(-2 * time.Hour)),
	})
	p := testProbe(d)

	status, err := p.ServerStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recent rollout at 2026-05-04T10:00:00Z", status.LastMaintenance)
}

func TestProbe_OldRolloutFromRestartAnnotation(t *testing.T) {
	d := deployment(3)
	d.Spec.Template.Annotations = map[string]string{
		restartedAtAnnotation: probeNow.Add(-72 * time.Hour).Format(time.RFC3339),
	}
	p := testProbe(d)

	status, err := p.ServerStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rollout at 2026-05-01T12:00:00Z", status.LastMaintenance)
	assert.NotContains(t, status.LastMaintenance, "recent")
}

func TestProbe_MissingDeployment(t *testing.T) {
	p := testProbe()

	_, err := p.ServerStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edu/platform")
	assert.Error(t, p.HealthCheck(context.Background()))
}

func TestProbe_HealthCheck(t *testing.T) {
	assert.NoError(t, testProbe(deployment(1)).HealthCheck(context.Background()))
}
