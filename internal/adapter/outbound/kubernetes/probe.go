package kubernetes

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/jonny/edudiag/internal/domain/model"
)

// restartedAtAnnotation is set on the pod template by `kubectl rollout restart`.
const restartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"

// ProbeConfig selects the Deployment that serves the learning platform.
type ProbeConfig struct {
	Namespace         string
	Deployment        string
	Timeout           time.Duration
	MaintenanceWindow time.Duration
	EventWindow       time.Duration
}

// Probe derives a ServerStatus from the platform Deployment and recent
// Warning events in its namespace.
type Probe struct {
	clientset k8s.Interface
	cfg       ProbeConfig
	now       func() time.Time
}

func NewProbe(clientset k8s.Interface, cfg ProbeConfig) *Probe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Probe{clientset: clientset, cfg: cfg, now: time.Now}
}

// ServerStatus reports the Deployment as online when at least one replica is
// ready. Warning events inside EventWindow count as reported issues, and a
// rollout inside MaintenanceWindow is reported as recent maintenance.
func (p *Probe) ServerStatus(ctx context.Context) (model.ServerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	d, err := p.clientset.AppsV1().Deployments(p.cfg.Namespace).Get(ctx, p.cfg.Deployment, metav1.GetOptions{})
	if err != nil {
		return model.ServerStatus{}, fmt.Errorf("getting deployment %s/%s: %w", p.cfg.Namespace, p.cfg.Deployment, err)
	}

	status := model.ServerStatus{IsOnline: d.Status.ReadyReplicas > 0}
	if ts, ok := lastRollout(d); ok {
		if p.cfg.MaintenanceWindow > 0 && p.now().Sub(ts) <= p.cfg.MaintenanceWindow {
			status.LastMaintenance = "recent rollout at " + ts.UTC().Format(time.RFC3339)
		} else {
			status.LastMaintenance = "rollout at " + ts.UTC().Format(time.RFC3339)
		}
	}

	issues, err := p.warningEvents(ctx)
	if err != nil {
		return model.ServerStatus{}, err
	}
	status.ReportedIssues = issues
	return status, nil
}

// HealthCheck verifies the Deployment is readable.
func (p *Probe) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	if _, err := p.clientset.AppsV1().Deployments(p.cfg.Namespace).Get(ctx, p.cfg.Deployment, metav1.GetOptions{}); err != nil {
		return fmt.Errorf("kubernetes health check: %w", err)
	}
	return nil
}

func (p *Probe) warningEvents(ctx context.Context) (int, error) {
	list, err := p.clientset.CoreV1().Events(p.cfg.Namespace).List(ctx, metav1.ListOptions{
		FieldSelector: "type=" + corev1.EventTypeWarning,
	})
	if err != nil {
		return 0, fmt.Errorf("listing events in %s: %w", p.cfg.Namespace, err)
	}

	var cutoff time.Time
	if p.cfg.EventWindow > 0 {
		cutoff = p.now().Add(-p.cfg.EventWindow)
	}
	n := 0
	for i := range list.Items {
		e := &list.Items[i]
		// The field selector is not honoured by every client.
		if e.Type != corev1.EventTypeWarning {
			continue
		}
		if eventTime(e).Before(cutoff) {
			continue
		}
		n++
	}
	return n, nil
}

func eventTime(e *corev1.Event) time.Time {
	switch {
	case !e.LastTimestamp.IsZero():
		return e.LastTimestamp.Time
	case !e.EventTime.IsZero():
		return e.EventTime.Time
	default:
		return e.CreationTimestamp.Time
	}
}

// lastRollout returns the most recent restart annotation or Progressing
// condition update.
func lastRollout(d *appsv1.Deployment) (time.Time, bool) {
	var latest time.Time
	if v, ok := d.Spec.Template.Annotations[restartedAtAnnotation]; ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			latest = ts
		}
	}
	for _, c := range d.Status.Conditions {
		if c.Type == appsv1.DeploymentProgressing && c.Reason == "NewReplicaSetAvailable" && c.LastUpdateTime.After(latest) {
			latest = c.LastUpdateTime.Time
		}
	}
	return latest, !latest.IsZero()
}
