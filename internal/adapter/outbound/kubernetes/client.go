// Package kubernetes observes the learning platform's Deployment to supply
// server-status facts.
package kubernetes

import (
	"fmt"
	"time"

	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const userAgent = "edudiag-status-probe"

type ClientConfig struct {
	InCluster  bool
	Kubeconfig string
	Timeout    time.Duration
}

// NewClientset creates a read-only clientset from in-cluster config or a kubeconfig file.
func NewClientset(cfg ClientConfig) (k8s.Interface, error) {
	var config *rest.Config
	var err error

	if cfg.InCluster {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", cfg.Kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("building k8s config: %w", err)
	}

	config.UserAgent = userAgent
	if cfg.Timeout > 0 {
		config.Timeout = cfg.Timeout
	}
	return k8s.NewForConfig(config)
}
