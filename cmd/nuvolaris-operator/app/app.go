// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package app assembles the operator process: flags, logging, the
// controller-runtime manager and the controllers.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	routev1 "github.com/openshift/api/route/v1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/logger"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/controller"
	"github.com/nuvolaris/nuvolaris-operator/pkg/version"
)

// Name is the name of this component.
const Name = "nuvolaris-operator"

type options struct {
	metricsAddr string
	healthAddr  string
	leaderElect bool
	logLevel    string
	logFormat   string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.metricsAddr, "metrics-bind-address", ":8080", "The address the metrics endpoint binds to.")
	fs.StringVar(&o.healthAddr, "health-probe-bind-address", ":8081", "The address the health probe endpoint binds to.")
	fs.BoolVar(&o.leaderElect, "leader-elect", true, "Enable leader election so only one operator instance is active.")
	fs.StringVar(&o.logLevel, "log-level", logger.InfoLevel, "The level/severity for the logs. Must be one of [info,debug,error].")
	fs.StringVar(&o.logFormat, "log-format", logger.FormatJSON, "The format for the logs. Must be one of [json,text].")
}

// NewCommand creates a new cobra.Command for running the operator.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     Name,
		Short:   "Launch the " + Name,
		Args:    cobra.NoArgs,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewZapLogger(opts.logLevel, opts.logFormat)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logf.SetLogger(log)
			return run(cmd.Context(), log, opts)
		},
	}

	opts.addFlags(cmd.Flags())
	return cmd
}

// NewScheme returns the scheme the operator works with.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, err
	}
	if err := whiskv1.AddToScheme(scheme); err != nil {
		return nil, err
	}
	// The ingress chart renders Routes on openshift.
	if err := routev1.AddToScheme(scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

func run(ctx context.Context, log logr.Logger, opts *options) error {
	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("getting rest config: %w", err)
	}
	scheme, err := NewScheme()
	if err != nil {
		return fmt.Errorf("building scheme: %w", err)
	}

	log.Info("Setting up manager")
	mgr, err := manager.New(restConfig, manager.Options{
		Logger:                  log,
		Scheme:                  scheme,
		GracefulShutdownTimeout: ptr.To(5 * time.Second),

		Metrics:                metricsserver.Options{BindAddress: opts.metricsAddr},
		HealthProbeBindAddress: opts.healthAddr,

		LeaderElection:                opts.leaderElect,
		LeaderElectionID:              Name + "-leader-election",
		LeaderElectionReleaseOnCancel: true,
	})
	if err != nil {
		return fmt.Errorf("creating manager: %w", err)
	}

	if err := mgr.AddHealthzCheck("ping", healthz.Ping); err != nil {
		return err
	}
	if err := mgr.AddReadyzCheck("ping", healthz.Ping); err != nil {
		return err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("creating clientset: %w", err)
	}
	clients := kube.NewClients(mgr.GetClient(), clientset, restConfig, scheme)

	log.Info("Adding controllers to manager")
	if err := controller.AddToManager(mgr, clients); err != nil {
		return err
	}

	log.Info("Starting manager")
	return mgr.Start(ctx)
}
