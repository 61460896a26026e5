// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package app assembles the quota enforcer process. The normal deployment is
// a CronJob running one enforcement tick per invocation; --schedule keeps the
// process alive and ticks in-process instead, which is handy in development.
package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	operatorapp "github.com/nuvolaris/nuvolaris-operator/cmd/nuvolaris-operator/app"
	"github.com/nuvolaris/nuvolaris-operator/pkg/logger"
	"github.com/nuvolaris/nuvolaris-operator/pkg/quota"
	"github.com/nuvolaris/nuvolaris-operator/pkg/version"
)

// Name is the name of this component.
const Name = "quota-enforcer"

type options struct {
	schedule  string
	logLevel  string
	logFormat string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.schedule, "schedule", "", "Run ticks on this cron schedule (for example \"@every 10m\") instead of exiting after one tick.")
	fs.StringVar(&o.logLevel, "log-level", logger.InfoLevel, "The level/severity for the logs. Must be one of [info,debug,error].")
	fs.StringVar(&o.logFormat, "log-format", logger.FormatJSON, "The format for the logs. Must be one of [json,text].")
}

// NewCommand creates a new cobra.Command for running the quota enforcer.
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
			return run(cmd.Context(), opts)
		},
	}

	opts.addFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, opts *options) error {
	log := logf.Log.WithName(Name)

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("getting rest config: %w", err)
	}
	scheme, err := operatorapp.NewScheme()
	if err != nil {
		return fmt.Errorf("building scheme: %w", err)
	}
	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	enforcer := quota.New(c, log)

	if opts.schedule == "" {
		log.Info("Running one enforcement tick")
		return enforcer.Tick(ctx)
	}

	log.Info("Running on schedule", "schedule", opts.schedule)
	runner := cron.New()
	if err := runner.AddFunc(opts.schedule, func() {
		if err := enforcer.Tick(ctx); err != nil {
			log.Error(err, "enforcement tick failed")
		}
	}); err != nil {
		return fmt.Errorf("parsing schedule %q: %w", opts.schedule, err)
	}
	runner.Start()
	defer runner.Stop()

	<-ctx.Done()
	return nil
}
