/*
Copyright © 2023 wetrycode

*/
package cmd

import (
	"context"
	"crypto/tls"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/wetrycode/vmwiz"
	"go.uber.org/ratelimit"
)

var logger = vmwiz.GetLogger("command")

// app everything a command needs to talk to the backend
type app struct {
	settings vmwiz.AppSettings
	gateway  *vmwiz.BackendGateway
	client   *vmwiz.Client
	registry *prometheus.Registry
	close    func() error
}

// newApp load settings and build the gateway, options cache and endpoint client
func newApp(ctx context.Context, configDir string) (*app, error) {
	var dirs []string
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	settings, err := vmwiz.LoadSettings(dirs...)
	if err != nil {
		return nil, err
	}
	if err := vmwiz.InitLog(settings.Log.Level); err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts := []vmwiz.GatewayOption{
		vmwiz.GatewayWithTimeout(settings.Client.Timeout),
		vmwiz.GatewayWithMetrics(vmwiz.NewMetrics(registry)),
	}
	if settings.Client.Rate > 0 {
		opts = append(opts, vmwiz.GatewayWithRateLimit(ratelimit.New(settings.Client.Rate)))
	}
	if settings.Client.InsecureSkipVerify {
		opts = append(opts, vmwiz.GatewayWithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}
	gateway, err := vmwiz.NewGateway(settings.Backend, opts...)
	if err != nil {
		return nil, err
	}
	cache, closer, err := vmwiz.NewOptionsCache(ctx, settings.Cache)
	if err != nil {
		return nil, err
	}
	clientOpts := []vmwiz.ClientOption{vmwiz.ClientWithLegacyPaths(settings.Client.LegacyPaths)}
	if cache != nil {
		clientOpts = append(clientOpts, vmwiz.ClientWithOptionsCache(cache))
	}
	logger.Debugf("Backend %s", gateway.BaseURL())
	return &app{
		settings: settings,
		gateway:  gateway,
		client:   vmwiz.NewClient(gateway, clientOpts...),
		registry: registry,
		close:    closer,
	}, nil
}

type rootOptions struct {
	configDir string
	cookie    string
}

// requestOptions options applied to every backend call made by a command
func (o *rootOptions) requestOptions() []vmwiz.RequestOption {
	return []vmwiz.RequestOption{vmwiz.RequestWithCookie(o.cookie)}
}

// withApp run fn with an app built from the root flags
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), o.configDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Warnf("Close options cache error %s", err.Error())
		}
	}()
	return fn(a)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "vmwiz",
		Short:        "vmwiz serves the VM request pages and forwards their api calls to the backend",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "", "directory containing settings.yaml (default is the working directory)")
	rootCmd.PersistentFlags().StringVar(&opts.cookie, "cookie", "", "raw Cookie header sent to the backend")
	rootCmd.AddCommand(
		newServeCmd(opts),
		newOptionsCmd(opts),
		newRequestsCmd(opts),
		newCheckCmd(opts),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
