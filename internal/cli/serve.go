package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	flags := newExtractFlags(false)
	var (
		listen    string
		maxUpload int64
		rateLimit float64
		burst     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve palette extraction over HTTP",
		Long: `Start an HTTP server exposing palette extraction.

Endpoints:
  POST /v1/palette   image as body or multipart field "image", or ?url=
  POST /v1/color     same inputs, returns the dominant colour
  GET  /v1/version   build information
  GET  /healthz       liveness probe

Every response carries an X-Request-ID header. With --rate-limit, extraction
requests beyond the budget get 429 Too Many Requests.

Extraction options are passed as query parameters, e.g.
  curl --data-binary @photo.jpg 'localhost:8080/v1/palette?colorCount=6&quality=1'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = a.cfg.ListenAddr
			}
			if !cmd.Flags().Changed("max-upload-bytes") {
				maxUpload = a.cfg.MaxUploadBytes
			}
			if !cmd.Flags().Changed("rate-limit") {
				rateLimit = a.cfg.RateLimit
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			service, closer, err := flags.service(ctx, a)
			if err != nil {
				return err
			}
			defer closer.Close()

			srv := server.New(service, server.Options{
				MaxUploadBytes: maxUpload,
				Logger:         a.logger.Named("server"),
				RateLimit:      rateLimit,
				Burst:          burst,
			})
			return srv.Run(ctx, listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default from "+config.EnvListenAddr+" or "+config.DefaultListenAddr+")")
	cmd.Flags().Int64Var(&maxUpload, "max-upload-bytes", 0, "maximum request body size")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "extraction requests per second, 0 for unlimited (default from "+config.EnvRateLimit+")")
	cmd.Flags().IntVar(&burst, "burst", 0, "requests allowed above the rate limit at once")
	for _, name := range []string{flagAlgorithm, flagCacheDir, flagAllowInsecure, flagPluginDir} {
		cmd.Flags().AddFlag(flags.fs.Lookup(name))
	}
	return cmd
}

// contextOf returns the command context, which is nil when the command is
// executed without one.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
