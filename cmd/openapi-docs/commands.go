package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalvas/oasdocs/docs"
	"github.com/vitalvas/oasdocs/internal/config"
	"github.com/vitalvas/oasdocs/internal/logging"
	"github.com/vitalvas/oasdocs/internal/manifest"
	"github.com/vitalvas/oasdocs/internal/server"
)

var errFormat = errors.New("format must be json or yaml")

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "openapi-docs",
		Short:         "Generate and serve OpenAPI documents from route manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with OASDOCS_ variables")

	cmd.AddCommand(newGenerateCommand(opts), newServeCommand(opts))
	return cmd
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	var manifestPath, format, output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document of a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("%w, got %q", errFormat, format)
			}

			if manifestPath == "" {
				cfg, err := config.Load(root.configPath, root.envFile)
				if err != nil {
					return err
				}
				manifestPath = cfg.Manifest
			}
			if manifestPath == "" {
				return errors.New("no manifest: pass --manifest or set manifest in the config")
			}

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			data, err := generate(m, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return writeAll(cmd.OutOrStdout(), data)
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "route manifest (defaults to the config value)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// generate builds the document of m in format.
func generate(m *manifest.Manifest, format string) ([]byte, error) {
	d := docs.New(docs.Config{OpenAPI: m.Seed()})
	if err := m.Apply(d); err != nil {
		return nil, err
	}
	if err := d.Build(); err != nil {
		return nil, err
	}

	if format == "yaml" {
		return d.YAML()
	}

	data, err := d.JSON()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeAll(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}

func newServeCommand(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document and Swagger UI of the configured manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath, root.envFile)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			logger, closeLog, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
				_ = closeLog()
			}()

			var m *manifest.Manifest
			if cfg.Manifest != "" {
				if m, err = manifest.Load(cfg.Manifest); err != nil {
					return err
				}
			} else {
				logger.Warn("no manifest configured, serving an empty document")
			}

			srv, err := server.New(cfg, m, logger, nil)
			if err != nil {
				return err
			}

			logger.Info("starting openapi-docs",
				zap.String("listen", cfg.Listen),
				zap.String("manifest", cfg.Manifest),
			)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides the config)")

	return cmd
}
