// Package commands holds the browserfakes subcommands.
package commands

import (
	"fmt"
	"io"

	"github.com/Maxwellism/browserfakes/fakes"
	"github.com/Maxwellism/browserfakes/polyfill"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/windowmock"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options is shared by all subcommands; the root command fills in Logger.
type Options struct {
	Logger *zap.Logger
}

func NewValidateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate fixture files and list the fakes they enable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				cfg, err := fakes.LoadConfig(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					continue
				}
				describe(cmd.OutOrStdout(), path, cfg)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d fixtures are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func describe(w io.Writer, path string, cfg fakes.Config) {
	fmt.Fprintf(w, "%s:\n", path)
	storageKind := func(on bool) string {
		if on {
			return "fake"
		}
		return fakes.UseDefault.String()
	}
	fmt.Fprintf(w, "  %-32s %s\n", fakes.KeyWindow, cfg.Window.Kind())
	fmt.Fprintf(w, "  %-32s %s\n", fakes.KeyDocument, cfg.Document.Kind())
	fmt.Fprintf(w, "  %-32s %s\n", fakes.KeyLocalStorage, storageKind(cfg.LocalStorage))
	fmt.Fprintf(w, "  %-32s %s\n", fakes.KeySessionStorage, storageKind(cfg.SessionStorage))
	fmt.Fprintf(w, "  %-32s %s\n", fakes.KeyNavigator, cfg.Navigator.Kind())
}

const snapshotScript = `(function () {
  const snap = (v) => JSON.parse(JSON.stringify(v));
  return {
    window: window !== globalThis,
    location: window !== globalThis ? snap(window.location) : null,
    document: typeof document === "undefined" ? null : snap(document),
    navigator: typeof navigator === "undefined" ? null : snap(navigator),
    localStorage: typeof localStorage !== "undefined",
    sessionStorage: typeof sessionStorage !== "undefined",
  };
})()`

func NewInspectCommand(opts *Options) *cobra.Command {
	var (
		pageURL   string
		userAgent string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Install a fixture and print the globals a script would see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fakes.LoadConfig(args[0])
			if err != nil {
				return err
			}
			snapshot, err := inspect(cfg, opts.Logger,
				windowmock.WithURL(pageURL),
				windowmock.WithUserAgent(userAgent),
				windowmock.WithLogger(opts.Logger),
			)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, snapshot)
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", windowmock.DefaultURL, "URL of the fake page")
	cmd.Flags().StringVar(&userAgent, "user-agent", windowmock.DefaultUserAgent, "Default navigator.userAgent")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func inspect(cfg fakes.Config, logger *zap.Logger, mockOpts ...windowmock.Opt) (any, error) {
	m, err := windowmock.New(mockOpts...)
	if err != nil {
		return nil, err
	}
	owner := registry.New(registry.WithLogger(logger))
	h, err := fakes.Install(owner, cfg, fakes.WithWindowMock(m), fakes.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer h.Teardown()

	env, err := polyfill.NewEnv(owner, polyfill.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer env.Close()
	return env.Eval(snapshotScript)
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
