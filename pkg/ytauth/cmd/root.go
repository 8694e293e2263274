package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/injaneity/ytauth/pkg/ytauth/config"
	"github.com/injaneity/ytauth/pkg/ytauth/flow"
)

// FlowFunc is the authorization flow delegate. Tests swap it for a stub;
// the real binary uses flow.Login.
type FlowFunc func(ctx context.Context, opts flow.Options) (*flow.Result, error)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	Flow         FlowFunc
}

type runtimeState struct {
	configPath string
	cfg        *config.Config
	writer     io.Writer
	flow       FlowFunc
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		Flow:         flow.Login,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter, flow: cfg.Flow}
	opts := &captureOptions{}

	root := &cobra.Command{
		Use:   "ytauth",
		Short: "Generate a YouTube OAuth refresh token",
		Long: "ytauth launches a browser window for the Google account the refresh token\n" +
			"should belong to, then prints the refresh token and access token.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.flow == nil {
				rt.flow = flow.Login
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			// The defaults file is optional; only a malformed one is fatal.
			loaded, err := config.Load(rt.configPath)
			if err != nil {
				if os.IsNotExist(err) {
					defaults := config.DefaultConfig()
					rt.cfg = &defaults
					return nil
				}
				return err
			}
			rt.cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCapture(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to the ytauth defaults file")
	addCaptureFlags(root, opts)

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewVerifyCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}
