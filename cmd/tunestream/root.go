package main

import (
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/config"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	mockAudio  bool
}

// load reads the config file and applies the command-line overrides.
func (f *globalFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.mockAudio {
		cfg.Audio.Mock = true
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "tunestream",
		Short:         "Stream and play music from a catalogue service",
		Version:       app.GetVersionInfo().FullString(),
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			application, err := app.NewApplication(app.Options{Config: cfg})
			if err != nil {
				return err
			}
			defer func() {
				if err := application.Shutdown(); err != nil {
					cmd.PrintErrf("shutdown: %v\n", err)
				}
			}()

			// blocks until the window is closed
			return application.Run()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/tunestream/config.toml, then ./config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.mockAudio, "mock-audio", false, "use a silent transport instead of the audio device")

	root.AddCommand(
		newPlayCmd(flags),
		newDownloadCmd(flags),
		newVersionCmd(),
	)
	return root
}
