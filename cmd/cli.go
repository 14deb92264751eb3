package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	"github.com/Arcadesys/doctorfeelgood-sub001/pkg/build"
)

// ParseArgs builds the session configuration from the config file and the
// command line. Flags override file values; everything numeric is clamped
// afterward, never rejected.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetInfo()

	var configPath string
	var options *config.Config

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Bilateral stimulation session engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// analyze: one-shot beat analysis of a file, no session.
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Detect the tempo of an audio file and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = "analyze"
			options.File = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	// list: output device listing, no session.
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available output devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to the YAML config file")

	// The config file is loaded before flag values are copied in, so flag
	// registration needs a target that survives the reload: parse flags
	// first with defaults, load the file, then re-apply changed flags.
	options = config.NewConfig()

	pf.StringVarP(&options.File, "file", "f", "",
		"Audio track to load (WAV). Empty runs the built-in sample")
	pf.StringVar(&options.Stimulus.SyncMode, "sync-mode", options.Stimulus.SyncMode,
		"Cadence source: beat or manual")
	pf.StringVar(&options.Stimulus.MovementPattern, "pattern", options.Stimulus.MovementPattern,
		"Movement pattern: ping-pong or sine")
	pf.Float64Var(&options.Stimulus.FrequencyHz, "frequency", options.Stimulus.FrequencyHz,
		"Manual oscillation rate in Hz")
	pf.Float64Var(&options.Stimulus.Amplitude, "amplitude", options.Stimulus.Amplitude,
		"Sweep width (0-1)")
	pf.Float64Var(&options.Stimulus.CenterOffset, "center", options.Stimulus.CenterOffset,
		"Sweep center (0-1)")
	pf.Float64Var(&options.Stimulus.Sensitivity, "sensitivity", options.Stimulus.Sensitivity,
		"Beat detection sensitivity (0-1)")
	pf.StringVar(&options.Stimulus.Cue, "cue", options.Stimulus.Cue,
		"Beat cue sound: click, beep, hiss, or none")
	pf.Float64Var(&options.Stimulus.Volume, "volume", options.Stimulus.Volume,
		"Master volume (0-1)")
	pf.IntVarP(&options.Audio.OutputDevice, "device", "d", options.Audio.OutputDevice,
		"Output device ID. Use 'list' to see available devices")
	pf.BoolVar(&options.Audio.Disabled, "no-audio", options.Audio.Disabled,
		"Run visual-only, without audio output")
	pf.BoolVar(&options.Headless, "headless", false,
		"Run without the terminal renderer (WebSocket transport only)")
	pf.BoolVarP(&options.Debug, "verbose", "v", options.Debug,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// Merge: file config as the base, then re-apply every flag the user
	// actually set on top of it.
	if fileCfg, err := config.Load(configPath); err != nil {
		return nil, err
	} else {
		merged := *fileCfg
		merged.Command = options.Command
		merged.File = options.File
		merged.Headless = options.Headless
		if pf.Changed("sync-mode") {
			merged.Stimulus.SyncMode = options.Stimulus.SyncMode
		}
		if pf.Changed("pattern") {
			merged.Stimulus.MovementPattern = options.Stimulus.MovementPattern
		}
		if pf.Changed("frequency") {
			merged.Stimulus.FrequencyHz = options.Stimulus.FrequencyHz
		}
		if pf.Changed("amplitude") {
			merged.Stimulus.Amplitude = options.Stimulus.Amplitude
		}
		if pf.Changed("center") {
			merged.Stimulus.CenterOffset = options.Stimulus.CenterOffset
		}
		if pf.Changed("sensitivity") {
			merged.Stimulus.Sensitivity = options.Stimulus.Sensitivity
		}
		if pf.Changed("cue") {
			merged.Stimulus.Cue = options.Stimulus.Cue
		}
		if pf.Changed("volume") {
			merged.Stimulus.Volume = options.Stimulus.Volume
		}
		if pf.Changed("device") {
			merged.Audio.OutputDevice = options.Audio.OutputDevice
		}
		if pf.Changed("no-audio") {
			merged.Audio.Disabled = options.Audio.Disabled
		}
		if pf.Changed("verbose") {
			merged.Debug = options.Debug
		}
		merged.Clamp()
		options = &merged
	}

	return options, nil
}
