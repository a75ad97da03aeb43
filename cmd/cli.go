// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"physarum/internal/config"
	"physarum/pkg/build"
)

// Options carries the parsed command line. Flag values override the
// corresponding config-file settings.
type Options struct {
	ConfigPath string
	MusicFile  string
	DeviceID   int
	LiveInput  bool
	Verbose    bool

	Command string // One-off command ("list"), empty for normal run.
	Run     bool   // Whether to start the engine.
}

// ParseArgs parses os.Args into Options.
func ParseArgs() (*Options, error) {
	info := build.GetInfo()
	opts := &Options{DeviceID: config.MinDeviceID}

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Audio-reactive physarum simulation engine",
		Version:       info.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Run = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&opts.MusicFile, "music", "m", "",
		"Music file to play and react to (mp3, wav, flac, ogg)")
	rootCmd.PersistentFlags().BoolVarP(&opts.LiveInput, "live", "l", false,
		"React to live audio input instead of a music file")
	rootCmd.PersistentFlags().IntVarP(&opts.DeviceID, "device", "d", config.MinDeviceID,
		"Input device ID for live mode. Use 'list' to see available devices.")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return opts, nil
}
