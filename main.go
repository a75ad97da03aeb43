// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"syscall"

	"physarum/cmd"
	"physarum/internal/analysis"
	"physarum/internal/app"
	"physarum/internal/audio"
	"physarum/internal/config"
	applog "physarum/internal/log"
	"physarum/internal/player"
	"physarum/internal/settings"
	"physarum/internal/transport"
)

// main runs in three phases:
//
// 1. Startup (cold path): parse arguments, load configuration,
//    configure logging, handle one-off commands.
//
// 2. Concurrent (hot path): start the analysis worker, attach an audio
//    source (decoded music file or live input) to the collector, and
//    drive the frame loop until a termination signal arrives.
//
// 3. Shutdown (cold path): stop the frame loop and worker, tear down
//    the audio source and transports, persist presets.
func main() {
	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if opts.Verbose || cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}
	if opts.DeviceID != config.MinDeviceID {
		cfg.Audio.InputDevice = opts.DeviceID
	}

	if opts.Command == "list" {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("%v", err)
		}
		defer audio.Terminate()
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	if !opts.Run {
		return
	}
	if opts.MusicFile == "" && !opts.LiveInput {
		applog.Fatalf("nothing to react to: pass --music <file> or --live")
	}

	// ---- Concurrent phase ----

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	collector := audio.NewCollector(cfg.Audio.WindowSize)

	worker := analysis.NewWorker(collector)
	go worker.Run()

	var (
		musicPlayer *player.Player
		capture     *audio.Capture
	)
	switch {
	case opts.MusicFile != "":
		musicPlayer, err = player.New(opts.MusicFile, collector)
		if err != nil {
			applog.Fatalf("%v", err)
		}
	case opts.LiveInput:
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("%v", err)
		}
		defer audio.Terminate()

		capture, err = audio.NewCapture(cfg.Audio, collector)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		if err := capture.Start(); err != nil {
			applog.Fatalf("%v", err)
		}
	}

	store, err := settings.NewStore(cfg.Presets.Path)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	var transports transport.Multi
	if cfg.Transport.WebSocketEnabled {
		transports = append(transports,
			transport.NewWebSocket(cfg.Transport.WebSocketPort, cfg.Transport.MinSendInterval))
	}
	if cfg.Transport.UDPEnabled {
		udp, err := transport.NewUDP(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		transports = append(transports, udp)
	}
	if cfg.Debug {
		transports = append(transports, transport.Logging{})
	}

	loop := app.NewLoop(worker, store, app.LogSink{}, transports, cfg.Frame.Rate)
	go loop.Run()

	<-done

	// ---- Shutdown phase ----

	loop.Stop()
	worker.Stop()

	if musicPlayer != nil {
		if err := musicPlayer.Close(); err != nil {
			applog.Errorf("error closing player: %v", err)
		}
	}
	if capture != nil {
		if err := capture.Stop(); err != nil {
			applog.Errorf("error stopping capture: %v", err)
		}
	}
	if err := transports.Close(); err != nil {
		applog.Errorf("error closing transports: %v", err)
	}
	if err := store.Save(); err != nil {
		applog.Errorf("error saving presets: %v", err)
	}
}
