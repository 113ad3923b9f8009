package main

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snek/internal/audio"
	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/storage"
	"github.com/vovakirdan/snek/internal/system"
	"github.com/vovakirdan/snek/internal/telemetry"
)

// outputs holds the optional diagnostics sinks the config enables. A sink
// that cannot be opened is logged and skipped; the game still runs.
type outputs struct {
	store     *storage.Store
	publisher *telemetry.Publisher
	logger    *log.Logger
}

func openOutputs(cfg config.Config, logger *log.Logger) *outputs {
	o := &outputs{logger: logger}

	if cfg.Trace.Enabled {
		store, err := storage.Open(cfg.Trace.Path)
		if err != nil {
			logger.Warn("could not open trace database", "path", cfg.Trace.Path, "error", err)
		} else {
			o.store = store
		}
	}

	if cfg.Telemetry.Enabled {
		pub, err := telemetry.Dial(telemetry.Options{
			Broker:  cfg.Telemetry.Broker,
			Topic:   cfg.Telemetry.Topic,
			QoS:     cfg.Telemetry.QoS,
			Timeout: cfg.Telemetry.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			o.publisher = pub
		}
	}
	return o
}

// sinks returns the sinks for one system; each gets its own trace run.
func (o *outputs) sinks(label string) []system.DiagnosticsSink {
	var out []system.DiagnosticsSink
	if o.store != nil {
		run, err := o.store.StartRun(label)
		if err != nil {
			o.logger.Warn("could not start trace run", "error", err)
		} else {
			o.logger.Info("tracing", "run", run.ID(), "label", label)
			out = append(out, run)
		}
	}
	if o.publisher != nil {
		out = append(out, o.publisher)
	}
	return out
}

func (o *outputs) Close() {
	if o.store != nil {
		o.store.Close()
	}
	if o.publisher != nil {
		o.publisher.Close()
	}
}

// openSpeaker returns a beep-backed sink, or a silent one when audio is
// off or the speaker cannot be opened.
func openSpeaker(cfg config.Config, logger *log.Logger) (audio.Sink, func()) {
	silent := audio.SilentSink{Logger: logger}
	if !cfg.Audio.Enabled {
		return silent, func() {}
	}
	sink, err := audio.NewBeepSink(cfg.Audio.SampleRate, cfg.Audio.Volume)
	if err != nil {
		logger.Warn("audio disabled", "error", err)
		return silent, func() {}
	}
	return sink, sink.Close
}
