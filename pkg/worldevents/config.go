package worldevents

import (
	"maps"
	"slices"

	"github.com/randalmurphal/worldevents/pkg/worldevents/admission"
	"github.com/randalmurphal/worldevents/pkg/worldevents/config"
	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
)

// Configuration keys understood by OptionsFromConfig.
const (
	KeyGenerateInterval    = "generate_interval"
	KeyUpdateInterval      = "update_interval"
	KeyCleanupInterval     = "cleanup_interval"
	KeyGenerateRetry       = "generate_retry"
	KeyUpdateRetry         = "update_retry"
	KeyCleanupRetry        = "cleanup_retry"
	KeyMaxEventAge         = "max_event_age"
	KeySeed                = "seed"
	KeyBusBufferSize       = "bus_buffer_size"
	KeyAdmissionDefaultCap = "admission_default_cap"
	KeyAdmissionCaps       = "admission_caps"
	KeyProbabilities       = "probabilities"
	KeyForecastTimeout     = "forecast_timeout"
)

var knownKeys = []string{
	KeyGenerateInterval, KeyUpdateInterval, KeyCleanupInterval,
	KeyGenerateRetry, KeyUpdateRetry, KeyCleanupRetry,
	KeyMaxEventAge, KeySeed, KeyBusBufferSize,
	KeyAdmissionDefaultCap, KeyAdmissionCaps, KeyProbabilities,
	KeyForecastTimeout,
}

// OptionsFromConfig maps a config document onto engine options. Missing
// keys keep the engine defaults. Unknown event type names in
// admission_caps or probabilities, negative caps, probabilities outside
// [0,1] and unrecognized top-level keys are ValidationErrors.
//
// Example YAML:
//
//	generate_interval: 5m
//	update_interval: 1m
//	seed: 42
//	admission_caps:
//	  pandemic: 1
//	probabilities:
//	  weather: 0.002
func OptionsFromConfig(cfg config.Config) ([]Option, error) {
	for _, key := range cfg.Keys() {
		if !slices.Contains(knownKeys, key) {
			return nil, weerrors.Invalid(key, "unknown setting")
		}
	}

	opts := []Option{
		WithCadence(
			cfg.Duration(KeyGenerateInterval, 0),
			cfg.Duration(KeyUpdateInterval, 0),
			cfg.Duration(KeyCleanupInterval, 0),
		),
		WithRetryDelays(
			cfg.Duration(KeyGenerateRetry, 0),
			cfg.Duration(KeyUpdateRetry, 0),
			cfg.Duration(KeyCleanupRetry, 0),
		),
		WithMaxEventAge(cfg.Duration(KeyMaxEventAge, 0)),
		WithForecastTimeout(cfg.Duration(KeyForecastTimeout, 0)),
	}

	if cfg.Has(KeySeed) {
		opts = append(opts, WithSeed(cfg.Uint64(KeySeed, 0)))
	}

	if n := cfg.Int(KeyBusBufferSize, 0); n > 0 {
		opts = append(opts, WithBusConfig(notify.BusConfig{BufferSize: n}))
	}

	var admitOpts []admission.Option
	if cfg.Has(KeyAdmissionDefaultCap) {
		n := cfg.Int(KeyAdmissionDefaultCap, admission.DefaultCap)
		if n < 0 {
			return nil, weerrors.Invalid(KeyAdmissionDefaultCap, "must not be negative, got %d", n)
		}
		admitOpts = append(admitOpts, admission.WithDefaultCap(n))
	}
	caps := cfg.IntMap(KeyAdmissionCaps)
	for _, name := range sortedKeys(caps) {
		t, ok := model.ParseEventType(name)
		if !ok {
			return nil, weerrors.Invalid(KeyAdmissionCaps, "unknown event type %q", name)
		}
		if caps[name] < 0 {
			return nil, weerrors.Invalid(KeyAdmissionCaps, "%s cap must not be negative, got %d", name, caps[name])
		}
		admitOpts = append(admitOpts, admission.WithCap(t, caps[name]))
	}
	if len(admitOpts) > 0 {
		opts = append(opts, WithAdmission(admission.New(admitOpts...)))
	}

	if probs := cfg.FloatMap(KeyProbabilities); len(probs) > 0 {
		parsed := make(map[model.EventType]float64, len(probs))
		for _, name := range sortedKeys(probs) {
			t, ok := model.ParseEventType(name)
			if !ok {
				return nil, weerrors.Invalid(KeyProbabilities, "unknown event type %q", name)
			}
			p := probs[name]
			if p < 0 || p > 1 {
				return nil, weerrors.Invalid(KeyProbabilities, "%s probability %v outside [0,1]", name, p)
			}
			parsed[t] = p
		}
		opts = append(opts, WithProbabilities(parsed))
	}

	return opts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
