/*
Package config reads the engine's settings file into typed values.

A Config wraps the map decoded from YAML or JSON. Every accessor takes a
default that is returned when the key is missing or holds the wrong type,
so a partial file only overrides what it names:

	generate_interval: 5m
	seed: 42
	admission_default_cap: 5
	admission_caps: {pandemic: 1, economic: 2}
	probabilities:
	  weather: 0.001
	  piracy: 0.0002

worldevents.OptionsFromConfig turns a Config into engine options and
reports unknown event types or out-of-range values as validation errors.

Duration accepts a time.ParseDuration string ("90s", "1h30m"), a number of
seconds, or a time.Duration. Int accepts a float64 only when it is whole;
IntMap and FloatMap drop entries that do not convert.

A Config is never modified after New and may be read concurrently.
*/
package config
