/*
Package worldevents simulates real-world disruptions to a global shipping
network and resolves their effect on ports and routes.

# Overview

An Engine keeps a registry of active events (weather, political crises,
economic shocks, natural disasters, pandemics, cyber incidents, piracy, labor
strikes and infrastructure failures) and an append-only history of resolved
ones. Three periodic tasks drive the lifecycle:

  - generate: draws new events from per-type rule tables and inserts them
    through admission control
  - update: expires events past their estimated end, weakens old weather
    events and occasionally escalates long-running pandemics
  - cleanup: expires anything overdue or older than the maximum event age

Every change is published on a notification bus in the order it was made.

# Basic Usage

	engine, err := worldevents.New(catalog.Default(),
	    worldevents.WithLogger(logger),
	    worldevents.WithForecastProviders(forecast.NoiseProviders(catalog.Default(), 1)...),
	)
	if err != nil {
	    log.Fatal(err)
	}

	engine.SubscribeAll(func(n notify.Notification) {
	    fmt.Println(n.Sequence, n.Kind)
	})

	if err := engine.Start(ctx); err != nil {
	    log.Fatal(err)
	}
	defer engine.Stop()

	assessment, err := engine.AssessPort("SGSIN")

# Deterministic Runs

Tests and offline simulations skip Start and call GenerateTick, UpdateTick
and CleanupTick directly, with WithClock and WithSeed (or WithSource) fixing
time and randomness.

# Manual Control

TriggerEvent inserts an event built from a model.Template; it fails with a
ValidationError for malformed templates and ErrAdmissionRejected when the
type is at its cap. ResolveEvent closes an event and is a no-op for unknown
or already resolved IDs.

# Subpackages

  - model: events, scopes, impacts, catalog contract, geo math
  - generator, admission, scheduler: lifecycle building blocks
  - impact, risk, forecast: read-side queries
  - notify: notification bus, detectors, Kafka forwarder
  - archive: export of resolved events to memory, SQLite or S3
  - api: HTTP API over an Engine
*/
package worldevents
