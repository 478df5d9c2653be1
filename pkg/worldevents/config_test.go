package worldevents_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	"github.com/randalmurphal/worldevents/pkg/worldevents/config"
	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

func TestOptionsFromConfig_Empty(t *testing.T) {
	opts, err := worldevents.OptionsFromConfig(config.New(nil))
	require.NoError(t, err)

	e, err := worldevents.New(testCatalog(), opts...)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestOptionsFromConfig_Admission(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
admission_default_cap: 1
admission_caps:
  pandemic: 0
`))
	require.NoError(t, err)
	opts, err := worldevents.OptionsFromConfig(cfg)
	require.NoError(t, err)

	e := newEngine(t, newClock(), opts...)
	ctx := context.Background()

	_, err = e.TriggerEvent(ctx, template(model.Pandemic, model.Low, model.GlobalScope(), time.Hour))
	assert.ErrorIs(t, err, worldevents.ErrAdmissionRejected)

	_, err = e.TriggerEvent(ctx, template(model.Piracy, model.Low, model.GlobalScope(), time.Hour))
	require.NoError(t, err)
	_, err = e.TriggerEvent(ctx, template(model.Piracy, model.Low, model.GlobalScope(), time.Hour))
	assert.ErrorIs(t, err, worldevents.ErrAdmissionRejected)
}

func TestOptionsFromConfig_ProbabilitiesAndSeed(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
seed: 99
max_event_age: 1h
probabilities:
  weather: 1
  political: 0
  economic: 0
  natural_disaster: 0
  pandemic: 0
  cyber_security: 0
  piracy: 0
  labor_strike: 0
  infrastructure: 0
`))
	require.NoError(t, err)
	opts, err := worldevents.OptionsFromConfig(cfg)
	require.NoError(t, err)

	run := func() []model.WorldEvent {
		clk := newClock()
		e, err := worldevents.New(testCatalog(), append(opts, worldevents.WithClock(clk.Now))...)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			require.NoError(t, e.GenerateTick(context.Background()))
			clk.Advance(time.Minute)
		}
		return e.ActiveEvents()
	}

	first, second := run(), run()
	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, model.Weather, first[i].Type)
		assert.Equal(t, first[i].Severity, second[i].Severity)
		assert.Equal(t, first[i].Scope, second[i].Scope)
		assert.Equal(t, first[i].Impacts, second[i].Impacts)
	}
}

func TestOptionsFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"negative default cap", "admission_default_cap: -1", worldevents.KeyAdmissionDefaultCap},
		{"unknown cap type", "admission_caps:\n  meteor: 1", worldevents.KeyAdmissionCaps},
		{"negative cap", "admission_caps:\n  piracy: -2", worldevents.KeyAdmissionCaps},
		{"unknown probability type", "probabilities:\n  meteor: 0.1", worldevents.KeyProbabilities},
		{"probability above one", "probabilities:\n  weather: 1.5", worldevents.KeyProbabilities},
		{"misspelled key", "generate_intervall: 5m", "generate_intervall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = worldevents.OptionsFromConfig(cfg)
			var ve *weerrors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
