package reco

import (
	"testing"

	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsByName(t *testing.T) {
	var p Params
	for i, name := range ParamNames {
		require.NoError(t, p.Set(name, float64(i+1)))
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, p.Values())
	assert.Equal(t, p, ParamsFromValues(p.Values()))

	v, err := p.Get(ParamCascadeEnergy)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	assert.ErrorIs(t, p.Set("energy", 1), ErrUnknownParameter)
	_, err = p.Get("energy")
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestSchemaSpace(t *testing.T) {
	schema, err := NewSchema(HypoTrackCascadeSplit)
	require.NoError(t, err)

	space := schema.Space(nil)
	assert.Equal(t, 8, space.Dim())
	assert.Equal(t, []int{0, 1, 2, 3}, space.Linear)
	assert.Equal(t, []optimize.Pair{{Azimuth: 4, Zenith: 5}, {Azimuth: 6, Zenith: 7}}, space.Pairs)

	schema, err = NewSchema(HypoCascade)
	require.NoError(t, err)
	space = schema.Space(nil)
	assert.Equal(t, []optimize.Pair{{Azimuth: 4, Zenith: 5}}, space.Pairs)
	assert.True(t, schema.HasCascade())
	assert.False(t, schema.HasTrack())

	_, err = NewSchema("double_bang")
	assert.ErrorIs(t, err, ErrUnknownHypothesis)
}

func TestCollinearCascadeFollowsTrack(t *testing.T) {
	schema, err := NewSchema(HypoTrackCascade)
	require.NoError(t, err)

	p := schema.Params([]float64{100, 1, 2, 3, 0.5, 1.5})
	assert.Equal(t, 100.0, p.Time)
	assert.Equal(t, 0.5, p.CascadeAzimuth)
	assert.Equal(t, 1.5, p.CascadeZenith)
	assert.Zero(t, p.TrackEnergy)
}
