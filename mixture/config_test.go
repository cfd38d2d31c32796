package mixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

func TestParseConfig(t *testing.T) {
	doc := []byte(`
data_range: [10, 5, 1]
tau: 0.05
sp_min: 0
recall_cache_size: 2
update_new_components: true
`)

	cfg, err := ParseConfig(doc)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5, 1}, cfg.DataRange)
	assert.Equal(t, 0.05, cfg.Tau)
	require.NotNil(t, cfg.SpMin)
	assert.Equal(t, 0.0, *cfg.SpMin)
	assert.Nil(t, cfg.VMin)

	m, err := NewIGMNFromConfig(cfg)
	require.NoError(t, err)

	got := m.Config()
	assert.Equal(t, 0.05, got.Tau)
	assert.Equal(t, DefaultDelta, got.Delta)
	assert.Equal(t, 0.0, *got.SpMin)
	assert.Equal(t, 6.0, *got.VMin)
	assert.Equal(t, 2, *got.RecallCacheSize)
	assert.Equal(t, DefaultParallelThreshold, *got.ParallelThreshold)
	assert.True(t, got.UpdateNewComponents)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("data_range: [1]\ntua: 0.1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseConfig(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ParseConfig([]byte("data_range: oops"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{DataRange: []float64{1}}.Validate())

	err := Config{DataRange: []float64{1}, Delta: -1}.Validate()
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "delta", valErr.ParamName)

	assert.Error(t, Config{}.Validate())
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	m, _ := quietModel(t, []float64{3, 4}, WithTau(0.2), WithVMin(7))

	out, err := m.Config().Marshal()
	require.NoError(t, err)

	cfg, err := ParseConfig(out)
	require.NoError(t, err)
	assert.Equal(t, m.Config(), cfg)
}
