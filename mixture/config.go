package mixture

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

// Config is the declarative form of the IGMN options. Zero values and absent
// optional fields select the defaults, so a document only needs data_range:
//
//	data_range: [10, 10, 1]
//	tau: 0.05
//	sp_min: 4
type Config struct {
	DataRange []float64 `yaml:"data_range"`
	Tau       float64   `yaml:"tau,omitempty"`
	Delta     float64   `yaml:"delta,omitempty"`
	Eta       float64   `yaml:"eta,omitempty"`

	// spMin and vMin default from D and may legitimately be 0.
	SpMin *float64 `yaml:"sp_min,omitempty"`
	VMin  *float64 `yaml:"v_min,omitempty"`

	ParallelThreshold   *int `yaml:"parallel_threshold,omitempty"`
	RecallCacheSize     *int `yaml:"recall_cache_size,omitempty"`
	UpdateNewComponents bool `yaml:"update_new_components,omitempty"`
}

// ParseConfig decodes a YAML document. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.NewModelError("ParseConfig", "empty document", errors.ErrEmptyData)
		}
		return Config{}, errors.Wrap(err, "parse IGMN config")
	}
	return cfg, nil
}

// Options converts the config into functional options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Tau != 0 {
		opts = append(opts, WithTau(c.Tau))
	}
	if c.Delta != 0 {
		opts = append(opts, WithDelta(c.Delta))
	}
	if c.Eta != 0 {
		opts = append(opts, WithEta(c.Eta))
	}
	if c.SpMin != nil {
		opts = append(opts, WithSpMin(*c.SpMin))
	}
	if c.VMin != nil {
		opts = append(opts, WithVMin(*c.VMin))
	}
	if c.ParallelThreshold != nil {
		opts = append(opts, WithParallelThreshold(*c.ParallelThreshold))
	}
	if c.RecallCacheSize != nil {
		opts = append(opts, WithRecallCacheSize(*c.RecallCacheSize))
	}
	if c.UpdateNewComponents {
		opts = append(opts, WithUpdateNewComponents(true))
	}
	return opts
}

// Validate reports the ValidationError NewIGMNFromConfig would return.
func (c Config) Validate() error {
	_, err := NewIGMNFromConfig(c)
	return err
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal IGMN config")
	}
	return out, nil
}

// NewIGMNFromConfig builds a model from cfg. opts are applied after the
// config, so they win on conflicts (WithLogger is the usual one).
func NewIGMNFromConfig(cfg Config, opts ...Option) (*IGMN, error) {
	return NewIGMN(cfg.DataRange, append(cfg.Options(), opts...)...)
}

// Config returns the effective configuration, defaults resolved.
func (m *IGMN) Config() Config {
	spMin, vMin := m.spMin, m.vMin
	threshold, cacheSize := m.parallelThreshold, m.recallCacheSize
	return Config{
		DataRange:           m.DataRange(),
		Tau:                 m.tau,
		Delta:               m.delta,
		Eta:                 m.eta,
		SpMin:               &spMin,
		VMin:                &vMin,
		ParallelThreshold:   &threshold,
		RecallCacheSize:     &cacheSize,
		UpdateNewComponents: m.updateNewComponents,
	}
}
