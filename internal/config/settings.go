package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Settings are per-user runtime knobs, layered as defaults, then an
// optional seirsim.yaml, then SEIRSIM_* environment variables, then
// whatever flags the caller bound on v.
type Settings struct {
	DataDir    string
	LogLevel   string
	LogFormat  string
	Integrator string
	RelTol     float64
	AbsTol     float64
	Workers    int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".seirsim/runs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "logfmt")
	v.SetDefault("integrator", DefaultIntegrator)
	v.SetDefault("solver.rtol", DefaultRelTol)
	v.SetDefault("solver.atol", DefaultAbsTol)
	v.SetDefault("workers", 0)
}

// LoadSettings reads file when given, otherwise looks for seirsim.yaml in
// the working directory and $HOME/.config/seirsim. A missing file is fine.
func LoadSettings(v *viper.Viper, file string) (*Settings, error) {
	setDefaults(v)

	v.SetEnvPrefix("SEIRSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("seirsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/seirsim")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Settings{
		DataDir:    v.GetString("data_dir"),
		LogLevel:   v.GetString("log.level"),
		LogFormat:  v.GetString("log.format"),
		Integrator: v.GetString("integrator"),
		RelTol:     v.GetFloat64("solver.rtol"),
		AbsTol:     v.GetFloat64("solver.atol"),
		Workers:    v.GetInt("workers"),
	}, nil
}

// Config is DefaultConfig with the runtime solver settings applied. A
// config file loaded on top of it still wins.
func (s *Settings) Config() *Config {
	cfg := DefaultConfig()
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.RelTol > 0 {
		cfg.Solver.RelTol = s.RelTol
	}
	if s.AbsTol > 0 {
		cfg.Solver.AbsTol = s.AbsTol
	}
	return cfg
}
