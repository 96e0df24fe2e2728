// Package config loads joule settings from defaults, an optional YAML file
// and JOULE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cost"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/heatloss"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/logging"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/store"
)

// EnvPrefix prefixes environment overrides, e.g. JOULE_RATES_ELECTRIC_PER_KWH.
const EnvPrefix = "JOULE"

// DefaultConfigPath is searched when no --config flag is given.
const DefaultConfigPath = "~/.config/joule/config.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Climate struct {
	// NormalsPath is a CSV or YAML 12-month HDD/CDD table.
	NormalsPath string `mapstructure:"normals_path"`
	// SeriesPath is an hourly forecast CSV used by weekly estimates and replay.
	SeriesPath string `mapstructure:"series_path"`
}

type History struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
	// Speed is the initial replay speed multiplier.
	Speed float64 `mapstructure:"speed"`
}

type Config struct {
	Logging    Logging                `mapstructure:"logging"`
	Building   model.BuildingProfile  `mapstructure:"building"`
	HeatLoss   heatloss.Overrides     `mapstructure:"heat_loss"`
	Equipment  model.EquipmentProfile `mapstructure:"equipment"`
	Thermostat model.Thermostat       `mapstructure:"thermostat"`
	Rates      model.UtilityRates     `mapstructure:"rates"`
	BaseLoad   cost.BaseLoad          `mapstructure:"base_load"`
	Climate    Climate                `mapstructure:"climate"`
	History    History                `mapstructure:"history"`
	Server     Server                 `mapstructure:"server"`
}

// SetDefaults registers every key so environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	b := model.DefaultBuilding()
	eq := model.DefaultEquipment()
	th := model.DefaultThermostat()

	defaults := map[string]any{
		"logging.level":  "info",
		"logging.format": "console",

		"building.square_feet":       b.SquareFeet,
		"building.insulation_level":  b.InsulationLevel,
		"building.home_shape":        b.HomeShape,
		"building.ceiling_height_ft": b.CeilingHeightFt,
		"building.wall_height_ft":    0.0,
		"building.has_loft":          false,

		"heat_loss.manual_btu_per_f":   0.0,
		"heat_loss.analyzer_btu_per_f": 0.0,

		"equipment.rated_capacity_btu":            eq.RatedCapacityBTU,
		"equipment.hspf2":                         eq.HSPF2,
		"equipment.seer2":                         eq.SEER2,
		"equipment.compressor_power_kw":           0.0,
		"equipment.aux_capacity_kw":               eq.AuxCapacityKW,
		"equipment.aux_fuel":                      string(eq.AuxFuel),
		"equipment.furnace_afue":                  0.0,
		"equipment.compressor_min_outdoor_temp_f": eq.CompressorMinOutdoorTempF,
		"equipment.aux_heat_max_outdoor_temp_f":   eq.AuxHeatMaxOutdoorTempF,

		"thermostat.heat_setpoint_f": th.HeatSetpointF,
		"thermostat.cool_setpoint_f": th.CoolSetpointF,
		"thermostat.heat_night_f":    0.0,
		"thermostat.night_hours":     0,

		"rates.electric_per_kwh": 0.15,
		"rates.gas_per_therm":    1.20,
		"rates.fixed_monthly":    0.0,

		"base_load.kwh_per_day":      0.0,
		"base_load.known_annual_kwh": 0.0,
		"base_load.uplift":           cost.DefaultUplift,

		"climate.normals_path": "",
		"climate.series_path":  "",

		"history.driver": store.DriverSQLite,
		"history.path":   "~/.local/share/joule/history.db",

		"server.addr":  ":8080",
		"server.speed": 3600.0,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads configuration into v. An empty path searches the default
// location; a missing default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(ExpandPath(path))
	} else {
		v.SetConfigFile(ExpandPath(DefaultConfigPath))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !(errors.As(err, &notFound) || isMissingFile(err)) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Climate.NormalsPath = ExpandPath(cfg.Climate.NormalsPath)
	cfg.Climate.SeriesPath = ExpandPath(cfg.Climate.SeriesPath)
	cfg.History.Path = ExpandPath(cfg.History.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"building", c.Building.Validate()},
		{"equipment", c.Equipment.Validate()},
		{"thermostat", c.Thermostat.Validate()},
		{"rates", c.Rates.Validate()},
		{"base_load", c.BaseLoad.Validate()},
	}
	for _, chk := range checks {
		if chk.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, chk.section, chk.err)
		}
	}
	if _, err := logging.NewHandler(io.Discard, c.Logging.Level, c.Logging.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.History.Driver {
	case store.DriverMemory, store.DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown history driver %q", ErrInvalidConfig, c.History.Driver)
	}
	if c.History.Driver == store.DriverSQLite && c.History.Path == "" {
		return fmt.Errorf("%w: history.path is required for sqlite", ErrInvalidConfig)
	}
	return nil
}
