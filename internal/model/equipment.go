package model

// Unit conversions shared by the simulator and aggregator.
const (
	BTUPerKWh   = 3412.14
	BTUPerTon   = 12000.0
	BTUPerTherm = 100000.0
)

// TonsToBTU converts a nominal tonnage to BTU/hr.
func TonsToBTU(tons float64) float64 {
	return tons * BTUPerTon
}

// AuxFuel is the energy source of the backup heat stage.
type AuxFuel string

const (
	AuxElectric AuxFuel = "electric"
	AuxGas      AuxFuel = "gas"
)

// EquipmentProfile holds the ratings of a heat pump and its backup stage.
type EquipmentProfile struct {
	RatedCapacityBTU float64 `json:"rated_capacity_btu" mapstructure:"rated_capacity_btu" yaml:"rated_capacity_btu"`
	HSPF2            float64 `json:"hspf2" mapstructure:"hspf2" yaml:"hspf2"`
	SEER2            float64 `json:"seer2" mapstructure:"seer2" yaml:"seer2"`
	// CompressorPowerKW caps the compressor's electrical draw. Zero means uncapped.
	CompressorPowerKW float64 `json:"compressor_power_kw" mapstructure:"compressor_power_kw" yaml:"compressor_power_kw"`
	AuxCapacityKW     float64 `json:"aux_capacity_kw" mapstructure:"aux_capacity_kw" yaml:"aux_capacity_kw"`
	AuxFuel           AuxFuel `json:"aux_fuel,omitempty" mapstructure:"aux_fuel" yaml:"aux_fuel"`
	// FurnaceAFUE is the efficiency of a gas backup stage (0-1).
	FurnaceAFUE               float64 `json:"furnace_afue,omitempty" mapstructure:"furnace_afue" yaml:"furnace_afue"`
	CompressorMinOutdoorTempF float64 `json:"compressor_min_outdoor_temp_f" mapstructure:"compressor_min_outdoor_temp_f" yaml:"compressor_min_outdoor_temp_f"`
	AuxHeatMaxOutdoorTempF    float64 `json:"aux_heat_max_outdoor_temp_f" mapstructure:"aux_heat_max_outdoor_temp_f" yaml:"aux_heat_max_outdoor_temp_f"`
}

// DefaultEquipment is a 2-ton HSPF2 9 heat pump with 10 kW strips.
func DefaultEquipment() EquipmentProfile {
	return EquipmentProfile{
		RatedCapacityBTU:          TonsToBTU(2),
		HSPF2:                     9,
		SEER2:                     16,
		AuxCapacityKW:             10,
		AuxFuel:                   AuxElectric,
		CompressorMinOutdoorTempF: -15,
		AuxHeatMaxOutdoorTempF:    40,
	}
}

// Validate rejects negative or non-finite ratings.
func (e EquipmentProfile) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"rated_capacity_btu", e.RatedCapacityBTU},
		{"hspf2", e.HSPF2},
		{"seer2", e.SEER2},
		{"compressor_power_kw", e.CompressorPowerKW},
		{"aux_capacity_kw", e.AuxCapacityKW},
		{"furnace_afue", e.FurnaceAFUE},
	}
	for _, c := range checks {
		if !finite(c.value) || c.value < 0 {
			return invalid(ErrInvalidProfile, c.field, c.value)
		}
	}
	if !finite(e.CompressorMinOutdoorTempF) {
		return invalid(ErrInvalidProfile, "compressor_min_outdoor_temp_f", e.CompressorMinOutdoorTempF)
	}
	if !finite(e.AuxHeatMaxOutdoorTempF) {
		return invalid(ErrInvalidProfile, "aux_heat_max_outdoor_temp_f", e.AuxHeatMaxOutdoorTempF)
	}
	if e.FurnaceAFUE > 1 {
		return invalid(ErrInvalidProfile, "furnace_afue", e.FurnaceAFUE)
	}
	switch e.AuxFuel {
	case "", AuxElectric, AuxGas:
	default:
		return &ValidationError{Field: "aux_fuel", Err: ErrInvalidProfile}
	}
	return nil
}

// GasAux reports whether backup heat burns gas.
func (e EquipmentProfile) GasAux() bool {
	return e.AuxFuel == AuxGas
}
