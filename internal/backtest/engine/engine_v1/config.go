package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/pairbacktest/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

const (
	// DefaultInitialCapital is the starting cash when none is configured.
	DefaultInitialCapital = 100_000.0
	// DefaultCapitalPerPair is the notional allocated to each pair trade.
	DefaultCapitalPerPair = 10_000.0
	// DefaultRebalanceTolerance is the weight band within which existing
	// positions are left untouched for non-rebalancing weight signals.
	DefaultRebalanceTolerance = 0.01
)

type BacktestConfig struct {
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting cash for the backtest in USD,minimum=0"`
	CapitalPerPair float64                    `yaml:"capital_per_pair" json:"capital_per_pair" jsonschema:"title=Capital Per Pair,description=Notional allocated to each pair trade in USD,minimum=0"`
	Commission     commission.Model           `yaml:"commission" json:"commission" jsonschema:"title=Commission,description=The commission model used to price fills"`
	PriceField     types.PriceField           `yaml:"price_field" json:"price_field" jsonschema:"title=Price Field,description=Closing price column used for execution and mark-to-market"`
	RiskFreeRate   float64                    `yaml:"risk_free_rate" json:"risk_free_rate" jsonschema:"title=Risk Free Rate,description=Annual risk-free rate used in the Sharpe ratio"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start date for the backtest period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end date for the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestConfig
func (c *BacktestConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCapital float64          `yaml:"initial_capital"`
		CapitalPerPair float64          `yaml:"capital_per_pair"`
		Commission     commission.Model `yaml:"commission"`
		PriceField     types.PriceField `yaml:"price_field"`
		RiskFreeRate   float64          `yaml:"risk_free_rate"`
		StartTime      *time.Time       `yaml:"start_time"`
		EndTime        *time.Time       `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = config.InitialCapital
	c.CapitalPerPair = config.CapitalPerPair
	c.Commission = config.Commission
	c.PriceField = config.PriceField
	c.RiskFreeRate = config.RiskFreeRate
	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}
	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration and fills in defaults for zero-valued
// optional fields.
func (c *BacktestConfig) Validate() error {
	if c.InitialCapital == 0 {
		c.InitialCapital = DefaultInitialCapital
	}

	if c.CapitalPerPair == 0 {
		c.CapitalPerPair = DefaultCapitalPerPair
	}

	if c.PriceField == "" {
		c.PriceField = types.PriceFieldAdjustedClose
	}

	if c.Commission == "" {
		c.Commission = commission.ModelZero
	}

	if c.InitialCapital < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"initial capital must be positive: %f", c.InitialCapital)
	}

	if c.CapitalPerPair < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"capital per pair must be positive: %f", c.CapitalPerPair)
	}

	if c.CapitalPerPair > c.InitialCapital {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"capital per pair (%f) cannot exceed initial capital (%f)",
			c.CapitalPerPair, c.InitialCapital)
	}

	if c.PriceField != types.PriceFieldClose && c.PriceField != types.PriceFieldAdjustedClose {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"unknown price field %q", c.PriceField)
	}

	if start, err := c.StartTime.Take(); err == nil {
		if end, err := c.EndTime.Take(); err == nil && end.Before(start) {
			return errors.Newf(errors.ErrCodeInvalidConfiguration,
				"end time %s is before start time %s",
				end.Format(time.DateOnly), start.Format(time.DateOnly))
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestConfig
func (c *BacktestConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "commission.Model") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission.AllModels,
				}
			}
			if strings.Contains(t.String(), "types.PriceField") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{types.PriceFieldClose, types.PriceFieldAdjustedClose},
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for the pair backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestConfig
func (c *BacktestConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time, model commission.Model) BacktestConfig {
	return BacktestConfig{
		InitialCapital: DefaultInitialCapital,
		CapitalPerPair: DefaultCapitalPerPair,
		Commission:     model,
		PriceField:     types.PriceFieldClose,
		RiskFreeRate:   0,
		StartTime:      optional.Some(startTime),
		EndTime:        optional.Some(endTime),
	}
}

// EmptyConfig returns a BacktestConfig with default values
func EmptyConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital: DefaultInitialCapital,
		CapitalPerPair: DefaultCapitalPerPair,
		Commission:     commission.ModelZero,
		PriceField:     types.PriceFieldAdjustedClose,
		RiskFreeRate:   0,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}
