// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/pumpcurve/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpcurve/internal/forecast"
	"github.com/rovshanmuradov/pumpcurve/internal/types"
)

type Config struct {
	DebugLogging bool                 `mapstructure:"debug_logging"`
	LogFile      string               `mapstructure:"log_file"`
	Workers      int                  `mapstructure:"workers"`
	Slippage     types.SlippageConfig `mapstructure:"slippage"`
	Global       GlobalParams         `mapstructure:"global"`
	Scenarios    []ScenarioConfig     `mapstructure:"scenarios"`
	Export       ExportConfig         `mapstructure:"export"`
}

// GlobalParams mirrors the decoded Global account of a curve family.
type GlobalParams struct {
	Authority                   string `mapstructure:"authority"`
	FeeRecipient                string `mapstructure:"fee_recipient"`
	InitialVirtualTokenReserves uint64 `mapstructure:"initial_virtual_token_reserves"`
	InitialVirtualSolReserves   uint64 `mapstructure:"initial_virtual_sol_reserves"`
	InitialRealTokenReserves    uint64 `mapstructure:"initial_real_token_reserves"`
	TokenTotalSupply            uint64 `mapstructure:"token_total_supply"`
	FeeBasisPoints              uint64 `mapstructure:"fee_basis_points"`
}

// CurveParams mirrors a decoded BondingCurve account.
type CurveParams struct {
	VirtualTokenReserves uint64 `mapstructure:"virtual_token_reserves"`
	VirtualSolReserves   uint64 `mapstructure:"virtual_sol_reserves"`
	RealTokenReserves    uint64 `mapstructure:"real_token_reserves"`
	RealSolReserves      uint64 `mapstructure:"real_sol_reserves"`
	TokenTotalSupply     uint64 `mapstructure:"token_total_supply"`
	Complete             bool   `mapstructure:"complete"`
}

type ScenarioConfig struct {
	Name string `mapstructure:"name"`
	// Curve is optional; without it the scenario starts from a fresh curve of the family.
	Curve    *CurveParams          `mapstructure:"curve"`
	Slippage *types.SlippageConfig `mapstructure:"slippage"`
	Steps    []StepConfig          `mapstructure:"steps"`
}

type StepConfig struct {
	Side   string `mapstructure:"side"`
	Amount uint64 `mapstructure:"amount"`
}

type ExportConfig struct {
	Format    string `mapstructure:"format"`
	OutputDir string `mapstructure:"output_dir"`
}

// Значения по умолчанию соответствуют текущим параметрам Pump.fun на mainnet.
const (
	DefaultInitialVirtualTokenReserves uint64 = 1_073_000_000_000_000
	DefaultInitialVirtualSolReserves   uint64 = 30_000_000_000
	DefaultInitialRealTokenReserves    uint64 = 793_100_000_000_000
	DefaultTokenTotalSupply            uint64 = 1_000_000_000_000_000
	DefaultFeeBasisPoints              uint64 = 100
	DefaultWorkers                            = 4
	DefaultLogFile                            = "curvesim.log"
	DefaultExportFormat                       = "csv"
	DefaultExportDir                          = "reports"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("CURVESIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]interface{}{
		"log_file":                              DefaultLogFile,
		"workers":                               DefaultWorkers,
		"slippage.type":                         string(types.SlippageBasisPoints),
		"slippage.value":                        float64(pumpfun.DefaultSlippageBasisPoints),
		"global.initial_virtual_token_reserves": DefaultInitialVirtualTokenReserves,
		"global.initial_virtual_sol_reserves":   DefaultInitialVirtualSolReserves,
		"global.initial_real_token_reserves":    DefaultInitialRealTokenReserves,
		"global.token_total_supply":             DefaultTokenTotalSupply,
		"global.fee_basis_points":               DefaultFeeBasisPoints,
		"export.format":                         DefaultExportFormat,
		"export.output_dir":                     DefaultExportDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if err := cfg.Slippage.Validate(); err != nil {
		return fmt.Errorf("invalid slippage: %w", err)
	}
	global, err := cfg.Global.Account()
	if err != nil {
		return err
	}
	if err := global.Validate(); err != nil {
		return fmt.Errorf("invalid global parameters: %w", err)
	}
	if len(cfg.Scenarios) == 0 {
		return errors.New("no scenarios configured")
	}

	seen := make(map[string]struct{}, len(cfg.Scenarios))
	for i, sc := range cfg.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario #%d has no name", i)
		}
		if _, dup := seen[sc.Name]; dup {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = struct{}{}

		if sc.Slippage != nil {
			if err := sc.Slippage.Validate(); err != nil {
				return fmt.Errorf("scenario %q: invalid slippage: %w", sc.Name, err)
			}
		}
		if sc.Curve != nil {
			if err := sc.Curve.Curve().Validate(); err != nil {
				return fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
		}
		for j, step := range sc.Steps {
			if _, err := forecast.ParseSide(step.Side); err != nil {
				return fmt.Errorf("scenario %q step %d: %w", sc.Name, j, err)
			}
		}
	}

	switch cfg.Export.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unsupported export format: %s", cfg.Export.Format)
	}
	return nil
}

// Account converts the configured parameters to a GlobalAccount.
// Empty identities are left as the zero key.
func (p GlobalParams) Account() (pumpfun.GlobalAccount, error) {
	account := pumpfun.GlobalAccount{
		Initialized:                 true,
		InitialVirtualTokenReserves: p.InitialVirtualTokenReserves,
		InitialVirtualSolReserves:   p.InitialVirtualSolReserves,
		InitialRealTokenReserves:    p.InitialRealTokenReserves,
		TokenTotalSupply:            p.TokenTotalSupply,
		FeeBasisPoints:              p.FeeBasisPoints,
	}
	var err error
	if p.Authority != "" {
		if account.Authority, err = solana.PublicKeyFromBase58(p.Authority); err != nil {
			return pumpfun.GlobalAccount{}, fmt.Errorf("invalid authority: %w", err)
		}
	}
	if p.FeeRecipient != "" {
		if account.FeeRecipient, err = solana.PublicKeyFromBase58(p.FeeRecipient); err != nil {
			return pumpfun.GlobalAccount{}, fmt.Errorf("invalid fee recipient: %w", err)
		}
	}
	return account, nil
}

func (p CurveParams) Curve() pumpfun.BondingCurve {
	return pumpfun.BondingCurve{
		VirtualTokenReserves: p.VirtualTokenReserves,
		VirtualSolReserves:   p.VirtualSolReserves,
		RealTokenReserves:    p.RealTokenReserves,
		RealSolReserves:      p.RealSolReserves,
		TokenTotalSupply:     p.TokenTotalSupply,
		Complete:             p.Complete,
	}
}

// BuildScenarios turns the configured scenarios into forecast inputs.
func (cfg *Config) BuildScenarios() ([]forecast.Scenario, error) {
	global, err := cfg.Global.Account()
	if err != nil {
		return nil, err
	}

	scenarios := make([]forecast.Scenario, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		s := forecast.Scenario{
			Name:     sc.Name,
			Global:   global,
			Slippage: cfg.Slippage,
		}
		if sc.Slippage != nil {
			s.Slippage = *sc.Slippage
		}
		if sc.Curve != nil {
			curve := sc.Curve.Curve()
			s.Curve = &curve
		}
		for _, step := range sc.Steps {
			side, err := forecast.ParseSide(step.Side)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			s.Steps = append(s.Steps, forecast.Step{Side: side, Amount: step.Amount})
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
