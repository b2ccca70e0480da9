package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TaxPolicy bounds what a guild may configure and seeds new guilds.
type TaxPolicy struct {
	Defaults       RateDefaults
	MaxCountryRate decimal.Decimal
	MaxCompanyRate decimal.Decimal
}

type taxPolicyFile struct {
	Defaults struct {
		Server  float64 `mapstructure:"server"`
		Country float64 `mapstructure:"country"`
		Company float64 `mapstructure:"company"`
	} `mapstructure:"defaults"`
	MaxCountryRate float64 `mapstructure:"maxCountryRate"`
	MaxCompanyRate float64 `mapstructure:"maxCompanyRate"`
}

func (f taxPolicyFile) toPolicy() TaxPolicy {
	return TaxPolicy{
		Defaults: RateDefaults{
			Server:  decimal.NewFromFloat(f.Defaults.Server),
			Country: decimal.NewFromFloat(f.Defaults.Country),
			Company: decimal.NewFromFloat(f.Defaults.Company),
		},
		MaxCountryRate: decimal.NewFromFloat(f.MaxCountryRate),
		MaxCompanyRate: decimal.NewFromFloat(f.MaxCompanyRate),
	}
}

type TaxPolicyHolder struct {
	current atomic.Value // holds TaxPolicy
}

// NewStaticTaxPolicyHolder returns a holder that never reloads.
func NewStaticTaxPolicyHolder(policy TaxPolicy) *TaxPolicyHolder {
	holder := &TaxPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

// NewTaxPolicyHolder reads taxpolicy.yml (or cfg.TaxPolicyPath) and watches it
// for changes. Without a file the env defaults apply.
func NewTaxPolicyHolder(cfg Config, log *zap.Logger) (*TaxPolicyHolder, error) {
	log = log.Named("config.taxpolicy")
	v := viper.New()

	if cfg.TaxPolicyPath != "" {
		v.SetConfigFile(cfg.TaxPolicyPath)
	} else {
		v.SetConfigName("taxpolicy")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/civitas")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CIVITAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("taxes.defaults.server", cfg.DefaultRates.Server.InexactFloat64())
	v.SetDefault("taxes.defaults.country", cfg.DefaultRates.Country.InexactFloat64())
	v.SetDefault("taxes.defaults.company", cfg.DefaultRates.Company.InexactFloat64())
	v.SetDefault("taxes.maxCountryRate", 1.0)
	v.SetDefault("taxes.maxCompanyRate", 1.0)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		watch = false
	}

	policy, err := decodeTaxPolicy(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticTaxPolicyHolder(policy)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeTaxPolicy(v)
			if err != nil {
				log.Warn("invalid tax policy ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("tax policy reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *TaxPolicyHolder) Get() TaxPolicy {
	return h.current.Load().(TaxPolicy)
}

func decodeTaxPolicy(v *viper.Viper) (TaxPolicy, error) {
	var raw taxPolicyFile
	if err := v.UnmarshalKey("taxes", &raw); err != nil {
		return TaxPolicy{}, err
	}
	policy := raw.toPolicy()
	if err := ValidateTaxPolicy(policy); err != nil {
		return TaxPolicy{}, err
	}
	return policy, nil
}

func ValidateTaxPolicy(p TaxPolicy) error {
	rates := map[string]decimal.Decimal{
		"taxes.defaults.server":  p.Defaults.Server,
		"taxes.defaults.country": p.Defaults.Country,
		"taxes.defaults.company": p.Defaults.Company,
		"taxes.maxCountryRate":   p.MaxCountryRate,
		"taxes.maxCompanyRate":   p.MaxCompanyRate,
	}
	for key, rate := range rates {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be within [0,1], got %s", key, rate)
		}
	}
	if p.Defaults.Country.GreaterThan(p.MaxCountryRate) {
		return errors.New("taxes.defaults.country exceeds taxes.maxCountryRate")
	}
	if p.Defaults.Company.GreaterThan(p.MaxCompanyRate) {
		return errors.New("taxes.defaults.company exceeds taxes.maxCompanyRate")
	}
	return nil
}
