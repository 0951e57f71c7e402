package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/draftsim/internal/domain/types"
)

// Environment conventions.
const (
	EnvPrefix     = "DRAFTSIM_"
	EnvConfigFile = "DRAFTSIM_CONFIG"
)

// listKeys are comma separated when supplied through the environment.
var listKeys = map[string]struct{}{
	"first_round_order": {},
	"waiver_order":      {},
	"lottery_priority":  {},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DRAFTSIM_CONFIG is set
//  3. env (prefix DRAFTSIM_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DRAFTSIM_QUEUE_SIZE -> queue_size, DRAFTSIM_WEIGHTS__VOTE -> weights.vote
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "config" {
			return "", nil
		}
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Slices decode in place; clear them so a shorter list does not keep
	// trailing defaults.
	cfg := *base
	for key, dst := range map[string]*[]string{
		"first_round_order": &cfg.FirstRoundOrder,
		"waiver_order":      &cfg.WaiverOrder,
		"lottery_priority":  &cfg.LotteryPriority,
	} {
		if k.Exists(key) {
			*dst = nil
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func Validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
	})
	_ = v.RegisterValidation("team", func(fl validator.FieldLevel) bool {
		return types.Valid(fl.Field().String())
	})

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s must satisfy %q", ErrInvalidConfig, strings.TrimPrefix(verrs[0].Namespace(), "Config."), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if len(cfg.FirstRoundOrder) != len(cfg.WaiverOrder) {
		return fmt.Errorf("%w: %w (%d != %d)",
			ErrInvalidConfig, ErrOrderMismatch, len(cfg.FirstRoundOrder), len(cfg.WaiverOrder))
	}
	if cfg.VoteSource == VoteSourceRemote && cfg.Remote.BaseURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrRemoteBaseURL)
	}
	if cfg.DevelopmentFrom > cfg.Rounds {
		return fmt.Errorf("%w: development_from (%d) exceeds rounds (%d)", ErrInvalidConfig, cfg.DevelopmentFrom, cfg.Rounds)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
