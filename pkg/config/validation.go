package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

// RequiredKeys must appear in every config file. Everything else has a default.
var RequiredKeys = []string{
	"initial_bank",
	"rsi_periods",
	"rsi_ema",
	"buy_rsi_1",
	"buy_rsi_2",
	"buy_rsi_3",
	"first_tp_perc",
	"sec_tp_perc",
	"sl_perc",
	"rsi_value_1",
	"rsi_value_2",
}

var boolKeys = map[string]bool{"rsi_ema": true, "martingale": true, "log_every_step": true}
var intKeys = map[string]bool{"rsi_periods": true, "qty_precision": true}

// ConfigValidator checks decoded documents and finished configs.
type ConfigValidator struct {
	validate *validator.Validate
}

// NewConfigValidator creates a validator that reports fields by their file key.
func NewConfigValidator() *ConfigValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ConfigValidator{validate: v}
}

// CheckRaw verifies that every required key is present and that typed keys
// hold the right kind of value.
func (cv *ConfigValidator) CheckRaw(raw map[string]interface{}) error {
	for _, key := range RequiredKeys {
		if _, ok := raw[key]; !ok {
			return keyError(key, fmt.Sprintf("missing required key %s", key))
		}
	}
	for key, val := range raw {
		if err := checkKind(key, val); err != nil {
			return err
		}
	}
	return nil
}

func checkKind(key string, val interface{}) error {
	isRequired := false
	for _, k := range RequiredKeys {
		if k == key {
			isRequired = true
			break
		}
	}

	switch {
	case boolKeys[key]:
		if _, ok := val.(bool); !ok {
			return keyError(key, fmt.Sprintf("key %s must be true or false, got %v", key, val))
		}
	case intKeys[key]:
		f, ok := number(val)
		if !ok || f != float64(int64(f)) {
			return keyError(key, fmt.Sprintf("key %s must be an integer, got %v", key, val))
		}
	case isRequired || key == "fee_rate":
		if _, ok := number(val); !ok {
			return keyError(key, fmt.Sprintf("key %s must be numeric, got %v", key, val))
		}
	}
	return nil
}

func number(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Validate applies the struct tag rules.
func (cv *ConfigValidator) Validate(cfg *AppConfig) error {
	err := cv.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return keyError(fe.Field(), fmt.Sprintf("key %s fails %s=%s (value %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return boterrors.WrapError(err, boterrors.ErrorCategoryConfiguration, "config", "validate")
}

func keyError(key, msg string) error {
	return boterrors.NewConfigurationError("config", "validate", msg).WithContext("key", key)
}
