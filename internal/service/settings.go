package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

// Pricing is the configuration an order operation runs with.
type Pricing struct {
	TaxPercentage           decimal.Decimal
	ServiceChargePercentage decimal.Decimal
	AutoDeductInventory     bool
}

// SettingsStore reads the key/value settings table.
// Satisfied by *database.Queries.
type SettingsStore interface {
	ListSettings(ctx context.Context, keys []string) ([]database.Setting, error)
}

// Settings resolves Pricing from the settings table, falling back to the
// process configuration for keys that are absent or unparsable. Percentages
// are snapshotted onto each order at creation; the auto-deduct flag is read
// on every call.
type Settings struct {
	defaults Pricing
}

func NewSettings(defaults Pricing) *Settings {
	return &Settings{defaults: defaults}
}

var settingKeys = []string{
	enum.SettingTaxPercentage,
	enum.SettingServiceChargePercentage,
	enum.SettingAutoDeductInventory,
}

func (s *Settings) Load(ctx context.Context, store SettingsStore) (Pricing, error) {
	rows, err := store.ListSettings(ctx, settingKeys)
	if err != nil {
		return Pricing{}, fmt.Errorf("load settings: %w", err)
	}

	p := s.defaults
	for _, row := range rows {
		v := strings.TrimSpace(row.SettingValue)
		switch row.SettingKey {
		case enum.SettingTaxPercentage:
			if d, err := decimal.NewFromString(v); err == nil && validPercentage(d) {
				p.TaxPercentage = d
			}
		case enum.SettingServiceChargePercentage:
			if d, err := decimal.NewFromString(v); err == nil && validPercentage(d) {
				p.ServiceChargePercentage = d
			}
		case enum.SettingAutoDeductInventory:
			if b, ok := parseFlag(v); ok {
				p.AutoDeductInventory = b
			}
		}
	}
	return p, nil
}

func validPercentage(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func parseFlag(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
