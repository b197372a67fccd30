package models

import (
	"time"

	"github.com/google/uuid"
)

// Currency of a simulated market.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyMXN Currency = "MXN"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyMXN:
		return true
	}
	return false
}

// Level grades market behaviour settings. Disabled is not allowed for
// thick speed.
type Level string

const (
	LevelHigh     Level = "High"
	LevelMedium   Level = "Medium"
	LevelLow      Level = "Low"
	LevelDisabled Level = "Disabled"
)

func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow, LevelDisabled:
		return true
	}
	return false
}

// ValidSpeed reports whether l is an accepted thick speed.
func (l Level) ValidSpeed() bool {
	return l.Valid() && l != LevelDisabled
}

// MarketConfig is the one-per-team market simulation setup.
type MarketConfig struct {
	ConfigID          int64
	PublicID          uuid.UUID
	TeamID            int64
	TeamPublicID      uuid.UUID
	InitialCash       float64
	Currency          Currency
	MarketVolatility  Level
	MarketLiquidity   Level
	ThickSpeed        Level
	TransactionFee    Level
	EventFrequency    Level
	DividendImpact    Level
	CrashImpact       Level
	AllowShortSelling bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MarketConfigPatch carries a partial update; nil means unchanged.
type MarketConfigPatch struct {
	InitialCash       *float64
	Currency          *Currency
	MarketVolatility  *Level
	MarketLiquidity   *Level
	ThickSpeed        *Level
	TransactionFee    *Level
	EventFrequency    *Level
	DividendImpact    *Level
	CrashImpact       *Level
	AllowShortSelling *bool
}

// Apply copies the set fields of p onto c.
func (p MarketConfigPatch) Apply(c *MarketConfig) {
	if p.InitialCash != nil {
		c.InitialCash = *p.InitialCash
	}
	if p.Currency != nil {
		c.Currency = *p.Currency
	}
	if p.MarketVolatility != nil {
		c.MarketVolatility = *p.MarketVolatility
	}
	if p.MarketLiquidity != nil {
		c.MarketLiquidity = *p.MarketLiquidity
	}
	if p.ThickSpeed != nil {
		c.ThickSpeed = *p.ThickSpeed
	}
	if p.TransactionFee != nil {
		c.TransactionFee = *p.TransactionFee
	}
	if p.EventFrequency != nil {
		c.EventFrequency = *p.EventFrequency
	}
	if p.DividendImpact != nil {
		c.DividendImpact = *p.DividendImpact
	}
	if p.CrashImpact != nil {
		c.CrashImpact = *p.CrashImpact
	}
	if p.AllowShortSelling != nil {
		c.AllowShortSelling = *p.AllowShortSelling
	}
}
