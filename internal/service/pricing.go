package service

import (
	"github.com/botwall-io/botwall/internal/models"
)

// PricingPolicy turns classified traffic into estimated revenue for a
// site. Implementations must return 0 for sites that have monetization
// disabled.
type PricingPolicy interface {
	// EventRevenue returns the revenue attributed to a single request.
	EventRevenue(site *models.Site, event *models.BotRequest) float64

	// BotRevenue returns the revenue attributed to botCount bot
	// requests over an aggregation window.
	BotRevenue(site *models.Site, botCount int64) float64
}

// FlatRate charges a fixed amount per bot request.
type FlatRate struct {
	PerBotRequest float64
}

func NewFlatRate(perBotRequest float64) *FlatRate {
	return &FlatRate{PerBotRequest: perBotRequest}
}

func (p *FlatRate) EventRevenue(site *models.Site, event *models.BotRequest) float64 {
	if site == nil || !site.MonetizationEnabled {
		return 0
	}
	if event == nil || !event.IsBot() {
		return 0
	}
	return p.PerBotRequest
}

func (p *FlatRate) BotRevenue(site *models.Site, botCount int64) float64 {
	if site == nil || !site.MonetizationEnabled || botCount <= 0 {
		return 0
	}
	return p.PerBotRequest * float64(botCount)
}
