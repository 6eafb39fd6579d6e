package payment

import (
	"strings"

	"github.com/greetingsmith/backend/internal/infrastructure/config"
)

// Placeholder values shipped in example environments. They count as unset.
const (
	placeholderSecretKey     = "sk_test_placeholder"
	placeholderPriceID       = "price_placeholder"
	placeholderWebhookSecret = "whsec_placeholder"
)

func isSet(value, placeholder string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != placeholder
}

// hasSecretKey reports whether API calls can be made at all
func hasSecretKey(cfg config.StripeConfig) bool {
	return isSet(cfg.SecretKey, placeholderSecretKey)
}

// hasPrice reports whether a line item can be built: a real price id, or a
// positive inline unit amount.
func hasPrice(cfg config.StripeConfig) bool {
	return isSet(cfg.PriceID, placeholderPriceID) || cfg.UnitAmount.IsPositive()
}

// hasWebhookSecret reports whether webhook signatures can be checked
func hasWebhookSecret(cfg config.StripeConfig) bool {
	return isSet(cfg.WebhookSecret, placeholderWebhookSecret)
}

// unitAmountMinor converts the configured decimal price to minor units (øre, cents).
func unitAmountMinor(cfg config.StripeConfig) int64 {
	return cfg.UnitAmount.Shift(2).Round(0).IntPart()
}
