package guard

import (
	"errors"

	"github.com/commission-api/internal/domain"
)

var reasons = []struct {
	err  error
	code string
}{
	{domain.ErrQuotaExceeded, "quota_exceeded"},
	{domain.ErrRateLimited, "rate_limited"},
	{domain.ErrOfferFull, "offer_full"},
	{domain.ErrOfferClosed, "offer_closed"},
	{domain.ErrUserQuotaExceeded, "user_quota_exceeded"},
	{domain.ErrInvalidRange, "invalid_range"},
	{domain.ErrInvalidConfiguration, "invalid_configuration"},
}

// Reason returns the machine code of a guard rejection, or "" for any other error.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return ""
}

func reason(err error) string {
	if r := Reason(err); r != "" {
		return r
	}
	return "other"
}
