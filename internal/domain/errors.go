package domain

import "errors"

var (
	// ErrInvalidSettingValue is returned for trait values outside 0..7.
	ErrInvalidSettingValue = errors.New("invalid setting value")
	// ErrTierNotAllowed is returned when a paid-tier trait is applied to a
	// profile without the paid flag. Callers skip the setting.
	ErrTierNotAllowed = errors.New("trait not allowed for this tier")
	ErrUnknownTrait   = errors.New("unknown trait")
	ErrUnknownGender  = errors.New("unknown ai gender")

	// ErrStoreUnavailable wraps any transport or storage failure of a
	// SessionStore. The current turn is aborted.
	ErrStoreUnavailable = errors.New("session store unavailable")

	ErrGenerationFailure = errors.New("generation failed")

	ErrDeliveryFailure = errors.New("delivery failed")
	// ErrDeliveryUnauthorized marks authentication or signature failures
	// reported by the delivery channel. These are never retried.
	ErrDeliveryUnauthorized = errors.New("delivery unauthorized")
	// ErrDeliveryRejected marks a request the channel refused as invalid,
	// e.g. an expired reply token. Repeating it cannot succeed.
	ErrDeliveryRejected = errors.New("delivery rejected")
)
