package pricing

import "github.com/erp/pricing/internal/domain/shared"

// Pricing errors. Codes are surfaced to API clients as-is.
var (
	ErrMasterBookMissing = shared.NewDomainError("MASTER_BOOK_MISSING", "No active master price book is configured")
	ErrMasterBookExists  = shared.NewDomainError("MASTER_BOOK_EXISTS", "An active master price book already exists")
	ErrUndefinedRatio    = shared.NewDomainError("UNDEFINED_RATIO", "Relative adjustment needs a non-zero existing price at the target context")
	ErrNoPriceConfigured = shared.NewDomainError("NO_PRICE_CONFIGURED", "No price is configured for the product in any applicable context")
	ErrInvalidContext    = shared.NewDomainError("INVALID_CONTEXT", "Invalid pricing context")
	ErrNegativePrice     = shared.NewDomainError("NEGATIVE_PRICE", "Price cannot be negative")
	ErrContextTaken      = shared.NewDomainError("CONTEXT_TAKEN", "An active price book already exists for this context")
	ErrInvalidStrategy   = shared.NewDomainError("INVALID_STRATEGY", "Unknown conflict resolution strategy")
)
