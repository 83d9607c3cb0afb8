// Package quota implements the free-application accounting rule that gates
// creation of application records.
//
// The rule is pure: callers load the account state under a row lock, ask for a
// Grant, create exactly Grant.Create records and apply Grant.Debit to the
// remaining counter in the same transaction.
package quota

import (
	apperrors "jiffyapply/internal/errors"
)

// DefaultFreeApplications is the quota a new user starts with.
const DefaultFreeApplications = 50

// Account is the slice of user state the rule needs.
type Account struct {
	Remaining  int
	Subscribed bool
}

// Grant is the outcome of a permitted creation request.
type Grant struct {
	// Create is how many of the requested records may be created, taken from the front of the request.
	Create int
	// Debit is how much to subtract from the free counter. Always zero under an active subscription.
	Debit int
	// Remaining is the free counter after the debit.
	Remaining int
	// RequiresSubscription tells the caller to present a subscription offer.
	RequiresSubscription bool
}

// Plan decides how many of requested new applications the account may create.
// It fails with ErrNoApplicationsRemaining when nothing can be created.
func Plan(acct Account, requested int) (Grant, error) {
	if requested <= 0 {
		return Grant{}, apperrors.New(apperrors.ErrValidation, "at least one application is required")
	}

	remaining := max(acct.Remaining, 0)

	if acct.Subscribed {
		return Grant{
			Create:    requested,
			Remaining: remaining,
		}, nil
	}

	available := min(requested, remaining)
	if available == 0 {
		return Grant{}, apperrors.ErrNoApplicationsRemaining
	}

	left := remaining - available
	return Grant{
		Create:               available,
		Debit:                available,
		Remaining:            left,
		RequiresSubscription: left <= 0,
	}, nil
}
