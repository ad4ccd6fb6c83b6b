package normalizer

import "github.com/ginjaninja78/payables-dashboard/internal/types"

// ClassifyStatus derives the lifecycle status from which dates parsed.
//
//	request  approval  payment  -> status
//	false    any       any      -> ""
//	true     false     false    -> "1"
//	true     true      false    -> "2"
//	true     true      true     -> "3"
//	true     false     true     -> "" and anomaly
//
// The last combination has no defined status; it is reported, not guessed.
func ClassifyStatus(hasPaymentRequest, hasApproval, hasPayment bool) (status types.Status, anomaly bool) {
	switch {
	case !hasPaymentRequest:
		return types.StatusIndeterminate, false
	case !hasApproval && !hasPayment:
		return types.StatusRequested, false
	case hasApproval && !hasPayment:
		return types.StatusApproved, false
	case hasApproval && hasPayment:
		return types.StatusPaid, false
	}
	return types.StatusIndeterminate, true
}
