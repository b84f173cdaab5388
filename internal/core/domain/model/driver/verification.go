package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// VerificationStatus is the KYC state of a driver.
type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationUnderReview VerificationStatus = "under_review"
	VerificationVerified    VerificationStatus = "verified"
	VerificationRejected    VerificationStatus = "rejected"
)

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	v := VerificationStatus(s)
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v VerificationStatus) Validate() error {
	switch v {
	case VerificationPending, VerificationUnderReview, VerificationVerified, VerificationRejected:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("verificationStatus", fmt.Errorf("%q is not a valid verification status", string(v)))
	}
}

func (v VerificationStatus) String() string {
	return string(v)
}
