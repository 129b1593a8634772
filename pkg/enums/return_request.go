package enums

import "fmt"

// ReturnReason is the customer-selected reason for a return.
type ReturnReason string

const (
	ReturnReasonDamaged   ReturnReason = "Damaged"
	ReturnReasonWrongItem ReturnReason = "Wrong Item"
	ReturnReasonSizeIssue ReturnReason = "Size Issue"
	ReturnReasonOther     ReturnReason = "Other"
)

var validReturnReasons = []ReturnReason{
	ReturnReasonDamaged,
	ReturnReasonWrongItem,
	ReturnReasonSizeIssue,
	ReturnReasonOther,
}

// String implements fmt.Stringer.
func (v ReturnReason) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ReturnReason.
func (v ReturnReason) IsValid() bool {
	for _, candidate := range validReturnReasons {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseReturnReason converts raw input into a ReturnReason.
func ParseReturnReason(value string) (ReturnReason, error) {
	for _, candidate := range validReturnReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return reason %q", value)
}

// ReturnStatus is the review state of a return request.
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusCompleted,
}

// String implements fmt.Stringer.
func (v ReturnStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ReturnStatus.
func (v ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}
