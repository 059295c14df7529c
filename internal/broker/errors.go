package broker

// BrokerError reports that broker state failed its in-good-order check,
// or that an upstream call otherwise could not be completed.
type BrokerError struct {
	Message string
}

func (e *BrokerError) Error() string {
	return e.Message
}

// PDTRuleViolation reports that the active PDT policy rejected an
// order. Reason carries the policy's decision.Reason.
type PDTRuleViolation struct {
	Reason string
}

func (e *PDTRuleViolation) Error() string {
	return e.Reason
}
