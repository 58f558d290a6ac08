package outreach

import "fmt"

// DeliveryError wraps a transport failure while sending the initial message.
// No attempt is registered when it is returned.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// EscalationError wraps a calling vendor failure. Stage is "update" or
// "call"; an update failure means the call was never attempted.
type EscalationError struct {
	Stage string
	Err   error
}

func (e *EscalationError) Error() string {
	return fmt.Sprintf("call escalation failed at %s: %v", e.Stage, e.Err)
}

func (e *EscalationError) Unwrap() error {
	return e.Err
}
