package domain

// PolicyDecision is the verdict of the device-reuse policy for a submission.
type PolicyDecision int

const (
	// PolicyAllowSilently accepts the submission without any signal.
	PolicyAllowSilently PolicyDecision = iota
	// PolicyAllowAndFlag accepts the submission and raises an audit alert.
	PolicyAllowAndFlag
	// PolicyBlock rejects the submission outright.
	PolicyBlock
)

// ReusePolicy decides how a submission whose fingerprint is already bound to
// a different attendee should be handled. It is injected into the verifier so
// the block/flag choice is swappable without touching the submission flow.
type ReusePolicy func(reused bool) PolicyDecision

// DefaultReusePolicy flags reuse for operator review but never blocks:
// shared or identically configured devices make hard lockouts too
// false-positive prone.
func DefaultReusePolicy(reused bool) PolicyDecision {
	if reused {
		return PolicyAllowAndFlag
	}
	return PolicyAllowSilently
}

// ReusePolicyByName resolves a configured policy name. Unknown names fall
// back to the default flagging policy.
func ReusePolicyByName(name string) ReusePolicy {
	switch name {
	case "block":
		return func(reused bool) PolicyDecision {
			if reused {
				return PolicyBlock
			}
			return PolicyAllowSilently
		}
	case "silent":
		return func(bool) PolicyDecision { return PolicyAllowSilently }
	default:
		return DefaultReusePolicy
	}
}
