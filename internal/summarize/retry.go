package summarize

import "time"

// RetryPolicy bounds repeated attempts of a failing operation. The sleep
// function is injectable so tests can observe delays without waiting.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// NewRetryPolicy builds a policy from the configured retry count and the delay
// between attempts expressed in seconds.
func NewRetryPolicy(maxAttempts int, delaySeconds int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       time.Duration(delaySeconds) * time.Second,
	}
}

// Do runs the operation until it succeeds or the attempt budget is exhausted,
// sleeping the configured delay between attempts. The error of the final
// attempt is returned.
func (policy RetryPolicy) Do(operation func() error) error {
	sleepFunction := policy.Sleep
	if sleepFunction == nil {
		sleepFunction = time.Sleep
	}
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastError error
	for attemptIndex := 0; attemptIndex < maxAttempts; attemptIndex++ {
		if attemptIndex > 0 {
			sleepFunction(policy.Delay)
		}
		lastError = operation()
		if lastError == nil {
			return nil
		}
	}
	return lastError
}
