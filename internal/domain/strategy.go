package domain

import "time"

// PromptAfter is how long after a disconnect a resume needs the interactive prompt.
const PromptAfter = 24 * time.Hour

type ReconnectStrategy string

const (
	StrategyAlreadyAuthenticated ReconnectStrategy = "already_authenticated"
	StrategyFreshConnect         ReconnectStrategy = "fresh_connect"
	StrategySilentResume         ReconnectStrategy = "silent_resume"
	StrategyPromptedResume       ReconnectStrategy = "prompted_resume"
)

func DecideStrategy(authenticated bool, lastDisconnect *time.Time, now time.Time) ReconnectStrategy {
	if authenticated {
		return StrategyAlreadyAuthenticated
	}
	if lastDisconnect == nil || lastDisconnect.IsZero() {
		return StrategyFreshConnect
	}
	if now.Sub(*lastDisconnect) > PromptAfter {
		return StrategyPromptedResume
	}

	return StrategySilentResume
}

// Interactive reports whether the strategy needs the provider's selection prompt.
func (s ReconnectStrategy) Interactive() bool {
	return s == StrategyPromptedResume
}

// NeedsProviderCall is false only when an authenticated session can be adopted as is.
func (s ReconnectStrategy) NeedsProviderCall() bool {
	return s != StrategyAlreadyAuthenticated
}
