package domain

import "fmt"

// StageError is returned by a stage backend call. It never escapes the retry
// controller: the controller either retries or converts it to a terminal
// failed item.
type StageError struct {
	ItemID ItemID
	Stage  StageName
	Cause  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("item %d: %s: %v", e.ItemID, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// ConfigError reports invalid constructor or configuration arguments. It is
// fatal and surfaced to the caller at setup time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
