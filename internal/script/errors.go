package script

import "fmt"

// CompileError reports source text that could not be turned into an
// invocable chunk. Nothing was executed; the previous ability set stays
// loaded.
type CompileError struct {
	Script string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("script %s: compile failed: %v", e.Script, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LoadError reports a chunk that compiled but did not produce a valid
// ability sequence: the invocation raised, returned something other than a
// sequence, a produced ability failed validation, or the execution budget
// was exceeded. The whole batch is rejected and the previous ability set
// stays loaded.
type LoadError struct {
	Script  string
	Ability string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Ability != "" {
		return fmt.Sprintf("script %s: ability %q rejected: %v", e.Script, e.Ability, e.Err)
	}
	return fmt.Sprintf("script %s: load rejected: %v", e.Script, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CallbackError reports a scripted on_cast or on_hit callback that raised
// during a running tick. The engine does not recover from it.
type CallbackError struct {
	Script   string
	Ability  string
	Callback string
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("script %s: ability %q: %s raised: %v", e.Script, e.Ability, e.Callback, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
