package script

import (
	"context"
	"errors"

	"duelgrid/server/internal/ability"
	"duelgrid/server/logging"
	logscripts "duelgrid/server/logging/scripts"
)

// Loader manages the ability set for one fighter slot across reloads. A
// failed reload of any class leaves the previously accepted set in place;
// adoption is all or nothing.
type Loader struct {
	opts   Options
	pub    logging.Publisher
	script *Script
}

func NewLoader(pub logging.Publisher, opts Options) *Loader {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Loader{opts: opts.normalized(), pub: pub}
}

// Reload compiles source and swaps the loaded ability set atomically. On
// failure the previous set stays loaded and the typed error is returned
// after being reported.
func (l *Loader) Reload(ctx context.Context, tick uint64, source string) error {
	compiled, err := Compile(source, l.opts)
	if err != nil {
		l.report(ctx, tick, err)
		return err
	}
	if l.script != nil {
		l.script.Close()
	}
	l.script = compiled

	names := make([]string, 0, len(compiled.defs))
	for _, def := range compiled.defs {
		names = append(names, def.Name)
	}
	logscripts.Loaded(ctx, l.pub, tick, l.entityRef(), logscripts.LoadedPayload{
		Script:    l.opts.Name,
		Abilities: names,
	}, nil)
	return nil
}

func (l *Loader) report(ctx context.Context, tick uint64, err error) {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		logscripts.CompileFailed(ctx, l.pub, tick, l.entityRef(), logscripts.CompileFailedPayload{
			Script: l.opts.Name,
			Error:  compileErr.Err.Error(),
		}, nil)
		return
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		logscripts.LoadRejected(ctx, l.pub, tick, l.entityRef(), logscripts.LoadRejectedPayload{
			Script:  l.opts.Name,
			Ability: loadErr.Ability,
			Error:   loadErr.Err.Error(),
		}, nil)
	}
}

func (l *Loader) entityRef() logging.EntityRef {
	return logging.EntityRef{ID: l.opts.Name, Kind: logging.EntityKindScript}
}

// Loaded reports whether any ability set has ever been accepted. A battle
// cannot start for a slot that never loaded.
func (l *Loader) Loaded() bool {
	return l != nil && l.script != nil
}

// Abilities returns the last accepted definitions in declaration order.
func (l *Loader) Abilities() []ability.Definition {
	if l == nil || l.script == nil {
		return nil
	}
	return l.script.Abilities()
}

// Close releases the underlying Lua state.
func (l *Loader) Close() {
	if l == nil || l.script == nil {
		return
	}
	l.script.Close()
	l.script = nil
}
