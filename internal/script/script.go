// Package script compiles author-supplied Lua ability scripts into validated
// ability definitions. A chunk runs against a fixed capability API and must
// return a sequence of ability records; its on_cast/on_hit callbacks are
// later invoked synchronously from inside the simulation tick.
package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"duelgrid/server/internal/ability"
)

// DefaultBudget bounds a single script invocation (the load call or one
// callback) when the caller does not configure one.
const DefaultBudget = 50 * time.Millisecond

// RandFunc returns a value in [min, max). The world injects its seeded
// generator here so script output stays deterministic per seed.
type RandFunc func(min, max float64) float64

// Options configure a compiled script.
type Options struct {
	// Name identifies the script in errors and log events.
	Name string
	// Budget is the wall-time allowance per invocation; 0 means
	// DefaultBudget, negative disables the limit.
	Budget time.Duration
	// Rand backs the rand utility exposed to the script.
	Rand RandFunc
}

func (o Options) normalized() Options {
	if o.Name == "" {
		o.Name = "anonymous"
	}
	if o.Budget == 0 {
		o.Budget = DefaultBudget
	}
	return o
}

// Script owns a long-lived Lua state holding the compiled chunk and every
// callback closure the chunk produced. The simulation is single-threaded, so
// the state is never entered concurrently. Close releases it; callbacks from
// a closed script must not run.
type Script struct {
	opts  Options
	state *lua.LState
	defs  []ability.Definition

	// active names the ability whose on_cast is currently running, so
	// projectiles spawned inside it can attribute their on_hit faults.
	active string
}

// Compile turns source text into a loaded ability set, or fails with a
// *CompileError (text does not parse) or *LoadError (chunk misbehaves).
func Compile(source string, opts Options) (*Script, error) {
	opts = opts.normalized()
	s := &Script{
		opts:  opts,
		state: lua.NewState(lua.Options{SkipOpenLibs: true}),
	}
	if err := s.openLibraries(); err != nil {
		s.Close()
		return nil, &LoadError{Script: opts.Name, Err: err}
	}
	s.registerAPI()

	chunk, err := s.state.LoadString(source)
	if err != nil {
		s.Close()
		return nil, &CompileError{Script: opts.Name, Err: err}
	}

	ret, err := s.call(context.Background(), chunk)
	if err != nil {
		s.Close()
		return nil, &LoadError{Script: opts.Name, Err: err}
	}
	defs, err := s.collectAbilities(ret)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.defs = defs
	return s, nil
}

// openLibraries loads the safe subset of the standard libraries and strips
// the escape hatches the base library carries.
func (s *Script) openLibraries() error {
	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	}
	for _, lib := range libs {
		if err := s.state.CallByParam(lua.P{
			Fn:      s.state.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s library: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "loadstring", "load", "require", "collectgarbage", "print"} {
		s.state.SetGlobal(name, lua.LNil)
	}
	return nil
}

// call runs a Lua function under the execution budget and returns its first
// result. The budget nests inside the caller's context, so a cancelled tick
// also aborts the invocation.
func (s *Script) call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.opts.Budget > 0 {
		budgeted, cancel := context.WithTimeout(ctx, s.opts.Budget)
		s.state.SetContext(budgeted)
		defer func() {
			cancel()
			s.state.RemoveContext()
		}()
	}
	if err := s.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	return ret, nil
}

// collectAbilities checks that the chunk returned a sequence of ability
// records and normalizes each one in order. An empty sequence is a valid
// load: an ability-less fighter still moves and mitigates. Scalar defaults
// were already filled by the ability factory, which can tell absent fields
// from authored zeros.
func (s *Script) collectAbilities(ret lua.LValue) ([]ability.Definition, error) {
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, &LoadError{Script: s.opts.Name, Err: fmt.Errorf("script must return a sequence of abilities, got %s", ret.Type())}
	}
	n := tbl.Len()
	defs := make([]ability.Definition, 0, n)
	for i := 1; i <= n; i++ {
		entry := tbl.RawGetInt(i)
		ud, ok := entry.(*lua.LUserData)
		if !ok {
			return nil, &LoadError{Script: s.opts.Name, Err: fmt.Errorf("entry %d is not an ability record, got %s", i, entry.Type())}
		}
		recorded, ok := ud.Value.(*ability.Definition)
		if !ok {
			return nil, &LoadError{Script: s.opts.Name, Err: fmt.Errorf("entry %d is not an ability record", i)}
		}
		def, err := ability.Normalize(*recorded)
		if err != nil {
			return nil, &LoadError{Script: s.opts.Name, Ability: recorded.Name, Err: err}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Abilities returns the loaded definitions in declaration order.
func (s *Script) Abilities() []ability.Definition {
	if s == nil {
		return nil
	}
	out := make([]ability.Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Name returns the script's diagnostic identity.
func (s *Script) Name() string {
	if s == nil {
		return ""
	}
	return s.opts.Name
}

// Close releases the Lua state. Callbacks captured from this script become
// invalid.
func (s *Script) Close() {
	if s == nil || s.state == nil {
		return
	}
	s.state.Close()
	s.state = nil
}

// wrapCast adapts a Lua on_cast function into an ability callback. The
// callback receives (self, target, world) handles and runs under the budget;
// a raise or budget overrun surfaces as a *CallbackError.
func (s *Script) wrapCast(abilityName string, fn *lua.LFunction) ability.CastFunc {
	return func(ctx context.Context, w ability.World, caster, target int) error {
		prev := s.active
		s.active = abilityName
		defer func() { s.active = prev }()
		wud := s.worldUserData(ctx, w)
		_, err := s.call(ctx, fn, s.fighterUserData(w, caster), s.fighterUserData(w, target), wud)
		if err != nil {
			return &CallbackError{Script: s.opts.Name, Ability: abilityName, Callback: "on_cast", Err: err}
		}
		return nil
	}
}

// wrapHit adapts a Lua on_hit function into a projectile callback.
func (s *Script) wrapHit(abilityName string, fn *lua.LFunction) ability.HitFunc {
	return func(ctx context.Context, w ability.World, target int) error {
		wud := s.worldUserData(ctx, w)
		_, err := s.call(ctx, fn, s.fighterUserData(w, target), wud)
		if err != nil {
			return &CallbackError{Script: s.opts.Name, Ability: abilityName, Callback: "on_hit", Err: err}
		}
		return nil
	}
}
