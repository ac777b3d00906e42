package script

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"duelgrid/server/internal/ability"
	"duelgrid/server/internal/effect"
)

// fighterHandle is a live view into one fighter slot. Reads go through the
// world on every access so a script never holds stale state or a direct
// pointer into the pair.
type fighterHandle struct {
	w     ability.World
	index int
}

// worldHandle pins the invoking tick's context so bridged calls stay on it.
type worldHandle struct {
	ctx context.Context
	w   ability.World
}

func (s *Script) fighterUserData(w ability.World, index int) *lua.LUserData {
	ud := s.state.NewUserData()
	ud.Value = fighterHandle{w: w, index: index}
	s.state.SetMetatable(ud, s.state.GetTypeMetatable(fighterTypeName))
	return ud
}

func (s *Script) worldUserData(ctx context.Context, w ability.World) *lua.LUserData {
	ud := s.state.NewUserData()
	ud.Value = worldHandle{ctx: ctx, w: w}
	s.state.SetMetatable(ud, s.state.GetTypeMetatable(worldTypeName))
	return ud
}

func checkFighter(L *lua.LState, n int) fighterHandle {
	ud := L.CheckUserData(n)
	handle, ok := ud.Value.(fighterHandle)
	if !ok {
		L.ArgError(n, "fighter handle expected")
	}
	return handle
}

func checkWorld(L *lua.LState, n int) worldHandle {
	ud := L.CheckUserData(n)
	handle, ok := ud.Value.(worldHandle)
	if !ok {
		L.ArgError(n, "world handle expected")
	}
	return handle
}

func (s *Script) registerFighterType() {
	L := s.state
	mt := L.NewTypeMetatable(fighterTypeName)
	L.SetField(mt, "__index", L.NewFunction(fighterIndex))
}

func fighterIndex(L *lua.LState) int {
	handle := checkFighter(L, 1)
	key := L.CheckString(2)
	if key == "index" {
		L.Push(lua.LNumber(handle.index))
		return 1
	}
	info, ok := handle.w.FighterInfo(handle.index)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	switch key {
	case "id":
		L.Push(lua.LString(info.ID))
	case "name":
		L.Push(lua.LString(info.Name))
	case "x":
		L.Push(lua.LNumber(info.X))
	case "y":
		L.Push(lua.LNumber(info.Y))
	case "hp":
		L.Push(lua.LNumber(info.HP))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func (s *Script) registerWorldType() {
	L := s.state
	mt := L.NewTypeMetatable(worldTypeName)
	methods := L.NewTable()
	L.SetField(methods, "apply_effects", L.NewFunction(s.luaApplyEffects))
	L.SetField(methods, "spawn_projectile", L.NewFunction(s.luaSpawnProjectile))
	L.SetField(methods, "time_freeze", L.NewFunction(luaWorldTimeFreeze))
	L.SetField(mt, "__index", methods)
}

// luaApplyEffects bridges world:apply_effects(effects, caster, target).
func (s *Script) luaApplyEffects(L *lua.LState) int {
	handle := checkWorld(L, 1)
	tbl := L.CheckTable(2)
	caster := checkFighter(L, 3)
	target := checkFighter(L, 4)

	n := tbl.Len()
	effects := make([]effect.Effect, 0, n)
	for i := 1; i <= n; i++ {
		entry := tbl.RawGetInt(i)
		ud, ok := entry.(*lua.LUserData)
		if !ok {
			L.RaiseError("apply_effects: entry %d is not an effect record, got %s", i, entry.Type())
		}
		eff, ok := ud.Value.(effect.Effect)
		if !ok {
			L.RaiseError("apply_effects: entry %d is not an effect record", i)
		}
		effects = append(effects, eff)
	}
	handle.w.ApplyEffects(handle.ctx, effects, caster.index, target.index)
	return 0
}

// luaSpawnProjectile bridges world:spawn_projectile{speed=, max_time=,
// from=vec, to=vec, shape=, tint=, on_hit=}.
func (s *Script) luaSpawnProjectile(L *lua.LState) int {
	handle := checkWorld(L, 1)
	tbl := L.CheckTable(2)

	spec := ability.ProjectileSpec{
		Speed:   rawNumber(L, tbl, "speed"),
		MaxTime: rawNumber(L, tbl, "max_time"),
	}
	spec.FromX, spec.FromY = rawVec(L, tbl, "from")
	spec.ToX, spec.ToY = rawVec(L, tbl, "to")

	if v := tbl.RawGetString("shape"); v != lua.LNil {
		ud, ok := v.(*lua.LUserData)
		if !ok {
			L.RaiseError("spawn_projectile: shape must come from circle() or square()")
		}
		shape, ok := ud.Value.(ability.Shape)
		if !ok {
			L.RaiseError("spawn_projectile: shape must come from circle() or square()")
		}
		spec.Shape = shape
	}
	if v := tbl.RawGetString("tint"); v != lua.LNil {
		spec.Tint = lua.LVAsString(v)
	}
	if v := tbl.RawGetString("on_hit"); v != lua.LNil {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			L.RaiseError("spawn_projectile: on_hit must be a function")
		}
		spec.OnHit = s.wrapHit(s.active, fn)
	}

	handle.w.SpawnProjectile(spec)
	return 0
}

func luaWorldTimeFreeze(L *lua.LState) int {
	handle := checkWorld(L, 1)
	target := checkFighter(L, 2)
	duration := float64(L.CheckNumber(3))
	handle.w.TimeFreeze(target.index, duration)
	return 0
}

func rawNumber(L *lua.LState, tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if v == lua.LNil {
		L.RaiseError("spawn_projectile: %s is required", key)
	}
	return float64(lua.LVAsNumber(v))
}

func rawVec(L *lua.LState, tbl *lua.LTable, key string) (float64, float64) {
	v := tbl.RawGetString(key)
	vecTbl, ok := v.(*lua.LTable)
	if !ok {
		L.RaiseError("spawn_projectile: %s must be a vec", key)
	}
	x := float64(lua.LVAsNumber(vecTbl.RawGetString("x")))
	y := float64(lua.LVAsNumber(vecTbl.RawGetString("y")))
	return x, y
}
