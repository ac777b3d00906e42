package script

import (
	"math/rand"

	lua "github.com/yuin/gopher-lua"

	"duelgrid/server/internal/ability"
	"duelgrid/server/internal/effect"
)

const (
	abilityTypeName    = "ability"
	effectTypeName     = "effect"
	shapeTypeName      = "shape"
	fighterTypeName    = "fighter"
	worldTypeName      = "world"
	projectileTypeName = "projectile"
)

// Palette maps the color names scripts may use for projectile tints.
var Palette = map[string]string{
	"white":   "#ffffff",
	"black":   "#000000",
	"red":     "#e53935",
	"green":   "#43a047",
	"blue":    "#1e88e5",
	"yellow":  "#fdd835",
	"orange":  "#fb8c00",
	"purple":  "#8e24aa",
	"cyan":    "#00acc1",
	"magenta": "#d81b60",
	"gray":    "#757575",
}

// registerAPI installs the full capability surface as globals. Nothing else
// is reachable from script code.
func (s *Script) registerAPI() {
	L := s.state

	L.NewTypeMetatable(abilityTypeName)
	L.NewTypeMetatable(effectTypeName)
	L.NewTypeMetatable(shapeTypeName)
	s.registerFighterType()
	s.registerWorldType()

	L.SetGlobal("ability", L.NewFunction(s.luaAbility))
	L.SetGlobal("damage", L.NewFunction(s.luaDamage))
	L.SetGlobal("damage_over_time", L.NewFunction(s.luaDamageOverTime))
	L.SetGlobal("immunity", L.NewFunction(s.luaImmunity))
	L.SetGlobal("time_freeze", L.NewFunction(s.luaTimeFreeze))
	L.SetGlobal("knockback", L.NewFunction(s.luaKnockback))
	L.SetGlobal("circle", L.NewFunction(s.luaCircle))
	L.SetGlobal("square", L.NewFunction(s.luaSquare))
	L.SetGlobal("clamp", L.NewFunction(luaClamp))
	L.SetGlobal("rand", L.NewFunction(s.luaRand))
	L.SetGlobal("vec", L.NewFunction(luaVec))

	colors := L.NewTable()
	for name, hex := range Palette {
		L.SetField(colors, name, lua.LString(hex))
	}
	L.SetGlobal("colors", colors)
}

// luaAbility is the ability{...} factory. Omitted optional fields take the
// documented defaults; the record is validated when the chunk's return value
// is collected.
func (s *Script) luaAbility(L *lua.LState) int {
	tbl := L.CheckTable(1)

	name := tbl.RawGetString("name")
	if name == lua.LNil {
		L.ArgError(1, "ability requires a name")
	}
	def := &ability.Definition{Name: lua.LVAsString(name)}

	if v := tbl.RawGetString("type"); v != lua.LNil {
		def.Type = ability.Type(lua.LVAsString(v))
	} else {
		def.Type = ability.DefaultType
	}
	if v := tbl.RawGetString("cooldown"); v != lua.LNil {
		def.Cooldown = float64(lua.LVAsNumber(v))
	} else {
		def.Cooldown = ability.DefaultCooldown
	}
	if v := tbl.RawGetString("range"); v != lua.LNil {
		def.Range = float64(lua.LVAsNumber(v))
	} else {
		def.Range = ability.DefaultRange
	}
	if v := tbl.RawGetString("effects"); v != lua.LNil {
		effects, ok := v.(*lua.LTable)
		if !ok {
			L.ArgError(1, "effects must be a sequence of effect records")
		}
		def.Effects = s.collectEffects(L, effects)
	}
	if v := tbl.RawGetString("on_cast"); v != lua.LNil {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			L.ArgError(1, "on_cast must be a function")
		}
		def.OnCast = s.wrapCast(def.Name, fn)
	}

	ud := L.NewUserData()
	ud.Value = def
	L.SetMetatable(ud, L.GetTypeMetatable(abilityTypeName))
	L.Push(ud)
	return 1
}

func (s *Script) collectEffects(L *lua.LState, tbl *lua.LTable) []effect.Effect {
	n := tbl.Len()
	effects := make([]effect.Effect, 0, n)
	for i := 1; i <= n; i++ {
		entry := tbl.RawGetInt(i)
		ud, ok := entry.(*lua.LUserData)
		if !ok {
			L.RaiseError("effects[%d] is not an effect record, got %s", i, entry.Type())
		}
		eff, ok := ud.Value.(effect.Effect)
		if !ok {
			L.RaiseError("effects[%d] is not an effect record", i)
		}
		effects = append(effects, eff)
	}
	return effects
}

func (s *Script) pushEffect(L *lua.LState, eff effect.Effect) int {
	ud := L.NewUserData()
	ud.Value = eff
	L.SetMetatable(ud, L.GetTypeMetatable(effectTypeName))
	L.Push(ud)
	return 1
}

func checkDamageKind(L *lua.LState, n int, fallback effect.DamageKind) effect.DamageKind {
	kind := effect.DamageKind(L.OptString(n, string(fallback)))
	if !effect.ValidDamageKind(kind) {
		L.ArgError(n, "damage kind must be physical, magical or both")
	}
	return kind
}

func (s *Script) luaDamage(L *lua.LState) int {
	amount := float64(L.CheckNumber(1))
	kind := checkDamageKind(L, 2, effect.DamagePhysical)
	return s.pushEffect(L, effect.Damage(amount, kind))
}

func (s *Script) luaDamageOverTime(L *lua.LState) int {
	dps := float64(L.CheckNumber(1))
	duration := float64(L.CheckNumber(2))
	kind := checkDamageKind(L, 3, effect.DamagePhysical)
	return s.pushEffect(L, effect.DamageOverTime(dps, duration, kind))
}

func (s *Script) luaImmunity(L *lua.LState) int {
	kind := effect.DamageKind(L.CheckString(1))
	if !effect.ValidDamageKind(kind) {
		L.ArgError(1, "damage kind must be physical, magical or both")
	}
	duration := float64(L.CheckNumber(2))
	return s.pushEffect(L, effect.Immunity(kind, duration))
}

func (s *Script) luaTimeFreeze(L *lua.LState) int {
	duration := float64(L.CheckNumber(1))
	return s.pushEffect(L, effect.TimeFreeze(duration))
}

func (s *Script) luaKnockback(L *lua.LState) int {
	force := float64(L.CheckNumber(1))
	return s.pushEffect(L, effect.Knockback(force))
}

func (s *Script) pushShape(L *lua.LState, shape ability.Shape) int {
	ud := L.NewUserData()
	ud.Value = shape
	L.SetMetatable(ud, L.GetTypeMetatable(shapeTypeName))
	L.Push(ud)
	return 1
}

func (s *Script) luaCircle(L *lua.LState) int {
	return s.pushShape(L, ability.Circle(float64(L.CheckNumber(1))))
}

func (s *Script) luaSquare(L *lua.LState) int {
	return s.pushShape(L, ability.Square(float64(L.CheckNumber(1))))
}

func luaClamp(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	lo := float64(L.CheckNumber(2))
	hi := float64(L.CheckNumber(3))
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (s *Script) luaRand(L *lua.LState) int {
	min := float64(L.CheckNumber(1))
	max := float64(L.CheckNumber(2))
	if max < min {
		min, max = max, min
	}
	r := s.opts.Rand
	if r == nil {
		r = func(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }
	}
	L.Push(lua.LNumber(r(min, max)))
	return 1
}

func luaVec(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	tbl := L.NewTable()
	L.SetField(tbl, "x", lua.LNumber(x))
	L.SetField(tbl, "y", lua.LNumber(y))
	L.Push(tbl)
	return 1
}
