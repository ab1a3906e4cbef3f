// Package unit implements the runtime unit model: stat derivation,
// modifier folding, damage, experience, and per-turn bookkeeping.
package unit

import (
	"math"

	"github.com/nathoo/tacticore/types"
)

// StatsAt derives the stat block for a level: base + growth×(level−1).
func StatsAt(def types.UnitDef, level int) types.Stats {
	if level < 1 {
		level = 1
	}
	n := level - 1
	return types.Stats{
		MaxHealth: def.Base.MaxHealth + def.Growth.MaxHealth*n,
		Attack:    def.Base.Attack + def.Growth.Attack*n,
		Defense:   def.Base.Defense + def.Growth.Defense*n,
		Range:     def.Base.Range + def.Growth.Range*n,
	}
}

// New creates a runtime unit at full health.
func New(id int, def types.UnitDef, owner, node, level int) *types.UnitState {
	if level < 1 {
		level = 1
	}
	u := &types.UnitState{
		ID:    id,
		DefID: def.ID,
		Owner: owner,
		Node:  node,
		Level: level,
		Alive: true,
	}
	u.Stats = StatsAt(def, level)
	u.Health = u.Stats.MaxHealth
	return u
}

// AddModifier appends a modifier, stamps its application order, and
// recalculates stats.
func AddModifier(u *types.UnitState, def types.UnitDef, m types.Modifier) {
	m.Seq = nextSeq(u)
	if m.Duration == types.DurationTurns && m.TurnsLeft < 1 {
		m.TurnsLeft = 1
	}
	u.Modifiers = append(u.Modifiers, m)
	Recalculate(u, def)
}

func nextSeq(u *types.UnitState) int {
	max := 0
	for _, m := range u.Modifiers {
		if m.Seq > max {
			max = m.Seq
		}
	}
	return max + 1
}

// Recalculate folds active modifiers onto level-derived stats. Additive
// modifiers sum; multiplicative modifiers compound (percent, 100 =
// identity). A Set or Override modifier short-circuits to a fixed value:
// Override outranks Set, and within the same op the most recently
// applied (highest Seq) wins. Health clamps to the recalculated max.
func Recalculate(u *types.UnitState, def types.UnitDef) {
	base := StatsAt(def, u.Level)
	u.Stats = types.Stats{
		MaxHealth: fold(u.Modifiers, types.StatMaxHealth, base.MaxHealth),
		Attack:    fold(u.Modifiers, types.StatAttack, base.Attack),
		Defense:   fold(u.Modifiers, types.StatDefense, base.Defense),
		Range:     fold(u.Modifiers, types.StatRange, base.Range),
	}
	if u.Health > u.Stats.MaxHealth {
		u.Health = u.Stats.MaxHealth
	}
}

func fold(mods []types.Modifier, stat types.Stat, base int) int {
	fixed := false
	fixedVal := 0
	fixedOp := types.ModSet
	fixedSeq := -1
	add := 0
	muls := []types.Modifier{}
	for _, m := range mods {
		if m.Stat != stat {
			continue
		}
		switch m.Op {
		case types.ModAdd:
			add += m.Value
		case types.ModMultiply:
			muls = append(muls, m)
		case types.ModSet, types.ModOverride:
			if !fixed || wins(m.Op, m.Seq, fixedOp, fixedSeq) {
				fixed = true
				fixedVal = m.Value
				fixedOp = m.Op
				fixedSeq = m.Seq
			}
		}
	}
	if fixed {
		return fixedVal
	}
	v := base + add
	for _, m := range muls {
		v = v * m.Value / 100
	}
	return v
}

// wins decides the Set/Override tie-break: Override beats Set, then the
// most recently applied modifier wins.
func wins(op types.ModifierOp, seq int, curOp types.ModifierOp, curSeq int) bool {
	if op != curOp {
		return op == types.ModOverride
	}
	return seq > curSeq
}

// TakeDamage applies mitigated combat damage: effective = max(1,
// amount − defense). Returns the damage dealt and whether the unit died
// on this call.
func TakeDamage(u *types.UnitState, def types.UnitDef, amount int) (dealt int, died bool) {
	if !u.Alive {
		return 0, false
	}
	dealt = amount - u.Stats.Defense
	if dealt < 1 {
		dealt = 1
	}
	return dealt, apply(u, def, dealt)
}

// TakeTrueDamage applies unmitigated damage (trap tiles bypass defense).
func TakeTrueDamage(u *types.UnitState, def types.UnitDef, amount int) (dealt int, died bool) {
	if !u.Alive || amount <= 0 {
		return 0, false
	}
	return amount, apply(u, def, amount)
}

func apply(u *types.UnitState, def types.UnitDef, dealt int) (died bool) {
	u.Health -= dealt
	purgeUntilDamaged(u, def)
	if u.Health <= 0 {
		u.Health = 0
		if u.Alive {
			u.Alive = false
			died = true
		}
	}
	return died
}

func purgeUntilDamaged(u *types.UnitState, def types.UnitDef) {
	kept := make([]types.Modifier, 0, len(u.Modifiers))
	purged := false
	for _, m := range u.Modifiers {
		if m.Duration == types.DurationUntilDamaged {
			purged = true
			continue
		}
		kept = append(kept, m)
	}
	if purged {
		u.Modifiers = kept
		Recalculate(u, def)
	}
}

// Threshold returns the experience required to leave a level:
// floor(100·level^1.5).
func Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// AddExperience accumulates xp, leveling up while the total meets the
// threshold and carrying the remainder forward. Returns the number of
// levels gained.
func AddExperience(u *types.UnitState, def types.UnitDef, amount int) int {
	if !u.Alive || amount <= 0 {
		return 0
	}
	u.XP += amount
	levels := 0
	for u.XP >= Threshold(u.Level) {
		u.XP -= Threshold(u.Level)
		u.Level++
		levels++
	}
	if levels > 0 {
		Recalculate(u, def)
	}
	return levels
}

// Equip attaches an item, applying its modifiers tagged with the item
// source.
func Equip(u *types.UnitState, def types.UnitDef, item string, mods []types.Modifier) {
	u.Items = append(u.Items, item)
	for _, m := range mods {
		m.Source = "item:" + item
		AddModifier(u, def, m)
	}
}

// Unequip removes an item and every modifier it granted.
func Unequip(u *types.UnitState, def types.UnitDef, item string) {
	items := make([]string, 0, len(u.Items))
	for _, it := range u.Items {
		if it != item {
			items = append(items, it)
		}
	}
	u.Items = items
	kept := make([]types.Modifier, 0, len(u.Modifiers))
	for _, m := range u.Modifiers {
		if m.Source != "item:"+item {
			kept = append(kept, m)
		}
	}
	u.Modifiers = kept
	Recalculate(u, def)
}

// StartTurn resets the per-turn action flags.
func StartTurn(u *types.UnitState) {
	u.Moved = false
	u.Acted = false
}

// EndTurn expires until-end-of-turn modifiers and decrements turn-counted
// ones, dropping those that reach zero.
func EndTurn(u *types.UnitState, def types.UnitDef) {
	kept := make([]types.Modifier, 0, len(u.Modifiers))
	changed := false
	for _, m := range u.Modifiers {
		switch m.Duration {
		case types.DurationEndOfTurn:
			changed = true
			continue
		case types.DurationTurns:
			m.TurnsLeft--
			if m.TurnsLeft <= 0 {
				changed = true
				continue
			}
		}
		kept = append(kept, m)
	}
	u.Modifiers = kept
	if changed {
		Recalculate(u, def)
	}
}
