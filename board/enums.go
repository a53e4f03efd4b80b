package board

// Weapon is the loadout a strategy is written for. Unrecognized values
// normalize to WeaponAny; this function is the single fallback table for the
// enum, used on both the write and read paths.
type Weapon string

const (
	WeaponVandal   Weapon = "Vandal"
	WeaponPhantom  Weapon = "Phantom"
	WeaponOperator Weapon = "Operator"
	WeaponAny      Weapon = "Any"
)

// ParseWeapon normalizes a weapon value, defaulting to WeaponAny.
func ParseWeapon(s string) Weapon {
	switch Weapon(s) {
	case WeaponVandal, WeaponPhantom, WeaponOperator, WeaponAny:
		return Weapon(s)
	default:
		return WeaponAny
	}
}

// Action is the play a strategy describes. Unrecognized values normalize to
// ActionUtility.
type Action string

const (
	ActionPush    Action = "Push"
	ActionHold    Action = "Hold"
	ActionFake    Action = "Fake"
	ActionLurk    Action = "Lurk"
	ActionUtility Action = "Utility"
)

// ParseAction normalizes an action value, defaulting to ActionUtility.
func ParseAction(s string) Action {
	switch Action(s) {
	case ActionPush, ActionHold, ActionFake, ActionLurk, ActionUtility:
		return Action(s)
	default:
		return ActionUtility
	}
}

const (
	minDurationRounds = 1
	maxDurationRounds = 5
)

// ClampDuration coerces a strategy duration into [1,5] rounds.
func ClampDuration(n int) int {
	if n < minDurationRounds {
		return minDurationRounds
	}
	if n > maxDurationRounds {
		return maxDurationRounds
	}
	return n
}
