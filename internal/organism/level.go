package organism

import "fmt"

// Level is the hierarchy tier of an organism.
type Level uint8

const (
	LevelSubcomponent Level = iota
	LevelComponent
	LevelEntity
)

// Levels lists every level in rebuild order.
var Levels = [...]Level{LevelSubcomponent, LevelComponent, LevelEntity}

func (l Level) String() string {
	switch l {
	case LevelSubcomponent:
		return "subcomponent"
	case LevelComponent:
		return "component"
	case LevelEntity:
		return "entity"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Detail is the sphere tessellation used for the level.
func (l Level) Detail() int {
	switch l {
	case LevelSubcomponent:
		return 16
	case LevelComponent:
		return 32
	case LevelEntity:
		return 64
	default:
		panic(fmt.Sprintf("organism: unknown %v", l))
	}
}

// Opacity is the material opacity used for the level.
func (l Level) Opacity() float64 {
	switch l {
	case LevelSubcomponent:
		return 0.9
	case LevelComponent:
		return 0.6
	case LevelEntity:
		return 0.3
	default:
		panic(fmt.Sprintf("organism: unknown %v", l))
	}
}

// Drifts reports whether organisms at this level wander around their home.
func (l Level) Drifts() bool {
	switch l {
	case LevelSubcomponent:
		return true
	case LevelComponent, LevelEntity:
		return false
	default:
		panic(fmt.Sprintf("organism: unknown %v", l))
	}
}

// Hoverable reports whether hovering an organism at this level shows a tooltip.
func (l Level) Hoverable() bool {
	switch l {
	case LevelSubcomponent:
		return true
	case LevelComponent, LevelEntity:
		return false
	default:
		panic(fmt.Sprintf("organism: unknown %v", l))
	}
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("organism: unknown level %q", s)
}

// UnmarshalText parses the name written by MarshalText.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
