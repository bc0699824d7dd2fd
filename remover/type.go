package remover

import "fmt"

type Type struct {
	s string
}

var (
	COLORKEY = Type{"colorkey"}
	REMBG    = Type{"rembg"}
)

func (t Type) String() string {
	return t.s
}

func MakeFromString(s string) (Type, error) {
	switch s {
	case COLORKEY.s:
		return COLORKEY, nil
	case REMBG.s:
		return REMBG, nil
	}

	return Type{}, fmt.Errorf("unknown remover: %s", s)
}
