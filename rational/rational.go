// Package rational provides exact rational numbers used by the simplex tableau.
//
// A Rational is an immutable value: every operation returns a fresh value and
// never modifies its operands, so values can be copied and shared freely.
package rational

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrDivisionByZero = errors.New("rational: division by zero")

// Rational is a signed fraction kept in lowest terms with a positive
// denominator. The zero value is 0.
type Rational struct {
	v *big.Rat
}

var (
	Zero = Rational{}
	One  = FromInt(1)
)

// New returns num/den reduced to lowest terms.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrDivisionByZero
	}
	return Rational{v: big.NewRat(num, den)}, nil
}

func FromInt(n int64) Rational {
	return Rational{v: new(big.Rat).SetInt64(n)}
}

// FromBig copies r.
func FromBig(r *big.Rat) Rational {
	return Rational{v: new(big.Rat).Set(r)}
}

// FromFloat64 converts v through its shortest decimal representation, so
// 0.1 becomes 1/10 rather than the binary value nearest to it.
func FromFloat64(v float64) (Rational, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Rational{}, errors.Errorf("rational: cannot represent %v", v)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
	if !ok {
		return Rational{}, errors.Errorf("rational: cannot represent %v", v)
	}
	return Rational{v: r}, nil
}

// Parse reads "a" or "a/b" where a and b are base 10 integers. Only the
// numerator may carry a sign.
func Parse(s string) (Rational, error) {
	num, den, isFrac := strings.Cut(strings.TrimSpace(s), "/")
	n, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return Rational{}, errors.Errorf("rational: invalid numerator in %q", s)
	}
	if !isFrac {
		return Rational{v: new(big.Rat).SetInt(n)}, nil
	}
	if den == "" || den[0] == '-' || den[0] == '+' {
		return Rational{}, errors.Errorf("rational: invalid denominator in %q", s)
	}
	d, ok := new(big.Int).SetString(den, 10)
	if !ok {
		return Rational{}, errors.Errorf("rational: invalid denominator in %q", s)
	}
	if d.Sign() == 0 {
		return Rational{}, errors.Wrapf(ErrDivisionByZero, "parsing %q", s)
	}
	return Rational{v: new(big.Rat).SetFrac(n, d)}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Rational {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rational) rat() *big.Rat {
	if r.v == nil {
		return new(big.Rat)
	}
	return r.v
}

func (r Rational) Add(s Rational) Rational {
	return Rational{v: new(big.Rat).Add(r.rat(), s.rat())}
}

func (r Rational) Sub(s Rational) Rational {
	return Rational{v: new(big.Rat).Sub(r.rat(), s.rat())}
}

func (r Rational) Mul(s Rational) Rational {
	return Rational{v: new(big.Rat).Mul(r.rat(), s.rat())}
}

// Div returns r/s, or ErrDivisionByZero when s is zero.
func (r Rational) Div(s Rational) (Rational, error) {
	if s.IsZero() {
		return Rational{}, ErrDivisionByZero
	}
	return Rational{v: new(big.Rat).Quo(r.rat(), s.rat())}, nil
}

func (r Rational) Neg() Rational {
	return Rational{v: new(big.Rat).Neg(r.rat())}
}

// Cmp returns -1, 0 or +1 depending on whether r is less than, equal to or
// greater than s.
func (r Rational) Cmp(s Rational) int {
	return r.rat().Cmp(s.rat())
}

func (r Rational) Sign() int {
	return r.rat().Sign()
}

func (r Rational) IsZero() bool {
	return r.Sign() == 0
}

func (r Rational) Equal(s Rational) bool {
	return r.Cmp(s) == 0
}

func (r Rational) Less(s Rational) bool {
	return r.Cmp(s) < 0
}

func (r Rational) Num() *big.Int {
	return new(big.Int).Set(r.rat().Num())
}

func (r Rational) Denom() *big.Int {
	return new(big.Int).Set(r.rat().Denom())
}

// Float64 returns the nearest float64 and whether it is exact.
func (r Rational) Float64() (float64, bool) {
	return r.rat().Float64()
}

// String renders "a" when the denominator is 1 and "a/b" otherwise, which is
// the same format Parse accepts.
func (r Rational) String() string {
	return r.rat().RatString()
}
