package kernel

import (
	"fmt"
	"math"

	"consolidation/internal/pkg/errs"
)

const gramsPerKg = 1000

// MaxWeightKg bounds every weight accepted from the outside world.
const MaxWeightKg = 1_000_000

// Weight is a non-negative mass stored as whole grams. Batch totals are sums of
// order weights, so integer storage keeps totalWeight == sum(order weights)
// exact regardless of how many orders are added and removed.
type Weight struct {
	grams int64
}

// ZeroWeight is the weight of an empty batch.
func ZeroWeight() Weight {
	return Weight{}
}

// NewWeightFromKg converts kilograms (rounded to the nearest gram). The result
// must be strictly positive.
func NewWeightFromKg(kg float64) (Weight, error) {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not a finite number", kg))
	}
	if kg > MaxWeightKg {
		return Weight{}, errs.NewValueIsOutOfRangeError("weight", kg, 0, MaxWeightKg)
	}
	return NewWeightFromGrams(int64(math.Round(kg * gramsPerKg)))
}

// NewWeightFromGrams builds a strictly positive weight.
func NewWeightFromGrams(grams int64) (Weight, error) {
	if grams <= 0 {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause(
			"weight",
			fmt.Errorf("%dg is not greater than 0", grams),
		)
	}
	return Weight{grams: grams}, nil
}

// RestoreWeight rebuilds a persisted weight; zero is allowed.
func RestoreWeight(grams int64) (Weight, error) {
	if grams < 0 {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause(
			"weight",
			fmt.Errorf("%dg is negative", grams),
		)
	}
	return Weight{grams: grams}, nil
}

func (w Weight) Grams() int64 {
	return w.grams
}

func (w Weight) Kg() float64 {
	return float64(w.grams) / gramsPerKg
}

func (w Weight) IsZero() bool {
	return w.grams == 0
}

func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams + other.grams}
}

// Sub never goes below zero.
func (w Weight) Sub(other Weight) Weight {
	if other.grams >= w.grams {
		return Weight{}
	}
	return Weight{grams: w.grams - other.grams}
}

func (w Weight) IsGreaterThan(other Weight) bool {
	return w.grams > other.grams
}

func (w Weight) IsEqual(other Weight) bool {
	return w.grams == other.grams
}

func (w Weight) String() string {
	return fmt.Sprintf("%.3fkg", w.Kg())
}
