package kernel_test

import (
	"math"
	"testing"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeightFromKg(t *testing.T) {
	tests := []struct {
		name      string
		kg        float64
		wantGrams int64
		wantErr   error
	}{
		{name: "whole kilograms", kg: 10, wantGrams: 10_000},
		{name: "rounds to the gram", kg: 0.0016, wantGrams: 2},
		{name: "fractional", kg: 2.345, wantGrams: 2_345},
		{name: "zero", kg: 0, wantErr: errs.ErrValueIsInvalid},
		{name: "negative", kg: -1, wantErr: errs.ErrValueIsInvalid},
		{name: "below one gram", kg: 0.0004, wantErr: errs.ErrValueIsInvalid},
		{name: "nan", kg: math.NaN(), wantErr: errs.ErrValueIsInvalid},
		{name: "too heavy", kg: kernel.MaxWeightKg + 1, wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := kernel.NewWeightFromKg(tc.kg)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantGrams, w.Grams())
		})
	}
}

func TestWeight_Arithmetic(t *testing.T) {
	ten, _ := kernel.NewWeightFromKg(10)
	eight, _ := kernel.NewWeightFromKg(8)

	sum := ten.Add(eight)
	assert.Equal(t, int64(18_000), sum.Grams())
	assert.InDelta(t, 18.0, sum.Kg(), 1e-9)
	assert.True(t, sum.IsGreaterThan(ten))
	assert.True(t, sum.Sub(eight).IsEqual(ten))
	assert.True(t, eight.Sub(ten).IsZero())
	assert.Equal(t, "18.000kg", sum.String())
}

func TestRestoreWeight(t *testing.T) {
	w, err := kernel.RestoreWeight(0)
	require.NoError(t, err)
	assert.True(t, w.IsZero())

	_, err = kernel.RestoreWeight(-5)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
