package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const Pi float32 = gomath.Pi

func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Sqrt(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

func Abs(x float32) float32 {
	return float32(gomath.Abs(float64(x)))
}

func Sin(x float32) float32 {
	return float32(gomath.Sin(float64(x)))
}

func Cos(x float32) float32 {
	return float32(gomath.Cos(float64(x)))
}

func Tan(x float32) float32 {
	return float32(gomath.Tan(float64(x)))
}

func DegToRad(degrees float32) float32 {
	return degrees * Pi / 180.0
}
