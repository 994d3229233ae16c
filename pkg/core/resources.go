// pkg/core/resources.go
package core

import "math"

// Resources is a quadruple of the four resource kinds.
type Resources struct {
	Energy     uint64
	Antibodies uint64
	StemCells  uint64
	Nutrients  uint64
}

// Covers reports whether r holds at least cost in every resource.
func (r Resources) Covers(cost Resources) bool {
	return r.Energy >= cost.Energy &&
		r.Antibodies >= cost.Antibodies &&
		r.StemCells >= cost.StemCells &&
		r.Nutrients >= cost.Nutrients
}

// Sub deducts cost if it is fully covered. Nothing changes otherwise.
func (r *Resources) Sub(cost Resources) bool {
	if !r.Covers(cost) {
		return false
	}
	r.Energy -= cost.Energy
	r.Antibodies -= cost.Antibodies
	r.StemCells -= cost.StemCells
	r.Nutrients -= cost.Nutrients
	return true
}

// Add adds gain, saturating each resource at its maximum.
func (r *Resources) Add(gain Resources) {
	r.Energy = satAdd64(r.Energy, gain.Energy)
	r.Antibodies = satAdd64(r.Antibodies, gain.Antibodies)
	r.StemCells = satAdd64(r.StemCells, gain.StemCells)
	r.Nutrients = satAdd64(r.Nutrients, gain.Nutrients)
}

// ImmuneSplit spreads a scalar cost over the four resources as (c, c/2, c/10, c/3).
func ImmuneSplit(c uint64) Resources {
	return Resources{Energy: c, Antibodies: c / 2, StemCells: c / 10, Nutrients: c / 3}
}

// PathogenSplit spreads a scalar cost as (2c, 0, 0, c).
func PathogenSplit(c uint64) Resources {
	return Resources{Energy: satMul64(c, 2), Nutrients: c}
}

func satAdd64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func satMul64(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}

// AddCapped32 returns min(v+d, limit) without wrapping.
func AddCapped32(v, d, limit uint32) uint32 {
	if v >= limit || d >= limit-v {
		return limit
	}
	return v + d
}

// SubSat32 returns v-d, or 0 when d exceeds v.
func SubSat32(v, d uint32) uint32 {
	if d > v {
		return 0
	}
	return v - d
}

// SubSat16 returns v-d, or 0 when d exceeds v.
func SubSat16(v, d uint16) uint16 {
	if d > v {
		return 0
	}
	return v - d
}

// AddSat16 returns v+d, saturating at the uint16 maximum.
func AddSat16(v, d uint16) uint16 {
	if v > math.MaxUint16-d {
		return math.MaxUint16
	}
	return v + d
}
