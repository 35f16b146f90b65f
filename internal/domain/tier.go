package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a definition complexity level.
type Tier string

const (
	TierSimple   Tier = "simple"
	TierMedium   Tier = "medium"
	TierAdvanced Tier = "advanced"
)

var tierOrder = []Tier{TierSimple, TierMedium, TierAdvanced}

func (t Tier) String() string { return string(t) }

func (t Tier) IsValid() bool {
	switch t {
	case TierSimple, TierMedium, TierAdvanced:
		return true
	}
	return false
}

func (t Tier) index() int {
	for i, v := range tierOrder {
		if v == t {
			return i
		}
	}
	return 0
}

// Direction is a user-driven tier change.
type Direction string

const (
	DirectionSimplify Direction = "simplify"
	DirectionExpand   Direction = "expand"
)

func (d Direction) IsValid() bool {
	return d == DirectionSimplify || d == DirectionExpand
}

// Step moves one tier in the given direction. Steps past either end are
// no-ops; there is no wrap-around.
func (t Tier) Step(d Direction) Tier {
	i := t.index()
	switch d {
	case DirectionSimplify:
		if i > 0 {
			i--
		}
	case DirectionExpand:
		if i < len(tierOrder)-1 {
			i++
		}
	}
	return tierOrder[i]
}

func (t Tier) CanSimplify() bool { return t.index() > 0 }
func (t Tier) CanExpand() bool   { return t.index() < len(tierOrder)-1 }

// GradeLabel is a school grade; 0 is kindergarten.
type GradeLabel int

const (
	GradeK   GradeLabel = 0
	MaxGrade GradeLabel = 12
)

func (g GradeLabel) String() string {
	if g == GradeK {
		return "K"
	}
	return strconv.Itoa(int(g))
}

// ParseGrade accepts "K" (any case) or an integer 0..12.
func ParseGrade(s string) (GradeLabel, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "k") {
		return GradeK, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > int(MaxGrade) {
		return 0, NewValidationError("grade", fmt.Sprintf("must be K or 0-%d", MaxGrade))
	}
	return GradeLabel(n), nil
}

// TierForGrade maps a grade to the tier shown first: K-2 simple, 3-4 medium,
// 5 and up advanced.
func TierForGrade(g GradeLabel) Tier {
	switch {
	case g <= 2:
		return TierSimple
	case g <= 4:
		return TierMedium
	default:
		return TierAdvanced
	}
}

// MarshalText lets grades round-trip as "K", "1", ...
func (g GradeLabel) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GradeLabel) UnmarshalText(b []byte) error {
	v, err := ParseGrade(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
