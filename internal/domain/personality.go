package domain

import (
	"fmt"
	"maps"
	"strings"
)

const (
	MinTraitValue     = 1
	MaxTraitValue     = 7
	DefaultTraitValue = 4

	// ResetTraitValue is the raw setting that means "use the default".
	ResetTraitValue = 0
)

// Trait is one personality dimension. The set is closed: use the constants
// below, never arbitrary strings.
type Trait string

const (
	TraitHumor         Trait = "humor"
	TraitCareFrequency Trait = "care_frequency"
	TraitWarmth        Trait = "warmth"
	TraitOptimism      Trait = "optimism"
	TraitTone          Trait = "tone"
	TraitTalkativeness Trait = "talkativeness"

	TraitDirectness       Trait = "directness"
	TraitEmotionalSupport Trait = "emotional_support"
	TraitAdvice           Trait = "advice"
	TraitTopicDepth       Trait = "topic_depth"
)

type Tier int

const (
	TierFree Tier = iota
	TierPaid
)

type traitInfo struct {
	label string
	tier  Tier
	hint  string
}

var traitTable = map[Trait]traitInfo{
	TraitHumor:         {label: "幽默感", tier: TierFree},
	TraitCareFrequency: {label: "主動關心頻率", tier: TierFree},
	TraitWarmth:        {label: "溫暖程度", tier: TierFree},
	TraitOptimism:      {label: "樂觀度", tier: TierFree},
	TraitTone:          {label: "回應態度", tier: TierFree, hint: "1=年輕, 7=成熟"},
	TraitTalkativeness: {label: "健談程度", tier: TierFree},

	TraitDirectness:       {label: "直率程度", tier: TierPaid},
	TraitEmotionalSupport: {label: "情緒應對方式", tier: TierPaid},
	TraitAdvice:           {label: "建議提供程度", tier: TierPaid},
	TraitTopicDepth:       {label: "深度話題程度", tier: TierPaid},
}

// Vocabulary order. Prompts and setup walk traits in this order.
var (
	freeTraits = []Trait{
		TraitHumor,
		TraitCareFrequency,
		TraitWarmth,
		TraitOptimism,
		TraitTone,
		TraitTalkativeness,
	}
	paidTraits = []Trait{
		TraitDirectness,
		TraitEmotionalSupport,
		TraitAdvice,
		TraitTopicDepth,
	}
)

func FreeTraits() []Trait { return append([]Trait(nil), freeTraits...) }
func PaidTraits() []Trait { return append([]Trait(nil), paidTraits...) }

// AllTraits returns free-tier traits followed by paid-tier traits.
func AllTraits() []Trait {
	out := make([]Trait, 0, len(freeTraits)+len(paidTraits))
	out = append(out, freeTraits...)
	return append(out, paidTraits...)
}

func (t Trait) Valid() bool {
	_, ok := traitTable[t]
	return ok
}

// Label is the user-facing name of the trait.
func (t Trait) Label() string {
	if info, ok := traitTable[t]; ok {
		return info.label
	}
	return string(t)
}

// Hint describes what the ends of the scale mean, if the trait has one.
func (t Trait) Hint() string {
	return traitTable[t].hint
}

func (t Trait) Tier() Tier {
	return traitTable[t].tier
}

// ParseTrait accepts either the trait key ("humor") or its label ("幽默感").
func ParseTrait(s string) (Trait, error) {
	s = strings.TrimSpace(s)
	if t := Trait(strings.ToLower(s)); t.Valid() {
		return t, nil
	}
	for t, info := range traitTable {
		if info.label == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrait, s)
}

type Gender string

const (
	GenderNeutral Gender = "neutral"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

var genderLabels = map[Gender]string{
	GenderNeutral: "中性",
	GenderMale:    "男性",
	GenderFemale:  "女性",
}

func (g Gender) Label() string {
	if l, ok := genderLabels[g]; ok {
		return l
	}
	return genderLabels[GenderNeutral]
}

func ParseGender(s string) (Gender, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenderNeutral, nil
	}
	if g := Gender(strings.ToLower(s)); genderLabels[g] != "" {
		return g, nil
	}
	for g, label := range genderLabels {
		if label == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGender, s)
}

// PersonalityProfile holds the trait settings of a user's AI friend.
// A trait missing from Traits reads as DefaultTraitValue.
type PersonalityProfile struct {
	Traits     map[Trait]int
	AIGender   Gender
	IsPaidUser bool
}

// DefaultProfile returns every free-tier trait at the default value, a
// neutral AI gender and no paid-tier traits.
func DefaultProfile() PersonalityProfile {
	traits := make(map[Trait]int, len(freeTraits))
	for _, t := range freeTraits {
		traits[t] = DefaultTraitValue
	}
	return PersonalityProfile{
		Traits:   traits,
		AIGender: GenderNeutral,
	}
}

// Value returns the trait value, falling back to the default when unset.
func (p PersonalityProfile) Value(t Trait) int {
	if v, ok := p.Traits[t]; ok && v >= MinTraitValue && v <= MaxTraitValue {
		return v
	}
	return DefaultTraitValue
}

// ActiveTraits lists the traits a prompt should mention: every free-tier
// trait, plus the paid-tier ones when the profile is paid.
func (p PersonalityProfile) ActiveTraits() []Trait {
	if p.IsPaidUser {
		return AllTraits()
	}
	return FreeTraits()
}

func (p PersonalityProfile) Clone() PersonalityProfile {
	out := p
	out.Traits = maps.Clone(p.Traits)
	if out.Traits == nil {
		out.Traits = make(map[Trait]int)
	}
	return out
}

// ApplySetting returns a copy of p with trait set from raw. Raw 0 means the
// default; 1..7 are taken as-is. The input profile is left untouched.
func ApplySetting(p PersonalityProfile, t Trait, raw int) (PersonalityProfile, error) {
	if !t.Valid() {
		return p, fmt.Errorf("%w: %q", ErrUnknownTrait, t)
	}

	var value int
	switch {
	case raw == ResetTraitValue:
		value = DefaultTraitValue
	case raw >= MinTraitValue && raw <= MaxTraitValue:
		value = raw
	default:
		return p, fmt.Errorf("%w: %s=%d (want 0..%d)", ErrInvalidSettingValue, t, raw, MaxTraitValue)
	}

	if t.Tier() == TierPaid && !p.IsPaidUser {
		return p, fmt.Errorf("%w: %s", ErrTierNotAllowed, t)
	}

	out := p.Clone()
	out.Traits[t] = value
	return out, nil
}
