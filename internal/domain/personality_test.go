package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

func TestDefaultProfile(t *testing.T) {
	p := domain.DefaultProfile()

	assert.Equal(t, domain.GenderNeutral, p.AIGender)
	assert.False(t, p.IsPaidUser)
	for _, tr := range domain.FreeTraits() {
		assert.Equal(t, 4, p.Traits[tr], "free trait %s", tr)
	}
	for _, tr := range domain.PaidTraits() {
		_, set := p.Traits[tr]
		assert.False(t, set, "paid trait %s should not be set", tr)
	}
}

func TestApplySettingValues(t *testing.T) {
	base := domain.DefaultProfile()

	t.Run("zero maps to default", func(t *testing.T) {
		p, err := domain.ApplySetting(base, domain.TraitHumor, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Value(domain.TraitHumor))
	})

	for v := 1; v <= 7; v++ {
		p, err := domain.ApplySetting(base, domain.TraitWarmth, v)
		require.NoError(t, err)
		assert.Equal(t, v, p.Value(domain.TraitWarmth))
	}

	for _, v := range []int{-1, 8, 42} {
		_, err := domain.ApplySetting(base, domain.TraitWarmth, v)
		assert.ErrorIs(t, err, domain.ErrInvalidSettingValue, "value %d", v)
	}
}

func TestApplySettingDoesNotMutateInput(t *testing.T) {
	base := domain.DefaultProfile()

	p, err := domain.ApplySetting(base, domain.TraitOptimism, 7)
	require.NoError(t, err)

	assert.Equal(t, 7, p.Value(domain.TraitOptimism))
	assert.Equal(t, 4, base.Value(domain.TraitOptimism))
}

func TestApplySettingTiers(t *testing.T) {
	free := domain.DefaultProfile()
	_, err := domain.ApplySetting(free, domain.TraitDirectness, 5)
	assert.ErrorIs(t, err, domain.ErrTierNotAllowed)

	paid := domain.DefaultProfile()
	paid.IsPaidUser = true
	p, err := domain.ApplySetting(paid, domain.TraitDirectness, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Value(domain.TraitDirectness))
}

func TestApplySettingInvalidValueBeatsTier(t *testing.T) {
	_, err := domain.ApplySetting(domain.DefaultProfile(), domain.TraitAdvice, 9)
	assert.ErrorIs(t, err, domain.ErrInvalidSettingValue)
}

func TestApplySettingUnknownTrait(t *testing.T) {
	_, err := domain.ApplySetting(domain.DefaultProfile(), domain.Trait("charisma"), 3)
	assert.ErrorIs(t, err, domain.ErrUnknownTrait)
}

func TestValueFallsBackToDefault(t *testing.T) {
	p := domain.PersonalityProfile{}
	assert.Equal(t, 4, p.Value(domain.TraitTopicDepth))

	p.Traits = map[domain.Trait]int{domain.TraitHumor: 99}
	assert.Equal(t, 4, p.Value(domain.TraitHumor))
}

func TestParseTrait(t *testing.T) {
	tr, err := domain.ParseTrait("幽默感")
	require.NoError(t, err)
	assert.Equal(t, domain.TraitHumor, tr)

	tr, err = domain.ParseTrait(" Topic_Depth ")
	require.NoError(t, err)
	assert.Equal(t, domain.TraitTopicDepth, tr)

	_, err = domain.ParseTrait("魅力")
	assert.ErrorIs(t, err, domain.ErrUnknownTrait)
}

func TestParseGender(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Gender
	}{
		{"", domain.GenderNeutral},
		{"female", domain.GenderFemale},
		{"MALE", domain.GenderMale},
		{"中性", domain.GenderNeutral},
		{"女性", domain.GenderFemale},
	}
	for _, tc := range cases {
		got, err := domain.ParseGender(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := domain.ParseGender("robot")
	assert.ErrorIs(t, err, domain.ErrUnknownGender)
}

func TestActiveTraits(t *testing.T) {
	p := domain.DefaultProfile()
	assert.Equal(t, domain.FreeTraits(), p.ActiveTraits())

	p.IsPaidUser = true
	assert.Equal(t, domain.AllTraits(), p.ActiveTraits())
}
