package reportrun

import (
	"testing"
	"time"

	"github.com/finvue/finvue/internal/reportrun/domain"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
)

func TestCadencePolicy_StarterIsWeeklyOnly(t *testing.T) {
	policy := DefaultCadencePolicy()

	// Even on a year boundary starter tenants only get the weekly report.
	got := policy.Resolve(tenantdomain.TierStarter, utc(2025, time.January, 1, 0, 0, 0))
	assert.Equal(t, domain.CadenceSet{Weekly: true}, got)
}

func TestCadencePolicy_GrowthGatesOnBoundaries(t *testing.T) {
	policy := DefaultCadencePolicy()

	cases := []struct {
		name string
		tier tenantdomain.SubscriptionTier
		ref  time.Time
		want domain.CadenceSet
	}{
		{
			"growth mid week",
			tenantdomain.TierGrowth,
			utc(2025, time.April, 15, 9, 30, 0),
			domain.CadenceSet{Weekly: true},
		},
		{
			"growth on quarter boundary",
			tenantdomain.TierGrowth,
			utc(2025, time.April, 1, 0, 0, 0),
			domain.CadenceSet{Weekly: true, Monthly: true, Quarterly: true},
		},
		{
			"pro on plain month boundary",
			tenantdomain.TierPro,
			utc(2025, time.May, 1, 0, 0, 0),
			domain.CadenceSet{Weekly: true, Monthly: true},
		},
		{
			"pro on year boundary",
			tenantdomain.TierPro,
			utc(2025, time.January, 1, 0, 0, 0),
			domain.CadenceSet{Weekly: true, Monthly: true, Quarterly: true, Yearly: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Resolve(tc.tier, tc.ref))
		})
	}
}

func TestCadencePolicy_UnknownTiersResolveEmpty(t *testing.T) {
	policy := DefaultCadencePolicy()
	ref := utc(2025, time.January, 1, 0, 0, 0)

	assert.False(t, policy.Resolve(tenantdomain.TierFree, ref).Any())
	assert.False(t, policy.Resolve(tenantdomain.SubscriptionTier("enterprise"), ref).Any())
	assert.False(t, policy.Resolve("", ref).Any())
}

func TestCadencePolicy_TiersCoversBothClasses(t *testing.T) {
	tiers := DefaultCadencePolicy().Tiers()
	assert.ElementsMatch(t, []tenantdomain.SubscriptionTier{
		tenantdomain.TierStarter, tenantdomain.TierGrowth, tenantdomain.TierPro,
	}, tiers)
}

func TestCadenceSet_EnabledOrder(t *testing.T) {
	set := domain.CadenceSet{Weekly: true, Monthly: true, Quarterly: true, Yearly: true}
	assert.Equal(t, []domain.Cadence{
		domain.CadenceWeekly, domain.CadenceMonthly, domain.CadenceQuarterly, domain.CadenceYearly,
	}, set.Enabled())
	assert.Empty(t, domain.CadenceSet{}.Enabled())
}
