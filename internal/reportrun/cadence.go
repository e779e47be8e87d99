package reportrun

import (
	"time"

	"github.com/finvue/finvue/internal/reportrun/domain"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
)

// CadencePolicy maps subscription tiers onto reporting cadences. Tiers in the
// starter class receive weekly reports only. Tiers in the growth class receive
// weekly reports plus monthly, quarterly and yearly reports gated on the
// matching calendar boundary. Tiers in neither class receive nothing.
type CadencePolicy struct {
	starter map[tenantdomain.SubscriptionTier]struct{}
	growth  map[tenantdomain.SubscriptionTier]struct{}
}

// DefaultCadencePolicy returns the policy used in production.
func DefaultCadencePolicy() CadencePolicy {
	return NewCadencePolicy(
		[]tenantdomain.SubscriptionTier{tenantdomain.TierStarter},
		[]tenantdomain.SubscriptionTier{tenantdomain.TierGrowth, tenantdomain.TierPro},
	)
}

// NewCadencePolicy builds a policy from explicit tier classes.
func NewCadencePolicy(starter, growth []tenantdomain.SubscriptionTier) CadencePolicy {
	p := CadencePolicy{
		starter: make(map[tenantdomain.SubscriptionTier]struct{}, len(starter)),
		growth:  make(map[tenantdomain.SubscriptionTier]struct{}, len(growth)),
	}
	for _, tier := range starter {
		p.starter[tier] = struct{}{}
	}
	for _, tier := range growth {
		p.growth[tier] = struct{}{}
	}
	return p
}

// Resolve returns the cadences that apply to tier at the reference instant.
// Unknown tiers resolve to the empty set, so a tenant on an unrecognized plan
// is skipped rather than over-reported.
func (p CadencePolicy) Resolve(tier tenantdomain.SubscriptionTier, ref time.Time) domain.CadenceSet {
	if _, ok := p.starter[tier]; ok {
		return domain.CadenceSet{Weekly: true}
	}
	if _, ok := p.growth[tier]; ok {
		return domain.CadenceSet{
			Weekly:    true,
			Monthly:   IsStartOfMonth(ref),
			Quarterly: IsStartOfQuarter(ref),
			Yearly:    IsStartOfYear(ref),
		}
	}
	return domain.CadenceSet{}
}

// Tiers returns every tier the policy reports for, starter class first.
func (p CadencePolicy) Tiers() []tenantdomain.SubscriptionTier {
	out := make([]tenantdomain.SubscriptionTier, 0, len(p.starter)+len(p.growth))
	for tier := range p.starter {
		out = append(out, tier)
	}
	for tier := range p.growth {
		out = append(out, tier)
	}
	return out
}
