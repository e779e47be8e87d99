package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListTenantsWithAccounts(ctx context.Context, db *gorm.DB, tiers []domain.SubscriptionTier, provider string) ([]domain.TenantWithAccounts, error) {
	if len(tiers) == 0 {
		return nil, nil
	}

	var tenants []domain.Tenant
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("subscription_tier IN ?", tiers).
		Order("created_at asc, id asc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, nil
	}

	tenantIDs := make([]snowflake.ID, 0, len(tenants))
	for _, t := range tenants {
		tenantIDs = append(tenantIDs, t.ID)
	}

	var accounts []domain.LinkedAccount
	err = db.WithContext(ctx).
		Model(&domain.LinkedAccount{}).
		Where("tenant_id IN ? AND provider = ? AND status = ?", tenantIDs, provider, domain.AccountStatusConnected).
		Order("created_at asc, id asc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	byTenant := make(map[snowflake.ID][]domain.LinkedAccount, len(tenants))
	for _, account := range accounts {
		byTenant[account.TenantID] = append(byTenant[account.TenantID], account)
	}

	out := make([]domain.TenantWithAccounts, 0, len(tenants))
	for _, t := range tenants {
		eligible := byTenant[t.ID]
		if len(eligible) == 0 {
			continue
		}
		out = append(out, domain.TenantWithAccounts{Tenant: t, Accounts: eligible})
	}
	return out, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, subscription_tier, metadata, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Order("created_at desc, id desc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}
