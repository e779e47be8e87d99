package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ListTenantsWithAccounts returns tenants on one of the given tiers that
	// have at least one connected account for the provider, annotated with
	// those accounts.
	ListTenantsWithAccounts(ctx context.Context, db *gorm.DB, tiers []SubscriptionTier, provider string) ([]TenantWithAccounts, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
}
