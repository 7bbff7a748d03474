package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog()

	premium := catalog.Get(PlanIDPremium)
	require.NotNil(t, premium)
	assert.Equal(t, "Premium", premium.Name)
	assert.False(t, premium.IsFree())

	assert.Nil(t, catalog.Get("enterprise"))
}

func TestCatalogFree(t *testing.T) {
	catalog := NewCatalog()

	free := catalog.Free()
	require.NotNil(t, free)
	assert.Equal(t, PlanIDFree, free.ID)
	assert.True(t, free.IsFree())
}

func TestCatalogUpgradesAfter(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name    string
		planID  string
		wantIDs []string
	}{
		{
			name:    "free can upgrade to premium and pro",
			planID:  PlanIDFree,
			wantIDs: []string{PlanIDPremium, PlanIDPro},
		},
		{
			name:    "premium can upgrade to pro",
			planID:  PlanIDPremium,
			wantIDs: []string{PlanIDPro},
		},
		{
			name:    "pro has no upgrades",
			planID:  PlanIDPro,
			wantIDs: []string{},
		},
		{
			name:    "unknown plan has no upgrades",
			planID:  "enterprise",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upgrades := catalog.UpgradesAfter(tt.planID)
			if tt.wantIDs == nil {
				assert.Nil(t, upgrades)
				return
			}
			ids := make([]string, 0, len(upgrades))
			for _, p := range upgrades {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
