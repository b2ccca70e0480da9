package fixture

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	companyrepo "github.com/smallbiznis/civitas/internal/company/repository"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	guildrepo "github.com/smallbiznis/civitas/internal/guild/repository"
	"github.com/smallbiznis/civitas/internal/testutil"
	"gorm.io/gorm"
)

// SeedGuild stores a guild with chef role "r-chef", officer role "r-officer"
// and the given rates.
func SeedGuild(t *testing.T, db *gorm.DB, guildID, serverRate, countryRate string) *guilddomain.GuildConfig {
	t.Helper()
	cfg := &guilddomain.GuildConfig{
		GuildID:               guildID,
		CountryName:           "Edora",
		ChefRoleID:            "r-chef",
		OfficerRoleID:         "r-officer",
		TaxesChannelID:        "c-taxes",
		ServerTaxRate:         decimal.RequireFromString(serverRate),
		CountryTaxRate:        decimal.RequireFromString(countryRate),
		DefaultCompanyTaxRate: decimal.RequireFromString("0.15"),
		ReminderMode:          guilddomain.ReminderWeeks,
		ReminderEvery:         1,
		CreatedAt:             testutil.Epoch,
		UpdatedAt:             testutil.Epoch,
	}
	if err := guildrepo.Provide().Upsert(context.Background(), db, cfg); err != nil {
		t.Fatalf("seed guild: %v", err)
	}
	return cfg
}

// SeedCompany stores a company owned by ownerID with role ids derived from
// its name ("r-<name>-ceo", "r-<name>-manager", "r-<name>-employee").
func SeedCompany(t *testing.T, db *gorm.DB, id snowflake.ID, guildID, name string, typ companydomain.Type, ownerID, taxRate string) *companydomain.Company {
	t.Helper()
	company := &companydomain.Company{
		ID:             id,
		GuildID:        guildID,
		Name:           name,
		Slug:           name,
		Type:           typ,
		OwnerID:        ownerID,
		CEORoleID:      "r-" + name + "-ceo",
		ManagerRoleID:  "r-" + name + "-manager",
		EmployeeRoleID: "r-" + name + "-employee",
		TaxRate:        decimal.RequireFromString(taxRate),
		CreatedAt:      testutil.Epoch,
		UpdatedAt:      testutil.Epoch,
	}
	if err := companyrepo.Provide().Insert(context.Background(), db, company); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company
}
