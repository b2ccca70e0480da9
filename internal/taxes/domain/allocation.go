package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
)

type ItemKind string

const (
	ItemSale     ItemKind = "sale"
	ItemContract ItemKind = "contract"
)

// Item is one approved record whose country tax has not been remitted.
type Item struct {
	ID         snowflake.ID    `json:"id"`
	Kind       ItemKind        `json:"kind"`
	CountryTax decimal.Decimal `json:"country_tax"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Pool is the unpaid items of one company in payment order.
type Pool struct {
	CompanyID   snowflake.ID
	CompanyName string
	CompanyType companydomain.Type
	Items       []Item
}

func (p Pool) TotalDue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.CountryTax)
	}
	return total
}

type CompanyOutstanding struct {
	CompanyID   snowflake.ID       `json:"company_id"`
	CompanyName string             `json:"company_name"`
	CompanyType companydomain.Type `json:"company_type"`
	TotalDue    decimal.Decimal    `json:"total_due"`
	ItemCount   int                `json:"item_count"`
	ItemIDs     []snowflake.ID     `json:"item_ids"`
}

// Outstanding is the country tax owed across a guild, one entry per company
// that owes anything.
type Outstanding struct {
	GuildID    string               `json:"guild_id"`
	Companies  []CompanyOutstanding `json:"companies"`
	GrandTotal decimal.Decimal      `json:"grand_total"`
}

// Summarize projects pools into an Outstanding, dropping empty pools and
// keeping the pool order.
func Summarize(guildID string, pools []Pool) *Outstanding {
	out := &Outstanding{
		GuildID:    guildID,
		Companies:  []CompanyOutstanding{},
		GrandTotal: decimal.Zero,
	}
	for _, pool := range pools {
		if len(pool.Items) == 0 {
			continue
		}
		ids := make([]snowflake.ID, 0, len(pool.Items))
		for _, item := range pool.Items {
			ids = append(ids, item.ID)
		}
		due := pool.TotalDue()
		out.Companies = append(out.Companies, CompanyOutstanding{
			CompanyID:   pool.CompanyID,
			CompanyName: pool.CompanyName,
			CompanyType: pool.CompanyType,
			TotalDue:    due,
			ItemCount:   len(pool.Items),
			ItemIDs:     ids,
		})
		out.GrandTotal = out.GrandTotal.Add(due)
	}
	return out
}

type CompanyAllocation struct {
	CompanyID   snowflake.ID
	Total       decimal.Decimal
	SaleIDs     []snowflake.ID
	ContractIDs []snowflake.ID
}

type Allocation struct {
	Companies      []CompanyAllocation
	TotalAllocated decimal.Decimal
}

// Allocate spends budget on the pools in order. An item is either paid in
// full or not at all, and allocation stops at the first item the remaining
// budget cannot cover, so later items never jump the queue.
func Allocate(pools []Pool, budget decimal.Decimal) Allocation {
	result := Allocation{TotalAllocated: decimal.Zero}
	remaining := budget

	for _, pool := range pools {
		current := CompanyAllocation{CompanyID: pool.CompanyID, Total: decimal.Zero}
		stopped := false
		for _, item := range pool.Items {
			if remaining.LessThan(item.CountryTax) {
				stopped = true
				break
			}
			remaining = remaining.Sub(item.CountryTax)
			current.Total = current.Total.Add(item.CountryTax)
			switch item.Kind {
			case ItemContract:
				current.ContractIDs = append(current.ContractIDs, item.ID)
			default:
				current.SaleIDs = append(current.SaleIDs, item.ID)
			}
		}
		if len(current.SaleIDs)+len(current.ContractIDs) > 0 {
			result.Companies = append(result.Companies, current)
			result.TotalAllocated = result.TotalAllocated.Add(current.Total)
		}
		if stopped || !remaining.IsPositive() {
			break
		}
	}
	return result
}
