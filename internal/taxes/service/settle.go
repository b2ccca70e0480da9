package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/notify"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/smallbiznis/civitas/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settle spends the payer's payment on the unpaid country tax of the
// companies they own. The whole allocation commits or none of it does.
func (s *Service) Settle(ctx context.Context, req domain.SettleRequest) (*domain.SettleResult, error) {
	result, err := s.settle(ctx, req)
	if err != nil {
		s.metrics.RecordSettlement(ctx, apperr.CodeOf(err), 0, 0)
		return nil, err
	}

	items := 0
	for _, r := range result.Remittances {
		items += r.ItemCount()
	}
	s.metrics.RecordSettlement(ctx, "ok", result.TotalAllocated.InexactFloat64(), items)
	return result, nil
}

func (s *Service) settle(ctx context.Context, req domain.SettleRequest) (*domain.SettleResult, error) {
	guildID := strings.TrimSpace(req.GuildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	actor := req.Actor
	if strings.TrimSpace(actor.ID) == "" {
		return nil, domain.ErrInvalidPayer
	}
	amount := money.Round(req.AmountPaid)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.guildSvc.Get(ctx, guildID); err != nil {
		return nil, err
	}
	companies, err := s.companySvc.ListByOwner(ctx, guildID, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, domain.ErrNoCompanies
	}
	for _, c := range companies {
		subjects := authorization.CompanySubjects(actor, c.Roles())
		if err := s.authz.Authorize(ctx, guildID, actor, subjects, authorization.ObjectTax, authorization.ActionTaxSettle); err != nil {
			return nil, err
		}
	}

	token, locked, err := s.guard.LockSettlement(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("settlement lock: %w", err)
	}
	if !locked {
		return nil, domain.ErrSettlementInProgress
	}
	defer func() {
		if err := s.guard.ReleaseSettlement(context.WithoutCancel(ctx), guildID, token); err != nil {
			s.log.Warn("failed to release settlement lock", zap.String("guild_id", guildID), zap.Error(err))
		}
	}()

	now := s.clock.Now().UTC()
	var remittances []domain.Remittance
	var allocation domain.Allocation

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pools, err := s.loadPools(ctx, tx, guildID, companies)
		if err != nil {
			return err
		}
		due := 0
		for _, pool := range pools {
			due += len(pool.Items)
		}
		if due == 0 {
			return domain.ErrNothingDue
		}

		allocation = domain.Allocate(pools, amount)
		if len(allocation.Companies) == 0 {
			return domain.ErrInsufficientPayment
		}

		for _, share := range allocation.Companies {
			remittance, err := domain.NewRemittance(domain.NewRemittanceParams{
				ID:          s.genID.Generate(),
				GuildID:     guildID,
				CompanyID:   share.CompanyID,
				TotalAmount: share.Total,
				SaleIDs:     share.SaleIDs,
				ContractIDs: share.ContractIDs,
				PaidBy:      actor.ID,
				PaidByName:  actor.Name,
				PaidAt:      now,
			})
			if err != nil {
				return err
			}
			if err := s.markPaid(ctx, tx, share, remittance.ID, now); err != nil {
				return err
			}
			if err := s.repo.Insert(ctx, tx, remittance); err != nil {
				return err
			}
			remittances = append(remittances, *remittance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.SettleResult{
		Remittances:    remittances,
		TotalAllocated: allocation.TotalAllocated,
		AmountPaid:     amount,
		Unallocated:    amount.Sub(allocation.TotalAllocated),
	}

	s.afterSettle(ctx, guildID, actor, result)
	return result, nil
}

// markPaid flips the paid flag of every allocated record. Any record that no
// longer qualifies means another settlement got there first.
func (s *Service) markPaid(ctx context.Context, tx *gorm.DB, share domain.CompanyAllocation, remittanceID snowflake.ID, at time.Time) error {
	if len(share.SaleIDs) > 0 {
		n, err := s.saleRepo.MarkCountryTaxPaid(ctx, tx, share.SaleIDs, remittanceID, at)
		if err != nil {
			return err
		}
		if n != int64(len(share.SaleIDs)) {
			return domain.ErrConcurrentSettlement
		}
	}
	if len(share.ContractIDs) > 0 {
		n, err := s.contractRepo.MarkCountryTaxPaid(ctx, tx, share.ContractIDs, remittanceID, at)
		if err != nil {
			return err
		}
		if n != int64(len(share.ContractIDs)) {
			return domain.ErrConcurrentSettlement
		}
	}
	return nil
}

func (s *Service) afterSettle(ctx context.Context, guildID string, actor authorization.Actor, result *domain.SettleResult) {
	summaries := make([]notify.RemittanceSummary, 0, len(result.Remittances))
	for _, r := range result.Remittances {
		targetID := r.ID.String()
		_ = s.auditSvc.AuditLog(ctx, guildID, actor.ID, auditdomain.ActionTaxSettle, "tax_remittance", &targetID, map[string]any{
			"reference":    r.Reference,
			"company_id":   r.CompanyID.String(),
			"total_amount": money.Format(r.TotalAmount),
			"sale_ids":     []string(r.SaleIDs),
			"contract_ids": []string(r.ContractIDs),
		})
		summaries = append(summaries, notify.RemittanceSummary{
			RemittanceID: targetID,
			Reference:    r.Reference,
			CompanyID:    r.CompanyID.String(),
			TotalAmount:  money.Format(r.TotalAmount),
			ItemCount:    r.ItemCount(),
		})
	}

	err := s.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventTaxSettled,
		GuildID:    guildID,
		OccurredAt: s.clock.Now().UTC(),
		Settlement: &notify.SettlementPayload{
			PayerID:        actor.ID,
			AmountPaid:     money.Format(result.AmountPaid),
			TotalAllocated: money.Format(result.TotalAllocated),
			Remittances:    summaries,
		},
	})
	if err != nil {
		s.log.Warn("failed to publish settlement", zap.String("guild_id", guildID), zap.Error(err))
	}
	s.RefreshOutstanding(ctx, guildID)

	s.log.Info("country tax settled",
		zap.String("guild_id", guildID),
		zap.String("payer_id", actor.ID),
		zap.String("amount_paid", money.Format(result.AmountPaid)),
		zap.String("total_allocated", money.Format(result.TotalAllocated)),
		zap.Int("remittances", len(result.Remittances)),
	)
}
