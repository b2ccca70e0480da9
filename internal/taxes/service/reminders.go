package service

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/civitas/internal/notify"
	"go.uber.org/zap"
)

func (s *Service) RunReminders(ctx context.Context, now time.Time) (int, error) {
	guilds, err := s.guildSvc.ListReminderEnabled(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	var errs []error
	for _, guild := range guilds {
		if !guild.ReminderDue(now) {
			continue
		}
		out, err := s.ComputeOutstanding(ctx, guild.GuildID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// nothing owed; the interval is left open for the next run
		if !out.GrandTotal.IsPositive() {
			continue
		}

		err = s.notifier.Notify(ctx, notify.Event{
			Type:       notify.EventTaxReminder,
			GuildID:    guild.GuildID,
			OccurredAt: now.UTC(),
			Reminder: &notify.ReminderPayload{
				ChannelID:     guild.TaxesChannelID,
				ChefRoleID:    guild.ChefRoleID,
				OfficerRoleID: guild.OfficerRoleID,
				Outstanding:   outstandingPayload(out),
			},
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.guildSvc.MarkReminded(ctx, guild.GuildID, now); err != nil {
			errs = append(errs, err)
			continue
		}
		notified++
		s.log.Info("tax reminder sent",
			zap.String("guild_id", guild.GuildID),
			zap.String("country", guild.CountryName),
			zap.Int("companies", len(out.Companies)),
		)
	}
	return notified, errors.Join(errs...)
}
