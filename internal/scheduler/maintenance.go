// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"time"

	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/service"
)

// Job names.
const (
	JobPurgeActivity  = "purge-activity"
	JobPendingGauges  = "pending-gauges"
	JobPruneLimiters  = "prune-limiters"
	limiterPruneLimit = 10000
)

// Maintenance lists the collaborators of the built-in jobs. Nil fields
// disable the matching job.
type Maintenance struct {
	Activity *service.ActivityService
	// Retention is how long activity entries are kept. Zero keeps them forever.
	Retention time.Duration

	Approval        *service.ApprovalService
	RateLimiter     *middleware.RateLimiter
	LoginProtection *middleware.LoginProtection
}

// RegisterMaintenance registers the built-in jobs.
func (s *Scheduler) RegisterMaintenance(m Maintenance) error {
	if m.Activity != nil && m.Retention > 0 {
		err := s.Register(JobPurgeActivity, "@daily", func(ctx context.Context) error {
			n, err := m.Activity.Purge(ctx, m.Retention)
			if err != nil {
				return err
			}
			if n > 0 {
				s.logger.Info("purged activity entries", "count", n, "retention", m.Retention)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if m.Approval != nil {
		if err := s.Register(JobPendingGauges, "*/5 * * * *", m.Approval.RefreshPendingGauges); err != nil {
			return err
		}
	}

	if m.RateLimiter != nil || m.LoginProtection != nil {
		err := s.Register(JobPruneLimiters, "@hourly", func(context.Context) error {
			if m.RateLimiter != nil && m.RateLimiter.Prune(limiterPruneLimit) {
				s.logger.Info("rate limiter state cleared", "limit", limiterPruneLimit)
			}
			if m.LoginProtection != nil {
				if n := m.LoginProtection.Prune(limiterPruneLimit); n > 0 {
					s.logger.Debug("pruned login failure records", "count", n)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
