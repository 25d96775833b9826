package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
)

// Pruner enforces the retention policy on history records.
type Pruner struct {
	storage   history.Storage
	config    *config.RetentionConfig
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a pruner. A nil cfg uses the defaults.
func NewPruner(storage history.Storage, cfg *config.RetentionConfig) *Pruner {
	if cfg == nil {
		cfg = &config.Default().History.Retention
	}

	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "history.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
	}

	if total > 0 {
		p.logger.Info("history pruning completed",
			"total_deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)

	deleted, err := p.storage.Delete(ctx, &history.Query{EndTime: &cutoff})
	if err != nil {
		return 0, history.NewRetentionError(p.config.Days, err)
	}
	p.logger.Debug("pruned records by age",
		"deleted_count", deleted,
		"cutoff_time", cutoff,
	)
	return deleted, nil
}

// pruneByCount deletes exactly the oldest excess records by ID so records
// sharing a timestamp with the cutoff are not over-deleted.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &history.Query{})
	if err != nil {
		return 0, history.NewRetentionError(p.config.Days, err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}
	excess := count - p.config.MaxRecords

	oldest, err := p.storage.Query(ctx, &history.Query{
		SortBy:    "created_at",
		SortOrder: "asc",
		Limit:     int(excess),
	})
	if err != nil {
		return 0, history.NewRetentionError(p.config.Days, err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	ids := make([]string, len(oldest))
	for i, r := range oldest {
		ids[i] = r.ID
	}

	deleted, err := p.storage.Delete(ctx, &history.Query{IDs: ids})
	if err != nil {
		return 0, history.NewRetentionError(p.config.Days, err)
	}
	p.logger.Debug("pruned records by count",
		"deleted_count", deleted,
		"max_records", p.config.MaxRecords,
	)
	return deleted, nil
}

// Start starts scheduled pruning.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled pruning time, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
