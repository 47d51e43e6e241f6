// Package calendar collects scheduled actions across the user's chat groups
// and indexes them by day for the month view.
package calendar

import (
	"context"
	"strings"
	"sync"
	"time"

	"zion/gateway/internal/config"
	"zion/gateway/internal/generation"
	"zion/gateway/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultColor tags actions when neither the module nor the group has a color
const DefaultColor = "#059669"

// Source is the part of the REST client the calendar depends on
type Source interface {
	ChatGroups(ctx context.Context) ([]models.Membership, error)
	ScheduledActions(ctx context.Context, groupID string) ([]models.ScheduledAction, error)
}

// Options tune the fan-out
type Options struct {
	Modules      map[string]config.ModuleConfig
	FanoutLimit  int
	GroupTimeout time.Duration
	Location     *time.Location
}

// Snapshot is the result of one completed fetch. It is immutable.
type Snapshot struct {
	Module        string    `json:"module"`
	Color         string    `json:"color"`
	Anchor        time.Time `json:"-"`
	GroupsQueried int       `json:"groups_queried"`
	FailedGroups  []string  `json:"failed_groups"`
	TotalActions  int       `json:"total_actions"`
	Undated       int       `json:"undated_actions"`
	FetchedAt     time.Time `json:"fetched_at"`

	index *Index
}

// ActionsForDate returns the actions on date's day
func (s *Snapshot) ActionsForDate(date time.Time) []models.ScheduledAction {
	return s.index.ActionsForDate(date)
}

// ActionsOn returns the actions of a "YYYY-MM-DD" key
func (s *Snapshot) ActionsOn(key string) []models.ScheduledAction {
	return s.index.ActionsOn(key)
}

// MonthView renders the anchor month of the snapshot
func (s *Snapshot) MonthView(today time.Time) []*models.CalendarDay {
	return MonthView(s.Anchor, today, s.index)
}

// Upcoming lists the next actions from the day of from
func (s *Snapshot) Upcoming(from time.Time, limit int) []models.ScheduledAction {
	return s.index.Upcoming(from, limit)
}

// Aggregator fetches and holds the calendar of one user
type Aggregator struct {
	src  Source
	opts Options
	log  *zap.Logger

	gen generation.Tracker

	mu     sync.RWMutex
	latest *Snapshot
}

// New creates a calendar aggregator
func New(src Source, opts Options, log *zap.Logger) *Aggregator {
	if opts.FanoutLimit <= 0 {
		opts.FanoutLimit = 4
	}
	if opts.GroupTimeout <= 0 {
		opts.GroupTimeout = 8 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{src: src, opts: opts, log: log.With(zap.String("component", "calendar"))}
}

// Location is the zone used for day keys
func (a *Aggregator) Location() *time.Location { return a.opts.Location }

// Latest returns the last completed snapshot, nil before the first fetch
func (a *Aggregator) Latest() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// RelevantGroups keeps the memberships whose group type is allowed for module.
// A module without a configured type set keeps every group.
func (a *Aggregator) RelevantGroups(module string, memberships []models.Membership) []models.Membership {
	mc, ok := a.opts.Modules[strings.ToLower(module)]
	if !ok || len(mc.AllowedGroupTypes) == 0 {
		return memberships
	}
	allowed := make(map[models.GroupType]struct{}, len(mc.AllowedGroupTypes))
	for _, t := range mc.AllowedGroupTypes {
		allowed[t] = struct{}{}
	}

	out := make([]models.Membership, 0, len(memberships))
	for _, m := range memberships {
		if _, ok := allowed[m.Group.GroupType]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (a *Aggregator) colorFor(module string, group models.ChatGroup) string {
	if mc, ok := a.opts.Modules[strings.ToLower(module)]; ok && mc.Color != "" {
		return mc.Color
	}
	if group.ColorCode != "" {
		return group.ColorCode
	}
	return DefaultColor
}

// Fetch lists memberships, fans out to every relevant group with bounded
// concurrency and builds a fresh snapshot. A newer Fetch cancels this one,
// in which case generation.ErrStale is returned.
func (a *Aggregator) Fetch(ctx context.Context, module string, anchor time.Time) (*Snapshot, error) {
	gctx, gen := a.gen.Begin(ctx)
	defer a.gen.Finish(gen)

	memberships, err := a.src.ChatGroups(gctx)
	if err != nil {
		if a.gen.Check(gen) != nil {
			return nil, generation.ErrStale
		}
		a.log.Warn("list chat groups", zap.Error(err))
		return nil, err
	}
	relevant := a.RelevantGroups(module, memberships)

	results := make([][]models.ScheduledAction, len(relevant))
	failed := make([]bool, len(relevant))

	var g errgroup.Group
	g.SetLimit(a.opts.FanoutLimit)
	for i, m := range relevant {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, a.opts.GroupTimeout)
			defer cancel()

			actions, err := a.src.ScheduledActions(rctx, m.Group.ID)
			if err != nil {
				failed[i] = true
				if gctx.Err() == nil {
					a.log.Warn("fetch scheduled actions",
						zap.String("group_id", m.Group.ID),
						zap.Error(err),
					)
				}
				return nil
			}

			group := m.Group
			color := a.colorFor(module, group)
			for j := range actions {
				actions[j].Group = &group
				actions[j].ModuleColor = color
			}
			results[i] = actions
			return nil
		})
	}
	_ = g.Wait()

	if a.gen.Check(gen) != nil {
		return nil, generation.ErrStale
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []models.ScheduledAction
	var failedIDs []string
	for i := range relevant {
		if failed[i] {
			failedIDs = append(failedIDs, relevant[i].Group.ID)
			continue
		}
		all = append(all, results[i]...)
	}
	if failedIDs == nil {
		failedIDs = []string{}
	}

	idx := BuildIndex(all, a.opts.Location)
	snap := &Snapshot{
		Module:        strings.ToLower(module),
		Color:         a.colorFor(module, models.ChatGroup{}),
		Anchor:        MonthStart(anchor.In(a.opts.Location)),
		GroupsQueried: len(relevant),
		FailedGroups:  failedIDs,
		TotalActions:  idx.Len(),
		Undated:       idx.Undated(),
		FetchedAt:     time.Now(),
		index:         idx,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen.Check(gen) != nil {
		return nil, generation.ErrStale
	}
	a.latest = snap

	a.log.Debug("calendar fetched",
		zap.String("module", snap.Module),
		zap.Int("groups", snap.GroupsQueried),
		zap.Int("failed", len(failedIDs)),
		zap.Int("actions", snap.TotalActions),
	)
	return snap, nil
}
