// Package pipeline orchestrates the fetch, dedup, and fan-out cycle.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"news_bot/internal/model"
	"news_bot/internal/source"
	"news_bot/internal/storage"
)

// Notifier delivers a single article to a channel. When mentionRoleID is
// non-empty, the implementation sends the role mention as a separate
// message preceding the article embed.
type Notifier interface {
	SendArticle(channelID string, article model.Article, mentionRoleID string) error
}

// GuildCount holds per-guild delivery results for one cycle.
type GuildCount struct {
	Delivered int
	Failed    int
}

// Report summarizes one dispatch cycle.
type Report struct {
	// Skipped is set when another cycle was already in progress and this
	// invocation did nothing.
	Skipped bool
	// NewArticles is the count of not-yet-posted articles per source.
	NewArticles map[model.FeedKind]int
	// Guilds maps guild IDs to their delivery counts.
	Guilds map[string]GuildCount
}

// Delivered returns the total number of successful deliveries.
func (r *Report) Delivered() int {
	n := 0
	for _, g := range r.Guilds {
		n += g.Delivered
	}
	return n
}

// Pipeline runs dispatch cycles: it scrapes each source, filters out
// already-posted links, and fans new articles out to configured guilds.
// It holds no state between cycles; all state crosses the storage
// boundary so configuration changes take effect on the next cycle.
type Pipeline struct {
	store    storage.Storage
	sources  []source.Extractor
	notifier Notifier
	log      *slog.Logger

	// Advisory guard: overlapping cycles could double-post a new link
	// because the seen-set commit happens only after a successful send.
	mu sync.Mutex
}

// New creates a Pipeline over the given sources.
func New(store storage.Storage, notifier Notifier, log *slog.Logger, sources ...source.Extractor) *Pipeline {
	return &Pipeline{
		store:    store,
		sources:  sources,
		notifier: notifier,
		log:      log,
	}
}

// RunCycle runs one full dispatch cycle across all configured guilds.
func (p *Pipeline) RunCycle(ctx context.Context) *Report {
	return p.run(ctx, "")
}

// RunCycleFor runs one dispatch cycle delivering only to the given guild.
func (p *Pipeline) RunCycleFor(ctx context.Context, guildID string) *Report {
	return p.run(ctx, guildID)
}

func (p *Pipeline) run(ctx context.Context, onlyGuild string) *Report {
	report := &Report{
		NewArticles: make(map[model.FeedKind]int),
		Guilds:      make(map[string]GuildCount),
	}

	if !p.mu.TryLock() {
		p.log.Warn("dispatch cycle already in progress, skipping")
		report.Skipped = true
		return report
	}
	defer p.mu.Unlock()

	posted, err := p.store.LoadPostedLinks(ctx)
	if err != nil {
		p.log.Error("load posted links", "error", err)
		return report
	}

	// Summaries are fetched once per link per cycle, shared across guilds.
	summaries := make(map[string]string)
	produced := make(map[string]struct{})

	for _, src := range p.sources {
		if ctx.Err() != nil {
			return report
		}
		p.dispatchSource(ctx, src, onlyGuild, posted, produced, summaries, report)
	}

	return report
}

func (p *Pipeline) dispatchSource(
	ctx context.Context,
	src source.Extractor,
	onlyGuild string,
	posted map[string]struct{},
	produced map[string]struct{},
	summaries map[string]string,
	report *Report,
) {
	kind := src.Kind()

	candidates, err := src.ListCandidates(ctx)
	if err != nil {
		// Soft failure: the cycle keeps running for other sources.
		p.log.Error("list candidates", "kind", kind, "error", err)
	}

	var fresh []model.Article
	for _, a := range candidates {
		if _, ok := posted[a.Link]; ok {
			continue
		}
		if _, ok := produced[a.Link]; ok {
			// Listed twice on one page, or by a sibling source.
			continue
		}
		produced[a.Link] = struct{}{}
		fresh = append(fresh, a)
	}
	report.NewArticles[kind] = len(fresh)

	if len(fresh) == 0 {
		return
	}
	p.log.Info("found new articles", "kind", kind, "count", len(fresh))

	targets, err := p.resolveTargets(ctx, kind, onlyGuild)
	if err != nil {
		p.log.Error("resolve targets", "kind", kind, "error", err)
		return
	}

	committed := make(map[string]struct{})
	for _, target := range targets {
		if ctx.Err() != nil {
			return
		}
		counts := report.Guilds[target.GuildID]
		for _, a := range fresh {
			a.Summary = p.summary(ctx, src, a.Link, summaries)

			if err := p.notifier.SendArticle(target.ChannelID, a, target.RoleID); err != nil {
				// A broken channel never blocks other guilds or articles.
				p.log.Error("deliver article",
					"kind", kind, "guild", target.GuildID, "channel", target.ChannelID,
					"link", a.Link, "error", err)
				counts.Failed++
				continue
			}
			counts.Delivered++

			// Commit after the first successful delivery to any guild.
			// A guild that failed above will not see this article again;
			// the failure stays visible in the report and the log.
			if _, ok := committed[a.Link]; !ok {
				if err := p.store.MarkPosted(ctx, a.Link); err != nil {
					// The article may be re-posted next cycle.
					p.log.Error("mark posted", "link", a.Link, "error", err)
				} else {
					committed[a.Link] = struct{}{}
				}
			}
		}
		report.Guilds[target.GuildID] = counts
	}
}

func (p *Pipeline) resolveTargets(ctx context.Context, kind model.FeedKind, onlyGuild string) ([]model.FeedTarget, error) {
	if onlyGuild == "" {
		return p.store.ListFeedTargets(ctx, kind)
	}
	target, err := p.store.GetFeedTarget(ctx, onlyGuild, kind)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	return []model.FeedTarget{*target}, nil
}

func (p *Pipeline) summary(ctx context.Context, src source.Extractor, link string, cache map[string]string) string {
	if s, ok := cache[link]; ok {
		return s
	}
	s, err := src.FetchSummary(ctx, link)
	if err != nil {
		p.log.Warn("fetch summary", "link", link, "error", err)
		s = ""
	}
	cache[link] = s
	return s
}
