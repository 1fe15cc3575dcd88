package core

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/internal/snapshot"
	"github.com/codetrawl/codetrawl/schema"
)

// Pipeline drives the full per-commit cycle: filter, checkout, analyze,
// post-process, emit. There is exactly one mutable shared resource, the
// working copy, and the pipeline is its single writer; checkout and
// analysis strictly alternate, so no commit is analyzed while the snapshot
// reflects another one.
type Pipeline struct {
	source    contract.CommitSource
	snapshots *snapshot.Manager
	backend   contract.Backend
	origin    string
	tag       string
	scope     []string
	limit     int
	now       func() time.Time
}

// NewPipeline wires a pipeline. scope narrows both commit filtering and
// per-commit file enumeration to paths ending with one of its suffixes;
// limit bounds the number of emitted items, 0 meaning unbounded.
func NewPipeline(source contract.CommitSource, snapshots *snapshot.Manager, backend contract.Backend, origin, tag string, scope []string, limit int) *Pipeline {
	return &Pipeline{
		source:    source,
		snapshots: snapshots,
		backend:   backend,
		origin:    origin,
		tag:       tag,
		scope:     scope,
		limit:     limit,
		now:       time.Now,
	}
}

// Run returns the lazily-produced item sequence. The working copy is
// ensured once up front and pruned exactly once on every exit path:
// exhaustion, fatal error, or the consumer abandoning the sequence. A
// prune failure on the success path is surfaced; during an unwind it is
// only logged so it cannot mask the original error.
func (p *Pipeline) Run(ctx context.Context) iter.Seq2[*schema.Item, error] {
	return func(yield func(*schema.Item, error) bool) {
		if err := p.snapshots.Ensure(ctx); err != nil {
			yield(nil, err)
			return
		}

		var (
			runErr    error
			abandoned bool
			index     int
			inspected int
		)
		for commit, err := range p.source.Commits(ctx) {
			if err != nil {
				runErr = err
				break
			}
			if p.backend.FilterCommit(commit, index, p.scope) {
				index++
				continue
			}
			index++

			if err := p.snapshots.Checkout(ctx, commit.ID); err != nil {
				runErr = err
				break
			}
			analysis, err := p.backend.Analyze(ctx, commit, p.snapshots.WorktreePath(), p.scope)
			if err != nil {
				contract.LogWarn("analysis failed at "+commit.ID, err)
				runErr = fmt.Errorf("analysis failed at %s: %w", commit.ID, err)
				break
			}
			data := p.backend.PostProcess(commit.ToMap(), analysis)

			if !yield(p.wrap(commit, data), nil) {
				abandoned = true
				break
			}
			inspected++
			if p.limit > 0 && inspected >= p.limit {
				break
			}
		}

		pruneErr := p.snapshots.Prune(ctx)
		switch {
		case runErr != nil:
			if pruneErr != nil {
				contract.LogWarn("prune failed during unwind", pruneErr)
			}
			yield(nil, runErr)
			return
		case abandoned:
			if pruneErr != nil {
				contract.LogWarn("prune failed after early termination", pruneErr)
			}
			return
		case pruneErr != nil:
			yield(nil, pruneErr)
			return
		}
		contract.LogInfo("Fetch process completed: %d commits inspected", inspected)
	}
}

// wrap stamps the metadata envelope on one processed commit.
func (p *Pipeline) wrap(commit *schema.CommitRecord, data map[string]any) *schema.Item {
	desc := p.backend.Descriptor()
	return &schema.Item{
		BackendName:      desc.Name,
		BackendVersion:   desc.Version,
		CodetrawlVersion: schema.CoreVersion,
		Timestamp:        float64(p.now().UnixNano()) / float64(time.Second),
		Origin:           p.origin,
		UUID:             contract.ItemUUID(p.origin, commit.ID),
		UpdatedOn:        float64(commit.CommitDate.Unix()),
		Category:         desc.Category,
		Tag:              p.tag,
		Data:             data,
	}
}
