// Package scheduler implements the Scheduler (§4.7): it runs at most N
// Pipeline Runners concurrently and returns every ProjectOutcome in
// discovery order regardless of completion order.
package scheduler

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ptrgo/ptr/internal/environment"
	"github.com/ptrgo/ptr/internal/manifest"
	"github.com/ptrgo/ptr/internal/pipeline"
	"github.com/ptrgo/ptr/internal/statusline"
)

// Options configures one Scheduler run.
type Options struct {
	Concurrency       int
	HeartbeatInterval time.Duration
	Color             bool
	Pipeline          pipeline.Options
}

// liveState tracks the in-flight counts and names the heartbeat reports,
// guarded for concurrent access from every worker goroutine.
type liveState struct {
	mu      sync.Mutex
	names   map[int]string
	started int32
	running int32
	pass    int32
	fail    int32
	timeout int32
}

func newLiveState() *liveState {
	return &liveState{names: make(map[int]string)}
}

// enter records that project i has started its pipeline run.
func (s *liveState) enter(i int, name string) {
	atomic.AddInt32(&s.started, 1)
	atomic.AddInt32(&s.running, 1)
	s.mu.Lock()
	s.names[i] = name
	s.mu.Unlock()
}

// leave records that project i's pipeline run finished with classification.
func (s *liveState) leave(i int, classification string) {
	s.mu.Lock()
	delete(s.names, i)
	s.mu.Unlock()
	atomic.AddInt32(&s.running, -1)
	switch {
	case strings.HasPrefix(classification, "timeout-"):
		atomic.AddInt32(&s.timeout, 1)
	case classification == "pass", classification == "skipped-disabled":
		atomic.AddInt32(&s.pass, 1)
	default:
		atomic.AddInt32(&s.fail, 1)
	}
}

// counts builds the heartbeat's Counts snapshot for totalProjects.
func (s *liveState) counts(totalProjects int) statusline.Counts {
	started := int(atomic.LoadInt32(&s.started))
	return statusline.Counts{
		Queued:  totalProjects - started,
		Running: int(atomic.LoadInt32(&s.running)),
		Pass:    int(atomic.LoadInt32(&s.pass)),
		Fail:    int(atomic.LoadInt32(&s.fail)),
		Timeout: int(atomic.LoadInt32(&s.timeout)),
	}
}

// runningNames returns the display names of currently running projects.
func (s *liveState) runningNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.names))
	for _, name := range s.names {
		names = append(names, name)
	}
	return names
}

// displayName is the short, human-facing label the heartbeat uses for a
// Project: its working directory's base name.
func displayName(proj *manifest.Project) string {
	return filepath.Base(proj.WorkingDir)
}

// Run dispatches pipeline.Run for every project, bounded by
// opts.Concurrency, and returns one ProjectOutcome per project in the same
// order projects was given (discovery order). On ctx cancellation, any
// project whose worker had not yet started running is recorded as
// skipped-cancelled instead of being run, and so is an in-flight project
// whose pipeline did not pass before the cancellation stopped it.
func Run(ctx context.Context, projects []*manifest.Project, env *environment.Environment, opts Options, logger *log.Logger) []*pipeline.ProjectOutcome {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*pipeline.ProjectOutcome, len(projects))

	live := newLiveState()
	hb := statusline.NewHeartbeat(opts.Color)

	var stopHeartbeat chan struct{}
	if opts.HeartbeatInterval > 0 {
		stopHeartbeat = make(chan struct{})
		go func() {
			ticker := time.NewTicker(opts.HeartbeatInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					logger.Info(hb.Render(live.counts(len(projects)), live.runningNames(), statusline.TerminalWidth()))
				case <-stopHeartbeat:
					return
				}
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, proj := range projects {
		i, proj := i, proj
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = &pipeline.ProjectOutcome{Project: proj, Classification: "skipped-cancelled"}
				return nil
			}
			live.enter(i, displayName(proj))
			out := pipeline.Run(gctx, proj, env, opts.Pipeline)
			if gctx.Err() != nil && out.Classification != "pass" && out.Classification != "skipped-disabled" {
				out = &pipeline.ProjectOutcome{Project: proj, Steps: out.Steps, Duration: out.Duration, Classification: "skipped-cancelled"}
			}
			results[i] = out
			live.leave(i, results[i].Classification)
			return nil
		})
	}
	_ = g.Wait()

	if stopHeartbeat != nil {
		close(stopHeartbeat)
	}

	return results
}
