// Package orchestrator coordinates inbound game events with the remote
// completion endpoint: per-user admission, context assembly, off-caller
// dispatch and the hand-back of results onto a single apply goroutine.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gpt-commenter/internal/config"
	"gpt-commenter/internal/gameevent"
	"gpt-commenter/internal/history"
	"gpt-commenter/internal/llm"
	"gpt-commenter/internal/metrics"
	"gpt-commenter/internal/prompt"
	"gpt-commenter/internal/ratelimit"
	"gpt-commenter/internal/storage"
)

// DeliveryMode selects who receives a generated message.
type DeliveryMode int

const (
	Broadcast DeliveryMode = iota
	Reply
)

// Sink receives generated text. It is only ever called from the apply
// goroutine, so implementations may touch non-thread-safe server state.
type Sink interface {
	Broadcast(text string)
	Reply(userID, text string)
}

const (
	uninitializedMsg = "Error: OpenAI service is not properly initialized. Check server logs."
	fallbackMsg      = "Sorry, I encountered an error processing your request. Please try again later."
	rateLimitedFmt   = "Rate limit reached. Please try again in %d seconds."
)

// job is an admitted request headed for the worker pool.
type job struct {
	ev             gameevent.Event
	p              prompt.Prompt
	mode           DeliveryMode
	conversational bool
}

// outcome is a resolved request headed for the apply goroutine. For
// denied or short-circuited requests text is pre-filled and no worker is
// involved.
type outcome struct {
	job
	text string
}

type Orchestrator struct {
	cfg     *config.Manager
	factory *llm.Factory
	history *history.Manager
	limits  *ratelimit.Limiter
	metrics *metrics.Collector
	rec     storage.Recorder
	sink    Sink

	clientMu sync.RWMutex
	client   llm.Client

	jobs     chan job
	outcomes chan outcome
	workerWg sync.WaitGroup
	applyWg  sync.WaitGroup
	stopOnce sync.Once
}

// New assembles an orchestrator around its collaborators. client may be
// nil when construction failed upstream; every request then
// short-circuits to a fixed unavailability message instead of crashing
// the host. factory and rec are optional.
func New(
	cfg *config.Manager,
	client llm.Client,
	factory *llm.Factory,
	hist *history.Manager,
	limits *ratelimit.Limiter,
	col *metrics.Collector,
	rec storage.Recorder,
	sink Sink,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		factory:  factory,
		history:  hist,
		limits:   limits,
		metrics:  col,
		rec:      rec,
		sink:     sink,
		client:   client,
		jobs:     make(chan job, 64),
		outcomes: make(chan outcome, 64),
	}
}

// Start launches the worker pool and the apply goroutine. Workers own
// the blocking completion calls; the apply goroutine owns history
// appends, transcript recording and sink delivery.
func (o *Orchestrator) Start(ctx context.Context) {
	n := o.cfg.Current().Workers
	for i := 0; i < n; i++ {
		o.workerWg.Add(1)
		go o.worker(ctx)
	}
	go func() {
		o.workerWg.Wait()
		close(o.outcomes)
	}()
	o.applyWg.Add(1)
	go o.applyLoop()
}

// Stop drains in-flight requests and waits for the apply goroutine to
// deliver them. Idempotent; Handle must not be called after Stop.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.jobs)
		o.applyWg.Wait()
	})
}

// Handle routes one inbound event. It never blocks on network I/O: the
// completion call runs on the worker pool and delivery happens later on
// the apply goroutine.
func (o *Orchestrator) Handle(ev gameevent.Event) {
	cfg := o.cfg.Current()
	switch ev.Kind {
	case gameevent.KindChat:
		if !cfg.PlayerChatEnabled {
			return
		}
		o.handleChat(ev, cfg)
	case gameevent.KindCommand:
		o.enqueue(job{ev: ev, p: prompt.Simple(ev.Payload), mode: Reply, conversational: true})
	case gameevent.KindJoin:
		if !cfg.PlayerJoinEnabled {
			return
		}
		o.enqueue(job{ev: ev, p: prompt.Join(ev.DisplayName), mode: Broadcast})
	case gameevent.KindDeath:
		if !cfg.PlayerDeathEnabled {
			return
		}
		o.enqueue(job{ev: ev, p: prompt.Death(ev.DisplayName, ev.Payload), mode: Broadcast})
	case gameevent.KindAdvancement:
		if !cfg.PlayerAdvancementEnabled {
			return
		}
		o.enqueue(job{ev: ev, p: prompt.Advancement(ev.DisplayName, ev.Payload), mode: Broadcast})
	case gameevent.KindQuit:
		o.history.Clear(ev.UserID)
		o.limits.Reset(ev.UserID)
	default:
		log.Printf("ignoring event of unknown kind %q from user %s", ev.Kind, ev.UserID)
	}
}

// handleChat is the only rate-limited path. Admission and window
// registration are deliberately two separate steps: the check never
// creates a window, so the first chat of each window cycle is admitted
// without consuming quota.
func (o *Orchestrator) handleChat(ev gameevent.Event, cfg *config.Config) {
	if o.limits.Limited(ev.UserID) {
		secs := int(o.limits.UntilReset(ev.UserID).Seconds())
		o.outcomes <- outcome{
			job:  job{ev: ev, mode: Reply},
			text: fmt.Sprintf(rateLimitedFmt, secs),
		}
		return
	}
	o.limits.RegisterWindow(ev.UserID, cfg.RequestsPerWindow, cfg.WindowDuration())

	o.enqueue(job{
		ev:             ev,
		p:              prompt.Chat(ev, o.history.Snapshot(ev.UserID)),
		mode:           Broadcast,
		conversational: true,
	})
}

func (o *Orchestrator) enqueue(j job) {
	o.jobs <- j
}

func (o *Orchestrator) worker(ctx context.Context) {
	defer o.workerWg.Done()
	for j := range o.jobs {
		o.outcomes <- o.execute(ctx, j)
	}
}

// execute performs the blocking completion call on the worker goroutine.
// Failures never escape: they are logged, counted, and replaced with a
// fixed fallback so the delivered result is always a non-empty string.
func (o *Orchestrator) execute(ctx context.Context, j job) outcome {
	client := o.currentClient()
	if client == nil {
		o.metrics.RecordFailure(j.ev.UserID)
		return outcome{job: j, text: uninitializedMsg}
	}

	cfg := o.cfg.Current()
	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout())
	defer cancel()

	var msgs []llm.Message
	if j.p.SystemContext != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: j.p.SystemContext})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: j.p.UserMessage})

	resp, err := client.Generate(cctx, msgs, llm.Params{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		log.Printf("completion failed for user %s: %v", j.ev.UserID, err)
		o.metrics.RecordFailure(j.ev.UserID)
		return outcome{job: j, text: fallbackMsg}
	}

	o.metrics.RecordSuccess(j.ev.UserID)
	return outcome{job: j, text: resp.Content}
}

func (o *Orchestrator) applyLoop() {
	defer o.applyWg.Done()
	for out := range o.outcomes {
		o.deliver(out)
	}
}

// deliver runs on the apply goroutine. For the conversational path the
// inbound message is appended before the reply, so per-user history
// keeps request order.
func (o *Orchestrator) deliver(out outcome) {
	if out.conversational {
		sender := out.ev.DisplayName
		if sender == "" {
			sender = "Player"
		}
		o.history.Append(out.ev.UserID, sender, out.p.UserMessage)
		o.history.Append(out.ev.UserID, "AI", out.text)
		if o.rec != nil {
			ex := storage.Exchange{
				Timestamp: time.Now().UTC(),
				UserID:    out.ev.UserID,
				Kind:      string(out.ev.Kind),
				Prompt:    out.p.UserMessage,
				Response:  out.text,
			}
			if err := o.rec.Append(ex); err != nil {
				log.Printf("failed to record exchange for user %s: %v", out.ev.UserID, err)
			}
		}
	}

	switch out.mode {
	case Reply:
		o.sink.Reply(out.ev.UserID, out.text)
	default:
		o.sink.Broadcast(out.text)
	}
}

func (o *Orchestrator) currentClient() llm.Client {
	o.clientMu.RLock()
	defer o.clientMu.RUnlock()
	return o.client
}

// ResetHistory drops all conversation history for the user.
func (o *Orchestrator) ResetHistory(userID string) {
	o.history.Clear(userID)
}

// ResetRateLimit removes the user's rate window; their next chat is
// admitted immediately.
func (o *Orchestrator) ResetRateLimit(userID string) {
	o.limits.Reset(userID)
}

// Status reports the request counters for the admin surface.
func (o *Orchestrator) Status() metrics.Snapshot {
	return o.metrics.Snapshot()
}

// Reload re-parses configuration, applies the new history bound, and
// rebuilds the completion client when a factory is available. On config
// error the previous snapshot stays active. On client error the previous
// client keeps serving and the error is surfaced to the operator.
func (o *Orchestrator) Reload() error {
	if err := o.cfg.Reload(); err != nil {
		return err
	}
	cfg := o.cfg.Current()
	o.history.SetLimit(cfg.MaxHistory)

	if o.factory == nil {
		return nil
	}
	// Credentials may have changed with the snapshot.
	o.factory = llm.NewFactory(cfg)
	client, err := o.factory.CreateClient(cfg.LLMProvider)
	if err != nil {
		return fmt.Errorf("configuration applied but completion client rebuild failed: %w", err)
	}
	o.clientMu.Lock()
	o.client = client
	o.clientMu.Unlock()
	return nil
}
