// Package assistant orchestrates the voice/chat interaction loop.
//
// Information Hiding:
// - State machine transitions hidden behind methods
// - Turn lifecycle (interrupt, unwind, commit) hidden
// - Mode and profile switching rules hidden
//
// Concurrency model: the state lock guards only the state fields and is
// never held across a blocking call. Each turn carries an Interrupt that
// pipeline stages check at every suspension point; an interrupted turn
// unwinds without committing anything to history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/voxahq/voxa/audio"
	"github.com/voxahq/voxa/display"
	"github.com/voxahq/voxa/internal/log"
	"github.com/voxahq/voxa/llm"
	"github.com/voxahq/voxa/model"
	"github.com/voxahq/voxa/speech"
	"github.com/voxahq/voxa/storage"
	"github.com/voxahq/voxa/tools"
)

// ErrNoVoice is returned when a voice operation is requested without a
// configured microphone or transcriber.
var ErrNoVoice = errors.New("assistant: voice input not configured")

// Config assembles an Assistant's dependencies. Client and Registry are
// required; everything else degrades gracefully when absent.
type Config struct {
	Client      *llm.Client
	Registry    *tools.Registry
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Capture     audio.Capture
	Store       *storage.Store
	Sink        display.Sink
	Profile     string
	Mode        model.InteractionMode
}

// Assistant is the interaction orchestrator.
type Assistant struct {
	client      *llm.Client
	registry    *tools.Registry
	classifier  *tools.Classifier
	extractor   *tools.Extractor
	executor    *tools.Executor
	transcriber speech.Transcriber
	synth       speech.Synthesizer
	listener    *audio.Listener

	// followUpListener has a shorter window, used for the listen right
	// after a spoken reply.
	followUpListener *audio.Listener

	store  *storage.Store
	sink   display.Sink
	events *EventLog

	histMu  sync.Mutex
	history *History
	profile string

	mu          sync.Mutex
	state       model.RecordingState
	mode        model.InteractionMode
	pendingMode *model.InteractionMode
	current     *turn
	followUp    bool

	replyMu sync.Mutex
	replyCh chan string
}

// turn is one in-flight pipeline run.
type turn struct {
	id        string
	interrupt *Interrupt
	done      chan struct{}
}

// New creates an assistant and loads the configured profile.
func New(ctx context.Context, cfg Config) (*Assistant, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("assistant: client is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("assistant: tool registry is required")
	}

	sink := cfg.Sink
	if sink == nil {
		sink = display.NewNop()
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "default"
	}

	a := &Assistant{
		client:      cfg.Client,
		registry:    cfg.Registry,
		classifier:  tools.NewClassifier(cfg.Client, cfg.Registry),
		extractor:   tools.NewExtractor(cfg.Client),
		executor:    tools.NewDefaultExecutor(),
		transcriber: cfg.Transcriber,
		synth:       cfg.Synthesizer,
		store:       cfg.Store,
		sink:        sink,
		events:      NewEventLog(),
		history:     NewHistory(),
		profile:     profile,
		mode:        cfg.Mode,
	}
	if cfg.Capture != nil {
		a.listener = audio.NewListener(cfg.Capture)
		a.followUpListener = audio.NewListener(cfg.Capture).
			WithTimeouts(audio.SilenceTimeout, audio.FollowUpListenTimeout)
	}

	if err := a.loadProfile(ctx, profile); err != nil {
		return nil, err
	}
	return a, nil
}

// State returns the current recording state.
func (a *Assistant) State() model.RecordingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Mode returns the current interaction mode.
func (a *Assistant) Mode() model.InteractionMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Profile returns the active profile name.
func (a *Assistant) Profile() string {
	a.histMu.Lock()
	defer a.histMu.Unlock()
	return a.profile
}

// Events returns the recent event log entries.
func (a *Assistant) Events() []model.EventEntry {
	return a.events.Entries()
}

// HistorySnapshot returns a copy of the active conversation record.
func (a *Assistant) HistorySnapshot() []model.Message {
	a.histMu.Lock()
	defer a.histMu.Unlock()
	return a.history.Snapshot()
}

// SetMode switches between voice and chat. During a turn the switch is
// deferred and applied once the turn unwinds; input already in flight
// finishes under the old mode.
func (a *Assistant) SetMode(mode model.InteractionMode) {
	a.mu.Lock()
	if a.state == model.StateProcessing {
		a.pendingMode = &mode
		a.mu.Unlock()
		a.events.Add("info", "mode switch to "+mode.String()+" deferred until turn completes")
		return
	}
	a.mode = mode
	a.mu.Unlock()
	a.events.Add("info", "mode switched to "+mode.String())
}

// Interrupt cancels the in-flight turn, if any, without waiting for it
// to unwind.
func (a *Assistant) Interrupt() {
	a.mu.Lock()
	cur := a.current
	a.mu.Unlock()
	if cur != nil {
		cur.interrupt.Trigger()
	}
}

// interruptCurrent cancels the in-flight turn and waits for its unwind.
func (a *Assistant) interruptCurrent() {
	a.mu.Lock()
	cur := a.current
	a.mu.Unlock()
	if cur == nil {
		return
	}
	cur.interrupt.Trigger()
	<-cur.done
}

// Listen runs one voice turn: capture an utterance, transcribe it, and
// process it. If a turn is already processing it is interrupted first and
// its unwind awaited. Returns audio.ErrNoSpeech when the listen window
// closes with nothing said.
func (a *Assistant) Listen(ctx context.Context) error {
	if a.listener == nil || a.transcriber == nil {
		return ErrNoVoice
	}

	a.interruptCurrent()

	a.mu.Lock()
	if a.state != model.StateIdle {
		a.mu.Unlock()
		return nil
	}
	a.state = model.StateListening
	listener := a.listener
	if a.followUp {
		a.followUp = false
		listener = a.followUpListener
	}
	a.mu.Unlock()

	a.sink.ShowStatus("listening")
	samples, err := listener.Listen(ctx)
	if err != nil {
		a.setIdle()
		if errors.Is(err, audio.ErrNoSpeech) {
			a.events.Add("info", "listening timed out with no speech")
		}
		return err
	}

	// Silence-stop is the LISTENING to PROCESSING edge: the turn starts
	// here, so transcription already runs under its interrupt.
	t, ok := a.beginTurn()
	if !ok {
		return nil
	}
	defer a.endTurn(t)

	text, err := a.transcribe(ctx, t, samples)
	switch {
	case errors.Is(err, ErrInterrupted):
		a.events.Add("info", "turn "+t.id+" interrupted, discarding partial work")
		return nil
	case err != nil:
		a.events.Add("error", "transcription failed: "+err.Error())
		return err
	}
	if strings.TrimSpace(text) == "" {
		a.events.Add("info", "utterance transcribed to nothing")
		return nil
	}

	return a.finishTurn(ctx, t, text)
}

// transcribe runs the transcriber under the turn's interrupt.
func (a *Assistant) transcribe(ctx context.Context, t *turn, samples []int16) (string, error) {
	tctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := a.transcriber.Transcribe(tctx, audio.EncodeWAV(samples, audio.SampleRate))
		ch <- result{text: text, err: err}
	}()

	select {
	case <-t.interrupt.Done():
		cancel()
		<-ch
		return "", ErrInterrupted
	case r := <-ch:
		return r.text, r.err
	}
}

// ProcessText runs one chat turn, or answers a pending confirmation if
// one is waiting for input.
func (a *Assistant) ProcessText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	a.replyMu.Lock()
	ch := a.replyCh
	a.replyCh = nil
	a.replyMu.Unlock()
	if ch != nil {
		ch <- text
		return nil
	}

	return a.process(ctx, text)
}

// RunVoice loops voice turns until the context ends. No-speech timeouts
// just start the next listen.
func (a *Assistant) RunVoice(ctx context.Context) error {
	if a.listener == nil || a.transcriber == nil {
		return ErrNoVoice
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := a.Listen(ctx)
		switch {
		case err == nil || errors.Is(err, audio.ErrNoSpeech):
			continue
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, audio.ErrCaptureClosed):
			// A dead capture stream will not come back by retrying.
			return err
		default:
			a.events.Add("error", "voice turn failed: "+err.Error())
			log.Warn("voice turn failed", "error", err)
		}
	}
}

// SwitchProfile force-interrupts any in-flight turn and swaps in the
// named profile's history and facts.
func (a *Assistant) SwitchProfile(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("assistant: profile name cannot be empty")
	}
	a.interruptCurrent()
	if err := a.loadProfile(ctx, name); err != nil {
		return err
	}
	a.events.Add("info", "profile switched to "+name)
	return nil
}

// Remember stores a fact for the active profile and refreshes the system
// prompt so the responder sees it immediately.
func (a *Assistant) Remember(ctx context.Context, fact string) error {
	if a.store == nil {
		return fmt.Errorf("assistant: no store configured")
	}
	a.histMu.Lock()
	profile := a.profile
	a.histMu.Unlock()

	if err := a.store.AddFact(ctx, profile, fact); err != nil {
		return err
	}
	facts, err := a.store.Facts(ctx, profile)
	if err != nil {
		return err
	}

	a.histMu.Lock()
	a.history.SetSystem(systemPrompt(facts))
	a.histMu.Unlock()
	return nil
}

// loadProfile loads history and facts for a profile and makes it active.
func (a *Assistant) loadProfile(ctx context.Context, name string) error {
	var (
		history []model.Message
		facts   []string
	)
	if a.store != nil {
		if err := a.store.EnsureProfile(ctx, name); err != nil {
			return err
		}
		var err error
		history, err = a.store.LoadHistory(ctx, name)
		if err != nil {
			return err
		}
		facts, err = a.store.Facts(ctx, name)
		if err != nil {
			return err
		}
	}

	a.histMu.Lock()
	a.profile = name
	a.history.Replace(history)
	a.history.SetSystem(systemPrompt(facts))
	a.histMu.Unlock()
	return nil
}

// process runs one turn end to end. A second entry while a turn is
// already processing is rejected rather than queued; only Listen (and
// profile switches) interrupt an in-flight turn.
func (a *Assistant) process(ctx context.Context, text string) error {
	t, ok := a.beginTurn()
	if !ok {
		a.events.Add("info", "input dropped, a turn is already processing")
		return nil
	}
	defer a.endTurn(t)

	return a.finishTurn(ctx, t, text)
}

// finishTurn echoes the utterance and runs the pipeline. An interrupted
// turn unwinds quietly: nothing is committed and no error surfaces to
// the caller.
func (a *Assistant) finishTurn(ctx context.Context, t *turn, text string) error {
	a.sink.ShowMessage(model.UserMessage(text))
	err := a.runTurn(ctx, t, text)
	if errors.Is(err, ErrInterrupted) {
		a.events.Add("info", "turn "+t.id+" interrupted, discarding partial work")
		return nil
	}
	return err
}

// beginTurn claims the PROCESSING state. It reports false when another
// turn is already processing.
func (a *Assistant) beginTurn() (*turn, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == model.StateProcessing {
		return nil, false
	}
	t := &turn{
		id:        uuid.NewString()[:8],
		interrupt: NewInterrupt(),
		done:      make(chan struct{}),
	}
	a.current = t
	a.state = model.StateProcessing
	return t, true
}

func (a *Assistant) endTurn(t *turn) {
	var applied *model.InteractionMode
	a.mu.Lock()
	if a.current == t {
		a.current = nil
		a.state = model.StateIdle
		if a.pendingMode != nil {
			a.mode = *a.pendingMode
			applied = a.pendingMode
			a.pendingMode = nil
		}
	}
	a.mu.Unlock()
	close(t.done)
	if applied != nil {
		a.events.Add("info", "mode switched to "+applied.String())
	}
}

func (a *Assistant) setIdle() {
	a.mu.Lock()
	a.state = model.StateIdle
	a.mu.Unlock()
}

// commit appends messages to history and persists the record.
func (a *Assistant) commit(ctx context.Context, messages ...model.Message) {
	a.histMu.Lock()
	a.history.Append(messages...)
	snapshot := a.history.Snapshot()
	profile := a.profile
	a.histMu.Unlock()

	if a.store == nil {
		return
	}
	if err := a.store.SaveHistory(ctx, profile, snapshot); err != nil {
		a.events.Add("error", "failed to persist history: "+err.Error())
		log.Warn("failed to persist history", "profile", profile, "error", err)
	}
}

// systemPrompt renders the persona plus remembered facts.
func systemPrompt(facts []string) string {
	var b strings.Builder
	b.WriteString("You are Voxa, a concise voice assistant. ")
	b.WriteString("Answer in a way that sounds natural when read aloud: short sentences, no markdown, no lists. ")
	b.WriteString("Messages starting with [DATA] are tool results gathered for you; use them to answer, and never mention the marker.")
	if len(facts) > 0 {
		b.WriteString("\n\nThings you know about the user:\n")
		for _, fact := range facts {
			b.WriteString("- ")
			b.WriteString(fact)
			b.WriteString("\n")
		}
	}
	return b.String()
}
