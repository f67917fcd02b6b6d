// Turn pipeline.
//
// A turn takes one utterance through classify, extract, confirm, execute,
// respond, and speak. Every stage checks the turn's interrupt before
// moving on; speaking additionally races playback against it so a barge-in
// cuts the voice mid-sentence. Only a turn that reaches the end commits
// its messages to history.

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voxahq/voxa/audio"
	"github.com/voxahq/voxa/internal/log"
	"github.com/voxahq/voxa/llm"
	"github.com/voxahq/voxa/model"
	"github.com/voxahq/voxa/tools"
)

// fallbackReply is spoken when the responder returns nothing twice.
const fallbackReply = "I don't have an answer for that right now."

func (a *Assistant) runTurn(ctx context.Context, t *turn, utterance string) error {
	userMsg := model.UserMessage(utterance)

	toolData, declined, err := a.runToolStage(ctx, t, utterance, userMsg)
	if err != nil {
		return err
	}
	if declined {
		return nil
	}
	if err := t.interrupt.Check(); err != nil {
		return err
	}

	extra := []model.Message{userMsg}
	if toolData != nil {
		extra = append(extra, *toolData)
	}
	reply, err := a.respond(ctx, extra)
	if err != nil {
		if errors.Is(err, ErrInterrupted) {
			return err
		}
		a.events.Add("error", "response failed: "+err.Error())
		apology := model.AssistantMessage("Sorry, I ran into a problem answering that.")
		if derr := a.deliver(ctx, t, apology); derr != nil {
			return derr
		}
		return err
	}
	if err := t.interrupt.Check(); err != nil {
		return err
	}

	assistantMsg := model.AssistantMessage(reply)
	if err := a.deliver(ctx, t, assistantMsg); err != nil {
		return err
	}

	a.commit(ctx, append(extra, assistantMsg)...)
	return nil
}

// runToolStage classifies the utterance and, when a tool applies, extracts
// arguments and executes it. It returns the tool-data message to feed the
// responder, or declined=true when the user refused a confirmation (in
// which case the stage has already committed the exchange).
func (a *Assistant) runToolStage(ctx context.Context, t *turn, utterance string, userMsg model.Message) (toolData *model.Message, declined bool, err error) {
	a.histMu.Lock()
	hadToolData := a.history.LastReplyUsedTool()
	a.histMu.Unlock()

	name := a.classifier.Classify(ctx, utterance, hadToolData)
	if err := t.interrupt.Check(); err != nil {
		return nil, false, err
	}
	if name == tools.NoTool {
		return nil, false, nil
	}

	tool, ok := a.registry.Get(name)
	if !ok {
		return nil, false, nil
	}
	a.events.Add("info", "intent: "+name)
	a.sink.ShowStatus("using " + name)

	args, err := a.extractor.Extract(ctx, tool, utterance)
	if cerr := t.interrupt.Check(); cerr != nil {
		return nil, false, cerr
	}
	if err != nil {
		// A bad extraction skips the tool; the responder still answers.
		a.events.Add("warn", fmt.Sprintf("argument extraction for %s failed: %v", name, err))
		log.Warn("argument extraction failed", "tool", name, "error", err)
		return nil, false, nil
	}
	if verr := tool.Validate(args); verr != nil {
		msg := model.ToolDataMessage(fmt.Sprintf("The %s tool rejected the request: %v", name, verr))
		return &msg, false, nil
	}

	if confirmer, ok := tool.(tools.Confirmer); ok {
		proceed, err := a.confirm(ctx, t, confirmer, args, userMsg)
		if err != nil {
			return nil, false, err
		}
		if !proceed {
			return nil, true, nil
		}
	}

	start := time.Now()
	result, err := a.executor.Execute(ctx, tool, args)
	if cerr := t.interrupt.Check(); cerr != nil {
		return nil, false, cerr
	}
	if err != nil {
		result = tools.FailureResult(err)
	}

	inv := model.ToolInvocation{
		Tool:     name,
		Args:     decodeArgs(args),
		Output:   result.Output,
		Err:      result.Error,
		Duration: time.Since(start),
	}
	if inv.Succeeded() {
		a.events.Add("info", fmt.Sprintf("%s completed in %s", inv.Tool, inv.Duration.Round(time.Millisecond)))
		msg := model.ToolDataMessage(result.Output)
		return &msg, false, nil
	}
	a.events.Add("warn", fmt.Sprintf("%s failed: %v", inv.Tool, inv.Err))
	msg := model.ToolDataMessage(fmt.Sprintf("The %s tool failed: %v", name, inv.Err))
	return &msg, false, nil
}

// confirm puts the tool's confirmation prompt to the user and waits for a
// reply. On decline it acknowledges and commits the exchange itself.
func (a *Assistant) confirm(ctx context.Context, t *turn, confirmer tools.Confirmer, args json.RawMessage, userMsg model.Message) (bool, error) {
	prompt, err := confirmer.ConfirmationPrompt(args)
	if err != nil {
		return false, err
	}
	promptMsg := model.AssistantMessage(prompt)

	a.mu.Lock()
	voice := a.mode == model.ModeVoice && a.listener != nil && a.transcriber != nil
	a.mu.Unlock()

	var ch chan string
	if !voice {
		// Register before the prompt shows so a reply typed immediately
		// lands here instead of starting a fresh turn.
		ch = make(chan string, 1)
		a.replyMu.Lock()
		a.replyCh = ch
		a.replyMu.Unlock()
		defer func() {
			a.replyMu.Lock()
			if a.replyCh == ch {
				a.replyCh = nil
			}
			a.replyMu.Unlock()
		}()
	}

	if err := a.deliver(ctx, t, promptMsg); err != nil {
		return false, err
	}

	var reply string
	if voice {
		reply, err = a.awaitVoiceReply(ctx, t)
		if errors.Is(err, audio.ErrNoSpeech) {
			// Silence is not consent.
			reply, err = "", nil
		}
		if err != nil {
			return false, err
		}
	} else {
		select {
		case <-t.interrupt.Done():
			return false, ErrInterrupted
		case <-ctx.Done():
			return false, ctx.Err()
		case reply = <-ch:
		}
	}
	if isAffirmative(reply) {
		return true, nil
	}

	a.events.Add("info", "command declined")
	ack := model.AssistantMessage("Okay, I won't run it.")
	if err := a.deliver(ctx, t, ack); err != nil {
		return false, err
	}
	exchange := []model.Message{userMsg, promptMsg}
	if reply != "" {
		exchange = append(exchange, model.UserMessage(reply))
	}
	a.commit(ctx, append(exchange, ack)...)
	return false, nil
}

// respond asks the response tier for a reply over the history plus the
// turn's uncommitted messages. An empty reply is retried once without the
// tool data, since small models sometimes stall on injected context.
func (a *Assistant) respond(ctx context.Context, extra []model.Message) (string, error) {
	reply, err := a.chatResponse(ctx, extra)
	if err != nil {
		return "", err
	}
	if reply != "" {
		return reply, nil
	}

	withoutData := extra[:0:0]
	for _, msg := range extra {
		if msg.Role != model.RoleToolData {
			withoutData = append(withoutData, msg)
		}
	}
	if len(withoutData) == len(extra) {
		return fallbackReply, nil
	}
	a.events.Add("warn", "empty response, retrying without tool data")

	reply, err = a.chatResponse(ctx, withoutData)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return fallbackReply, nil
	}
	return reply, nil
}

func (a *Assistant) chatResponse(ctx context.Context, extra []model.Message) (string, error) {
	a.histMu.Lock()
	messages := a.history.ForResponder(extra...)
	a.histMu.Unlock()

	reply, err := a.client.Chat(ctx, llm.TierResponse, messages)
	if errors.Is(err, llm.ErrEmptyResponse) {
		// Treated like empty content so the retry path handles it.
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// deliver shows a message and, in voice mode, speaks it. Playback races
// the turn's interrupt; a triggered interrupt stops it mid-utterance and
// unwinds the turn.
func (a *Assistant) deliver(ctx context.Context, t *turn, msg model.Message) error {
	a.sink.ShowMessage(msg)

	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()
	if mode != model.ModeVoice || a.synth == nil {
		return t.interrupt.Check()
	}

	playback, err := a.synth.Speak(ctx, msg.Content)
	if err != nil {
		// The text is already on screen; a silent reply beats a dead turn.
		a.events.Add("warn", "speech synthesis failed: "+err.Error())
		log.Warn("speech synthesis failed", "error", err)
		return t.interrupt.Check()
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- playback.Wait(ctx) }()

	select {
	case <-t.interrupt.Done():
		playback.Stop()
		<-waitErr
		return ErrInterrupted
	case err := <-waitErr:
		if err != nil {
			a.events.Add("warn", "playback failed: "+err.Error())
		}
		// A reply just finished playing; the next listen uses the shorter
		// follow-up window.
		a.mu.Lock()
		a.followUp = true
		a.mu.Unlock()
		return t.interrupt.Check()
	}
}

// awaitVoiceReply captures and transcribes the user's answer to a
// confirmation prompt, racing the listen against the turn's interrupt.
func (a *Assistant) awaitVoiceReply(ctx context.Context, t *turn) (string, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		samples, err := a.listener.Listen(lctx)
		if err != nil {
			ch <- reply{err: err}
			return
		}
		text, err := a.transcriber.Transcribe(lctx, audio.EncodeWAV(samples, audio.SampleRate))
		ch <- reply{text: text, err: err}
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

// isAffirmative reports whether a confirmation reply means yes.
func isAffirmative(reply string) bool {
	reply = strings.ToLower(strings.TrimSpace(reply))
	reply = strings.TrimRight(reply, ".!?,")
	switch reply {
	case "yes", "yeah", "yep", "yup", "sure", "ok", "okay", "go ahead", "do it", "please do", "affirmative":
		return true
	}
	return strings.HasPrefix(reply, "yes,") || strings.HasPrefix(reply, "yes ")
}

// decodeArgs turns a raw argument payload into a map for the invocation
// record; undecodable payloads are recorded as-is.
func decodeArgs(args json.RawMessage) map[string]any {
	if len(args) == 0 {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(args, &decoded); err != nil {
		return map[string]any{"raw": string(args)}
	}
	return decoded
}
