// Command execution for CLI commands.
//
// Information Hiding:
// - Component wiring (LLM tiers, tools, speech, storage) hidden
// - Chat loop and slash-command dispatch hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voxahq/voxa/assistant"
	"github.com/voxahq/voxa/audio"
	"github.com/voxahq/voxa/config"
	"github.com/voxahq/voxa/display"
	"github.com/voxahq/voxa/internal/log"
	"github.com/voxahq/voxa/llm"
	"github.com/voxahq/voxa/model"
	"github.com/voxahq/voxa/speech"
	"github.com/voxahq/voxa/storage"
	"github.com/voxahq/voxa/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Profile  string
	DBPath   string
	Verbose  bool
}

// runtime bundles the wired components behind one cleanup.
type runtime struct {
	assistant *assistant.Assistant
	store     *storage.Store
	settings  config.Settings
	cleanups  []func()
}

func (r *runtime) close() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
}

// buildRuntime wires settings into a ready assistant. Voice components are
// only assembled for voice mode.
func buildRuntime(ctx context.Context, mode model.InteractionMode, opts Options) (*runtime, error) {
	if opts.Provider == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}
	if opts.Verbose {
		log.Init("debug")
	} else {
		log.Init("warn")
	}
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		settings.Profile = opts.Profile
	}
	if opts.DBPath != "" {
		settings.DBPath = opts.DBPath
	}

	r := &runtime{settings: settings}

	client, err := buildClient(settings.LLM)
	if err != nil {
		return nil, err
	}

	registry, err := tools.WithDefaults()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.store = store
	r.cleanups = append(r.cleanups, func() { store.Close() })

	sink := display.NewTerminal()

	// Screen descriptions need a vision model; skip the tool without one.
	if vision, ok := client.Vision(); ok {
		screen := tools.NewScreenTool(tools.NewCommandScreen(), vision)
		screen.OnBeforeCapture = sink.Hide
		screen.OnAfterCapture = sink.Restore
		if err := registry.Register(screen); err != nil {
			return nil, err
		}
	}

	cfg := assistant.Config{
		Client:   client,
		Registry: registry,
		Store:    store,
		Sink:     sink,
		Profile:  settings.Profile,
		Mode:     mode,
	}

	if mode == model.ModeVoice {
		speechClient, synth, err := buildSpeech(settings.Speech)
		if err != nil {
			return nil, err
		}
		cfg.Transcriber = speech.NewWhisperTranscriber(speechClient)
		cfg.Synthesizer = synth
		cfg.Capture = audio.NewCommandCapture()
		r.cleanups = append(r.cleanups, func() { synth.Close() })
	}

	a, err := assistant.New(ctx, cfg)
	if err != nil {
		r.close()
		return nil, err
	}
	r.assistant = a
	return r, nil
}

// buildClient assembles the two-tier LLM client from settings.
func buildClient(cfg config.LLMConfig) (*llm.Client, error) {
	response, err := llm.NewProviderBuilder(cfg.Provider).
		Model(cfg.ResponseModel).
		MaxTokens(cfg.MaxTokens).
		Temperature(float32(cfg.Temperature)).
		FromEnv()
	if err != nil {
		return nil, err
	}

	fast, err := llm.NewProviderBuilder(cfg.Provider).
		Model(cfg.FastModel).
		MaxTokens(cfg.MaxTokens).
		Temperature(0).
		FromEnv()
	if err != nil {
		return nil, err
	}

	return llm.NewClient(fast, response), nil
}

// buildSpeech assembles the transcription client and synthesizer.
// Whisper transcription always runs through OpenAI, whichever provider
// answers the conversation.
func buildSpeech(cfg config.SpeechConfig) (*openai.Client, speech.Synthesizer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("voice mode needs OPENAI_API_KEY for transcription")
	}
	client := openai.NewClient(apiKey)
	player := speech.NewCommandPlayer()

	if cfg.Voice == "elevenlabs" {
		synth, err := speech.NewElevenLabsSynthesizer(os.Getenv("ELEVENLABS_API_KEY"), cfg.ElevenLabsVoiceID, player)
		if err != nil {
			return nil, nil, err
		}
		return client, synth, nil
	}
	return client, speech.NewOpenAISynthesizer(client, player), nil
}

// Voice runs the interactive voice loop until interrupted.
func Voice(ctx context.Context, opts Options) error {
	r, err := buildRuntime(ctx, model.ModeVoice, opts)
	if err != nil {
		return err
	}
	defer r.close()

	fmt.Printf("Voice mode on profile '%s'. Press Ctrl+C to quit.\n\n", r.assistant.Profile())

	err = r.assistant.RunVoice(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Chat runs the interactive text loop.
func Chat(ctx context.Context, opts Options) error {
	r, err := buildRuntime(ctx, model.ModeChat, opts)
	if err != nil {
		return err
	}
	defer r.close()

	a := r.assistant
	if n := len(a.HistorySnapshot()); n > 0 {
		fmt.Printf("Resuming profile '%s' (%d messages)\n", a.Profile(), n)
	}
	fmt.Println("Type 'exit' to quit, '/help' for commands.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if strings.HasPrefix(input, "/") {
			if err := runSlashCommand(ctx, a, input); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}

		if err := a.ProcessText(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

// runSlashCommand dispatches chat-loop commands.
func runSlashCommand(ctx context.Context, a *assistant.Assistant, input string) error {
	cmd, rest, _ := strings.Cut(input[1:], " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Println("  /profile NAME   switch to another profile")
		fmt.Println("  /remember FACT  store a fact about yourself")
		fmt.Println("  /events         show recent events")
		fmt.Println("  /help           show this help")
		return nil
	case "profile":
		if rest == "" {
			fmt.Printf("Current profile: %s\n", a.Profile())
			return nil
		}
		if err := a.SwitchProfile(ctx, rest); err != nil {
			return err
		}
		fmt.Printf("Switched to profile '%s' (%d messages)\n", rest, len(a.HistorySnapshot()))
		return nil
	case "remember":
		if rest == "" {
			return fmt.Errorf("usage: /remember FACT")
		}
		if err := a.Remember(ctx, rest); err != nil {
			return err
		}
		fmt.Println("Remembered.")
		return nil
	case "events":
		events := a.Events()
		if len(events) == 0 {
			fmt.Println("No events yet.")
			return nil
		}
		for _, e := range events {
			fmt.Println(e.String())
		}
		return nil
	default:
		return fmt.Errorf("unknown command: /%s", cmd)
	}
}

// Once processes a single utterance and exits.
func Once(ctx context.Context, text string, opts Options) error {
	r, err := buildRuntime(ctx, model.ModeChat, opts)
	if err != nil {
		return err
	}
	defer r.close()

	return r.assistant.ProcessText(ctx, text)
}

// Profiles lists the stored profiles.
func Profiles(ctx context.Context, opts Options) error {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = os.Getenv("VOXA_DB_PATH")
	}
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	profiles, err := store.Profiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles yet.")
		return nil
	}
	for _, p := range profiles {
		fmt.Println(p)
	}
	return nil
}

// ListTools lists the assistant's tools.
func ListTools(verbose bool) error {
	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()
	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)
		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}
