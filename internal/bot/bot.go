package bot

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"assistbot/internal/docs"
	"assistbot/internal/llm"
	"assistbot/internal/search"
	"assistbot/internal/storage"
)

type searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

type commandFunc func(ctx context.Context, msg *tgbotapi.Message, args []string)

type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	files     fileFetcher
	store     storage.Store
	llmClient llm.Client
	searcher  searcher
	extractor docs.Extractor

	adminUserID int64

	// Enabled command set is configuration data, not forked source.
	commands     map[string]commandFunc
	commandOrder []string

	// One worker per event, bounded; same-user events serialize on a
	// per-identifier lock held across the whole classify->handle->reply
	// sequence.
	workers chan struct{}
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func New(
	botToken string,
	store storage.Store,
	llmClient llm.Client,
	searchClient searcher,
	extractor docs.Extractor,
	adminUserID int64,
	enabledCommands []string,
	workerPoolSize int,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	if workerPoolSize <= 0 {
		workerPoolSize = 16
	}
	b := &Bot{
		api:         api,
		s:           botAPISender{api: api},
		files:       botAPIFetcher{api: api},
		store:       store,
		llmClient:   llmClient,
		searcher:    searchClient,
		extractor:   extractor,
		adminUserID: adminUserID,
		workers:     make(chan struct{}, workerPoolSize),
		locks:       make(map[int64]*sync.Mutex),
	}
	b.installCommands(enabledCommands)
	return b, nil
}

func (b *Bot) installCommands(enabled []string) {
	available := map[string]commandFunc{
		"start":     b.handleStart,
		"help":      b.handleHelp,
		"websearch": b.handleWebSearch,
		"referral":  b.handleReferral,
		"sentiment": b.handleSentiment,
		"report":    b.handleReport,
	}
	b.commands = make(map[string]commandFunc)
	for _, name := range enabled {
		if fn, ok := available[name]; ok {
			b.commands[name] = fn
			b.commandOrder = append(b.commandOrder, name)
		} else {
			log.Printf("ignoring unknown command in config: %q", name)
		}
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	var wg sync.WaitGroup
	for update := range updates {
		if update.Message == nil {
			continue
		}
		msg := update.Message
		b.workers <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-b.workers }()
			b.process(ctx, msg)
		}()
	}
	wg.Wait()
}

// process handles one inbound message end to end. The per-user lock keeps
// two rapid events from the same user from interleaving their
// read-then-act-then-write sequences; events for different users run in
// parallel.
func (b *Bot) process(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	lock := b.userLock(msg.From.ID)
	lock.Lock()
	defer lock.Unlock()

	ev := classify(msg)
	switch ev.kind {
	case eventContact:
		b.handleContact(ctx, msg, ev.phone)
	case eventCommand:
		fn, ok := b.commands[ev.command]
		if !ok {
			b.sendMessage(msg.Chat.ID, "Unknown command. Try /help.")
			return
		}
		fn(ctx, msg, ev.args)
	case eventFile:
		reply := b.handleFile(ctx, &ev, msg.From.ID)
		b.sendMessage(msg.Chat.ID, reply)
	default:
		b.handleChat(ctx, msg)
	}
}

func (b *Bot) userLock(id int64) *sync.Mutex {
	b.locksMu.Lock()
	defer b.locksMu.Unlock()
	l, ok := b.locks[id]
	if !ok {
		l = &sync.Mutex{}
		b.locks[id] = l
	}
	return l
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
