package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"assistbot/internal/llm"
	"assistbot/internal/search"
	"assistbot/internal/storage"
)

const (
	replySomethingWrong = "Sorry, something went wrong. Please try again."
	replyRateLimited    = "I'm getting too many requests right now, please try again in a minute."
)

// serviceApology converts a gateway failure into the user-facing reply.
// No error crosses the dispatcher boundary; every handler answers something.
func serviceApology(err error) string {
	if errors.Is(err, llm.ErrRateLimited) || errors.Is(err, search.ErrRateLimited) {
		return replyRateLimited
	}
	return replySomethingWrong
}

// handleChat answers a free-text message through the completion engine and
// appends the exchange to the chat log.
func (b *Bot) handleChat(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if _, ok, err := b.store.GetUser(ctx, userID); err == nil && !ok {
		// Chatting without /start: create a minimal record so the chat log
		// always references a known user.
		if err := b.store.UpsertUser(ctx, storage.User{
			ID:        userID,
			FirstName: msg.From.FirstName,
			Username:  msg.From.UserName,
			State:     storage.StateAwaitingPhone,
		}); err != nil {
			log.Printf("failed to create fallback record for user %d: %v", userID, err)
		}
	}

	resp, err := b.llmClient.Complete(ctx, msg.Text)
	if err != nil {
		log.Printf("completion failed for user %d: %v", userID, err)
		b.sendMessage(msg.Chat.ID, serviceApology(err))
		return
	}

	rec := storage.ChatRecord{
		UserID:      userID,
		UserMessage: msg.Text,
		BotResponse: resp.Content,
		Timestamp:   time.Now().UTC(),
	}
	if err := b.store.AppendChat(ctx, rec); err != nil {
		log.Printf("failed to append chat record for user %d: %v", userID, err)
	}
	b.sendMessage(msg.Chat.ID, resp.Content)
}

func (b *Bot) handleWebSearch(ctx context.Context, msg *tgbotapi.Message, args []string) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		b.sendMessage(msg.Chat.ID, "Please provide a search query after the /websearch command.")
		return
	}

	result, err := b.searcher.Search(ctx, query)
	if err != nil {
		log.Printf("search %q failed for user %d: %v", query, msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, serviceApology(err))
		return
	}

	summary := result.Summary
	if summary == "" {
		summary = "No relevant summary found."
	}
	resp, err := b.llmClient.Complete(ctx, "Summarize this: "+summary)
	if err != nil {
		log.Printf("search summarization failed for user %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, serviceApology(err))
		return
	}

	var bld strings.Builder
	fmt.Fprintf(&bld, "Search results for %q:\n\n%s", query, resp.Content)
	if len(result.Links) > 0 {
		bld.WriteString("\n\nTop links:\n")
		for _, link := range result.Links {
			bld.WriteString(link)
			bld.WriteString("\n")
		}
	}
	b.sendMessage(msg.Chat.ID, bld.String())
}

func (b *Bot) handleReferral(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		b.sendMessage(msg.Chat.ID, "Usage: /referral <code>")
		return
	}
	code := args[0]
	err := b.store.UpsertUser(ctx, storage.User{
		ID:           msg.From.ID,
		FirstName:    msg.From.FirstName,
		Username:     msg.From.UserName,
		ReferralCode: code,
		State:        storage.StateAwaitingPhone,
	})
	if err != nil {
		log.Printf("failed to save referral code for user %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, replySomethingWrong)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Referral code %q saved, thank you!", code))
}

func (b *Bot) handleSentiment(ctx context.Context, msg *tgbotapi.Message, args []string) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		b.sendMessage(msg.Chat.ID, "Usage: /sentiment <text>")
		return
	}
	resp, err := b.llmClient.Complete(ctx, "Analyze the sentiment of this text: "+text)
	if err != nil {
		log.Printf("sentiment analysis failed for user %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, serviceApology(err))
		return
	}
	b.sendMessage(msg.Chat.ID, resp.Content)
}

var commandHelp = map[string]string{
	"start":     "register and start talking to the assistant",
	"help":      "show this overview",
	"websearch": "search the web and get a summary: /websearch <query>",
	"referral":  "record a referral code: /referral <code>",
	"sentiment": "analyze the sentiment of a text: /sentiment <text>",
	"report":    "daily usage report (admin only)",
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message, _ []string) {
	var bld strings.Builder
	bld.WriteString("Available commands:\n")
	for _, name := range b.commandOrder {
		if help, ok := commandHelp[name]; ok {
			fmt.Fprintf(&bld, "/%s — %s\n", name, help)
		}
	}
	bld.WriteString("\nSend me a text message, an image or a PDF and I'll do my best.")
	b.sendMessage(msg.Chat.ID, bld.String())
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	if msg.From.ID != b.adminUserID {
		b.sendMessage(msg.Chat.ID, "This command is available to the administrator only.")
		return
	}
	if err := b.SendDailyDigest(ctx); err != nil {
		log.Printf("report generation failed: %v", err)
		b.sendMessage(msg.Chat.ID, replySomethingWrong)
	}
}
