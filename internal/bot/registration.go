package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"assistbot/internal/storage"
)

// Registration is a forward-only state machine per user:
// no record -> awaiting_phone -> registered. Every transition is a single
// atomic upsert; the store keeps the state monotonic even if two events for
// the same user slip past the dispatcher's serialization.

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	from := msg.From
	user, ok, err := b.store.GetUser(ctx, from.ID)
	if err != nil {
		log.Printf("failed to look up user %d: %v", from.ID, err)
		b.sendMessage(msg.Chat.ID, replySomethingWrong)
		return
	}

	if ok && user.State == storage.StateRegistered {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Welcome back, %s!", displayName(from)))
		return
	}

	// New user or a repeated /start while waiting for the phone number.
	// The upsert is keyed by identifier, so repeating /start never creates
	// a duplicate record; the prompt is simply re-sent.
	err = b.store.UpsertUser(ctx, storage.User{
		ID:        from.ID,
		FirstName: from.FirstName,
		Username:  from.UserName,
		State:     storage.StateAwaitingPhone,
	})
	if err != nil {
		log.Printf("failed to upsert user %d: %v", from.ID, err)
		b.sendMessage(msg.Chat.ID, replySomethingWrong)
		return
	}

	prompt := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("Welcome %s, please share your phone number to complete registration.", displayName(from)))
	prompt.ReplyMarkup = contactKeyboard()
	if _, err := b.s.Send(prompt); err != nil {
		log.Printf("failed to send phone prompt: %v", err)
	}
}

func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message, phone string) {
	from := msg.From
	// A contact before any /start registers the user directly.
	err := b.store.UpsertUser(ctx, storage.User{
		ID:        from.ID,
		FirstName: from.FirstName,
		Username:  from.UserName,
		Phone:     phone,
		State:     storage.StateRegistered,
	})
	if err != nil {
		log.Printf("failed to register phone for user %d: %v", from.ID, err)
		b.sendMessage(msg.Chat.ID, replySomethingWrong)
		return
	}

	confirm := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("Thank you for sharing your phone number, %s!", displayName(from)))
	confirm.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.s.Send(confirm); err != nil {
		log.Printf("failed to send registration confirmation: %v", err)
	}
}

// contactKeyboard is the single keyboard surface of the bot: a one-time
// contact-request button shown during registration.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("Share phone number"),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func displayName(u *tgbotapi.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return fmt.Sprintf("user %d", u.ID)
}
