package bot

import (
	"context"
	"fmt"
	"time"

	"assistbot/internal/analytics"
)

// SendDailyDigest sends today's usage stats to the admin. Wired to both the
// /report command and the cron scheduler.
func (b *Bot) SendDailyDigest(ctx context.Context) error {
	if b.adminUserID == 0 {
		return fmt.Errorf("no admin user configured")
	}
	chats, err := b.store.LoadChats(ctx)
	if err != nil {
		return fmt.Errorf("load chats: %w", err)
	}
	files, err := b.store.LoadFiles(ctx)
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	stats := analytics.AnalyzeDaily(chats, files, time.Now().UTC())
	b.sendMessage(b.adminUserID, stats.Summary())
	return nil
}
