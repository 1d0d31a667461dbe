package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/log/level"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// pollTimeout is the long-poll wait in seconds asked of getUpdates.
const pollTimeout = 30

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK          bool             `json:"ok"`
	Description string           `json:"description"`
	Result      []telegramUpdate `json:"result"`
}

// Poll fetches one batch of updates starting at offset, answers each command
// and returns the next offset.
func (t *TelegramNotifier) Poll(ctx context.Context, offset int, wait time.Duration, handler CommandHandler) (int, error) {
	var result updatesResponse
	resp, err := t.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.Itoa(offset),
			"timeout": strconv.Itoa(int(wait / time.Second)),
		}).
		SetResult(&result).
		Get("/bot" + t.BotToken + "/getUpdates")
	if err != nil {
		return offset, fmt.Errorf("polling request: %w", err)
	}
	if resp.IsError() || !result.OK {
		return offset, fmt.Errorf("polling response: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	for _, update := range result.Result {
		offset = update.UpdateID + 1
		if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
			continue
		}
		// Only the configured chat may issue commands.
		if from := strconv.FormatInt(update.Message.Chat.ID, 10); from != t.ChatID {
			_ = level.Warn(t.Logger).Log("msg", "ignoring command from unknown chat", "chat_id", from)
			continue
		}
		text := strings.TrimSpace(update.Message.Text)
		_ = level.Info(t.Logger).Log("msg", "received command", "command", text)
		reply := handler(ctx, text)
		if reply == "" {
			continue
		}
		if err := t.Send(ctx, reply); err != nil {
			_ = level.Error(t.Logger).Log("msg", "send reply", "err", err)
		}
	}
	return offset, nil
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	// The transport timeout must outlast the long-poll wait.
	t.Client.SetTimeout((pollTimeout + 5) * time.Second)
	offset := 0
	for {
		select {
		case <-ctx.Done():
			_ = level.Info(t.Logger).Log("msg", "telegram polling stopped")
			return
		default:
		}

		next, err := t.Poll(ctx, offset, pollTimeout*time.Second, handler)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			_ = level.Warn(t.Logger).Log("msg", "polling failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		offset = next
	}
}
