package gateway

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const (
	ColorUpdated = 0x4caf50
	ColorRemoved = 0xf44336
	ColorResult  = 0x2196f3
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Notification is an audit or result message posted to a chat channel.
type Notification struct {
	ID          string
	Channel     string
	Title       string
	Description string
	Color       int
	Fields      []Field
	Timestamp   time.Time
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

func newNotification(channel, title string, color int, at time.Time, fields ...Field) (Notification, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Notification{}, fmt.Errorf("failed to generate notification id: %w", err)
	}
	return Notification{
		ID:        id,
		Channel:   channel,
		Title:     title,
		Color:     color,
		Fields:    fields,
		Timestamp: at,
	}, nil
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	fields := zerolog.Dict()
	for _, f := range note.Fields {
		fields = fields.Str(f.Name, f.Value)
	}
	n.logger.Info().
		Str("notification_id", note.ID).
		Str("channel", note.Channel).
		Str("title", note.Title).
		Str("description", note.Description).
		Dict("fields", fields).
		Time("timestamp", note.Timestamp).
		Msg("notification posted")
	return nil
}

func mention(id string) string {
	return "<@" + id + ">"
}

func code(s string) string {
	return "`" + s + "`"
}
