package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:         "watch",
	Short:       "Print widget and layout events as they happen",
	GroupID:     "system",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if cfg.NATS.URL == "" {
			return fmt.Errorf("no NATS server configured (set nats.url or WIDGETS_NATS_URL)")
		}

		sub, err := events.NewNATSSubscriber(cfg.NATS.URL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()
		logger.Debug("watching", "topic", topic, "url", cfg.NATS.URL)

		ctx := cmd.Context()
		w := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				if jsonOutput {
					fmt.Fprintln(w, string(msg.Data))
					continue
				}
				fmt.Fprintln(w, formatEvent(msg, time.Now()))
			}
		}
	},
}

// formatEvent renders one event as "<time> <topic> <subject> [details]".
func formatEvent(msg events.Message, at time.Time) string {
	var fields map[string]any
	_ = json.Unmarshal(msg.Data, &fields)

	str := func(m map[string]any, key string) string {
		s, _ := m[key].(string)
		return s
	}
	num := func(m map[string]any, key string) int {
		f, _ := m[key].(float64)
		return int(f)
	}

	var subject string
	var details []string
	switch msg.Topic {
	case events.TopicWidgetCreated, events.TopicWidgetUpdated:
		w, _ := fields["widget"].(map[string]any)
		subject = str(w, "widget_id")
		details = append(details, str(w, "widget_type"))
	case events.TopicWidgetDeleted:
		subject = str(fields, "widget_id")
	case events.TopicWidgetAttached, events.TopicWidgetDetached:
		subject = str(fields, "widget_id")
		if l := str(fields, "layout"); l != "" {
			details = append(details, "layout="+l)
		}
	case events.TopicLayoutSaved:
		subject = str(fields, "name")
		details = append(details, fmt.Sprintf("%d widgets", num(fields, "widget_count")))
	case events.TopicLayoutDeleted:
		subject = str(fields, "name")
	case events.TopicBackupCompleted:
		subject = str(fields, "snapshot_id")
		details = append(details, "to "+str(fields, "destination"))
	case events.TopicRestoreCompleted:
		subject = str(fields, "source")
		details = append(details, fmt.Sprintf("%d layouts, %d widgets", num(fields, "layouts"), num(fields, "widgets")))
	default:
		subject = string(msg.Data)
	}

	line := fmt.Sprintf("%s %s %s",
		ui.RenderMuted(at.Format("15:04:05")),
		ui.RenderAccent(strings.TrimPrefix(msg.Topic, "widgets.")),
		subject)
	if len(details) > 0 {
		line += " " + ui.RenderMuted(strings.Join(details, " "))
	}
	return line
}

func init() {
	watchCmd.Flags().String("topic", events.TopicAll, "NATS subject to subscribe to (wildcards allowed)")
}
