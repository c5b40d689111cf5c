package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/fingertips/internal/api"
	"github.com/cloo-solutions/fingertips/internal/bot"
	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/cloo-solutions/fingertips/internal/slack"
	"github.com/cloo-solutions/fingertips/internal/telemetry"
)

// defaultEventTimeout bounds the background work for one event.
const defaultEventTimeout = 60 * time.Second

// Dispatcher produces the reply for an inbound message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) (domain.Reply, error)
}

// Poster sends replies back to the chat platform.
type Poster interface {
	PostMessage(ctx context.Context, reply domain.Reply) error
}

// EventsHandler receives Slack Events API callbacks. Slack expects a fast
// ack, so event work happens after the response is written.
type EventsHandler struct {
	dispatcher Dispatcher
	poster     Poster
	threads    bot.ThreadAPI
	timeout    time.Duration

	// schedule runs the deferred event work; replaced in tests to run inline.
	schedule func(func())
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(dispatcher Dispatcher, poster Poster, threads bot.ThreadAPI) *EventsHandler {
	return &EventsHandler{
		dispatcher: dispatcher,
		poster:     poster,
		threads:    threads,
		timeout:    defaultEventTimeout,
		schedule:   func(fn func()) { go fn() },
	}
}

// Receive handles POST /slack/events.
func (h *EventsHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var envelope slack.EventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	switch envelope.Type {
	case slack.EnvelopeTypeURLVerification:
		api.JSON(w, http.StatusOK, map[string]string{"challenge": envelope.Challenge})

	case slack.EnvelopeTypeEventCallback:
		// Slack redelivers events it considers unacked; process each
		// delivery once.
		if r.Header.Get("X-Slack-Retry-Num") != "" {
			log.Printf("events: skipping slack retry %s for event %s",
				r.Header.Get("X-Slack-Retry-Num"), envelope.EventID)
			api.JSON(w, http.StatusOK, nil)
			return
		}

		ev := envelope.Event
		api.JSON(w, http.StatusOK, nil)
		h.schedule(func() { h.process(ev) })

	default:
		api.Error(w, http.StatusBadRequest, "unsupported envelope type")
	}
}

// process runs the addressing check and dispatch for one event after the ack.
func (h *EventsHandler) process(ev slack.InnerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	ctx, span := telemetry.StartTransaction(ctx, "slack.event "+ev.Type, "bot.event")
	defer span.End()

	if ev.Type != slack.EventTypeAppMention && ev.Type != slack.EventTypeMessage {
		return
	}

	msg := ev.Message()
	if msg.FromBot() {
		return
	}

	// A channel message that mentions the bot also arrives as its own
	// app_mention event; let that delivery handle it.
	if ev.Type == slack.EventTypeMessage && !msg.IsIM() && h.mentionsSelf(ctx, msg.Text) {
		return
	}

	if ev.Type == slack.EventTypeMessage {
		addressed, err := bot.SpeakingToMe(ctx, h.threads, ev)
		if err != nil {
			log.Printf("events: addressing check failed: %v", err)
			telemetry.CaptureError(ctx, err)
			return
		}
		if !addressed {
			return
		}
	}

	reply, err := h.dispatcher.Dispatch(ctx, msg)
	if err != nil {
		log.Printf("events: dispatch failed: %v", err)
		span.SetError(err)
		reply = domain.Reply{
			Channel:  msg.Channel,
			Text:     "Sorry, something went wrong handling that. Please try again.",
			ThreadTS: msg.ThreadTS,
		}
	}

	if reply.Empty() {
		return
	}
	if err := h.poster.PostMessage(ctx, reply); err != nil {
		log.Printf("events: failed to post reply: %v", err)
		telemetry.CaptureError(ctx, err)
	}
}

func (h *EventsHandler) mentionsSelf(ctx context.Context, text string) bool {
	me, err := h.threads.Me(ctx)
	if err != nil {
		return false
	}
	return strings.Contains(text, me.Mention())
}
