package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/fingertips/internal/agent"
	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/cloo-solutions/fingertips/internal/telemetry"
)

// Lister is the Confluence surface the fetch command needs.
type Lister interface {
	ListPages(ctx context.Context, spaceKey string) ([]domain.Page, error)
}

// Answerer handles free-form questions. It is optional; without one,
// unmatched input produces no reply.
type Answerer interface {
	Answer(ctx context.Context, question, conversationKey string) (string, error)
}

// Dispatcher matches inbound message text against the literal trigger
// strings and produces the reply. It keeps no state between invocations.
type Dispatcher struct {
	lister       Lister
	answerer     Answerer
	defaultSpace string
	selfMention  string
}

// Config holds Dispatcher construction parameters.
type Config struct {
	Lister       Lister
	Answerer     Answerer
	DefaultSpace string
	// SelfMention is the bot's own <@USERID> token, stripped from inbound
	// text before trigger matching.
	SelfMention string
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		lister:       cfg.Lister,
		answerer:     cfg.Answerer,
		defaultSpace: cfg.DefaultSpace,
		selfMention:  cfg.SelfMention,
	}
}

// Dispatch produces the reply for an inbound message. An empty reply means
// no message is posted. Bot-authored messages never produce a reply.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	if msg.FromBot() {
		return domain.Reply{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "Dispatcher.Dispatch", telemetry.SpanAttributes{
		Channel:   msg.Channel,
		User:      msg.User,
		Operation: "dispatch",
	})
	defer span.End()

	text := d.stripSelfMention(msg.Text)
	lower := strings.ToLower(text)

	switch {
	case lower == "hello":
		return d.greet(msg), nil

	case isFetchCommand(lower):
		return d.listPages(ctx, msg, text)

	case d.answerer != nil && text != "":
		return d.answerQuestion(ctx, msg, text)

	default:
		return domain.Reply{}, nil
	}
}

// greet formats the greeting reply with the sender's identity.
func (d *Dispatcher) greet(msg domain.Message) domain.Reply {
	return domain.Reply{
		Channel:  destination(msg),
		Text:     fmt.Sprintf("Hello <@%s>!", msg.User),
		ThreadTS: msg.ThreadTS,
	}
}

// fetchTriggers are the literal content-fetch commands. An optional
// trailing token names the space to list.
var fetchTriggers = []string{"fetch pages", "list pages"}

func isFetchCommand(lower string) bool {
	for _, trigger := range fetchTriggers {
		if lower == trigger || strings.HasPrefix(lower, trigger+" ") {
			return true
		}
	}
	return false
}

// listPages lists the pages of the requested space, titles newline-joined
// in the order the wiki returns them.
func (d *Dispatcher) listPages(ctx context.Context, msg domain.Message, text string) (domain.Reply, error) {
	if d.lister == nil {
		return domain.Reply{}, domain.NewDomainError(domain.ErrCodeInvalidOperation, "no wiki backend is configured")
	}

	space := d.defaultSpace
	if fields := strings.Fields(text); len(fields) > 2 {
		space = fields[2]
	}
	if space == "" {
		return domain.Reply{}, domain.ErrMissingSpaceKey
	}

	ctx, span := telemetry.StartSpan(ctx, "Dispatcher.ListPages", telemetry.SpanAttributes{
		Channel:   msg.Channel,
		User:      msg.User,
		SpaceKey:  space,
		Operation: "list_pages",
	})
	defer span.End()

	pages, err := d.lister.ListPages(ctx, space)
	if err != nil {
		span.SetError(err)
		return domain.Reply{}, err
	}

	if len(pages) == 0 {
		return domain.Reply{
			Channel:  destination(msg),
			Text:     fmt.Sprintf("No pages found in space %s.", space),
			ThreadTS: msg.ThreadTS,
		}, nil
	}

	titles := make([]string, 0, len(pages))
	for _, p := range pages {
		titles = append(titles, p.Title)
	}

	return domain.Reply{
		Channel:  destination(msg),
		Text:     strings.Join(titles, "\n"),
		ThreadTS: msg.ThreadTS,
	}, nil
}

func (d *Dispatcher) answerQuestion(ctx context.Context, msg domain.Message, text string) (domain.Reply, error) {
	key, err := agent.ConversationKey(msg.User, msg.Channel)
	if err != nil {
		return domain.Reply{}, err
	}

	answer, err := d.answerer.Answer(ctx, text, key)
	if err != nil {
		return domain.Reply{}, err
	}

	return domain.Reply{
		Channel:  destination(msg),
		Text:     answer,
		ThreadTS: msg.ThreadTS,
	}, nil
}

// destination picks the reply target: the channel, or the user for DMs
// delivered without one.
func destination(msg domain.Message) string {
	if msg.Channel != "" {
		return msg.Channel
	}
	return msg.User
}

func (d *Dispatcher) stripSelfMention(text string) string {
	if d.selfMention != "" {
		text = strings.ReplaceAll(text, d.selfMention, "")
	}
	return strings.TrimSpace(text)
}
