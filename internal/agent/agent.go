package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/cloo-solutions/fingertips/internal/telemetry"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// maxToolRounds bounds the tool-call loop for a single question.
	maxToolRounds = 8
	// maxHistoryMessages bounds a conversation's retained history.
	maxHistoryMessages = 40
)

const systemPrompt = `You are Fingertips, a Slack assistant that answers questions from a Confluence wiki.
Identify the keywords in the user's question, drop noise like company names, and search Confluence
with effective CQL queries using the search_confluence tool. Consider synonyms and alternative
phrasings; combine terms with OR, AND and parentheses to minimize calls. Load promising results
with load_confluence_page before answering. Answer only from what you find, and say so plainly
when the wiki has nothing relevant.`

// WikiSearcher is the Confluence surface the agent's tools need.
type WikiSearcher interface {
	Search(ctx context.Context, cql string, limit int) ([]domain.SearchResult, error)
	PageBody(ctx context.Context, pageID string) (string, error)
}

// ChatClient is the completion surface the agent drives.
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
}

// Agent answers free-form questions by driving a tool-calling conversation
// against the wiki. Conversation history lives in memory only, keyed per
// Slack channel (or user for DMs); nothing is persisted.
type Agent struct {
	chat         ChatClient
	wiki         WikiSearcher
	contextLimit int
	now          func() time.Time

	mu            sync.Mutex
	conversations map[string]*conversation
}

type conversation struct {
	messages   []openai.ChatCompletionMessage
	lastActive time.Time
}

// New creates an Agent. contextLimit caps the characters of page text fed
// back per tool call; zero or less means no cap.
func New(chat ChatClient, wiki WikiSearcher, contextLimit int) *Agent {
	return &Agent{
		chat:          chat,
		wiki:          wiki,
		contextLimit:  contextLimit,
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

// ConversationKey selects the history bucket for a message: the channel
// when present, the user otherwise.
func ConversationKey(user, channel string) (string, error) {
	if channel != "" {
		return channel, nil
	}
	if user != "" {
		return user, nil
	}
	return "", domain.ErrMissingConversationKey
}

// Answer runs the question through the tool-call loop and returns the
// model's final text answer.
func (a *Agent) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}
	if conversationKey == "" {
		return "", domain.ErrMissingConversationKey
	}

	ctx, span := telemetry.StartSpan(ctx, "Agent.Answer", telemetry.SpanAttributes{
		Channel:   conversationKey,
		Operation: "answer",
	})
	defer span.End()

	messages := a.history(conversationKey)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	for round := 0; round < maxToolRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		msg, err := a.chat.Chat(ctx, messages, toolDefinitions())
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "assistant call failed", err)
		}
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			if msg.Content == "" {
				return "", domain.ErrNoAnswer
			}
			a.storeHistory(conversationKey, messages)
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			output := a.runTool(ctx, call)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	return "", domain.ErrNoAnswer
}

// PruneIdle drops conversations with no activity within maxAge and returns
// how many were removed.
func (a *Agent) PruneIdle(maxAge time.Duration) int {
	cutoff := a.now().Add(-maxAge)

	a.mu.Lock()
	defer a.mu.Unlock()

	pruned := 0
	for key, conv := range a.conversations {
		if conv.lastActive.Before(cutoff) {
			delete(a.conversations, key)
			pruned++
		}
	}
	return pruned
}

func (a *Agent) history(key string) []openai.ChatCompletionMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	}}
	if conv := a.conversations[key]; conv != nil {
		messages = append(messages, conv.messages...)
	}
	return messages
}

func (a *Agent) storeHistory(key string, messages []openai.ChatCompletionMessage) {
	// The leading system prompt is re-added on every read.
	if len(messages) > 0 && messages[0].Role == openai.ChatMessageRoleSystem {
		messages = messages[1:]
	}
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
		// The cut can land between an assistant tool_calls message and its
		// tool results, which the chat API rejects. Resume at a user turn.
		for len(messages) > 0 && messages[0].Role != openai.ChatMessageRoleUser {
			messages = messages[1:]
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversations[key] = &conversation{messages: messages, lastActive: a.now()}
}

const (
	toolSearchConfluence    = "search_confluence"
	toolLoadConfluencePage  = "load_confluence_page"
	toolOutputNoResults     = `{"results":[]}`
	toolOutputUnknownFormat = `{"error":"unknown tool %q"}`
)

func toolDefinitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolSearchConfluence,
				Description: "Searches Confluence using the Confluence Query Language (CQL). Returns max 5 results.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"cql_query": map[string]interface{}{
							"type":        "string",
							"description": "The Confluence Query Language (CQL) query to search Confluence",
						},
					},
					"required": []string{"cql_query"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolLoadConfluencePage,
				Description: "Loads a Confluence page using the Confluence REST API",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"page_or_content_id": map[string]interface{}{
							"type":        "string",
							"description": "The Confluence page or content ID to load",
						},
					},
					"required": []string{"page_or_content_id"},
				},
			},
		},
	}
}

// runTool executes one tool call and returns its serialized output. Tool
// failures are reported back to the model rather than aborting the loop.
func (a *Agent) runTool(ctx context.Context, call openai.ToolCall) string {
	switch call.Function.Name {
	case toolSearchConfluence:
		var args struct {
			CQLQuery string `json:"cql_query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf(`{"error":"bad arguments: %v"}`, err)
		}

		log.Printf("agent: searching confluence with cql: %s", args.CQLQuery)
		results, err := a.wiki.Search(ctx, args.CQLQuery, 0)
		if err != nil {
			log.Printf("agent: confluence search failed: %v", err)
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		if len(results) == 0 {
			return toolOutputNoResults
		}

		payload, err := json.Marshal(map[string]interface{}{"results": results})
		if err != nil {
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		return string(payload)

	case toolLoadConfluencePage:
		var args struct {
			PageOrContentID string `json:"page_or_content_id"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf(`{"error":"bad arguments: %v"}`, err)
		}

		log.Printf("agent: loading confluence page %s", args.PageOrContentID)
		body, err := a.wiki.PageBody(ctx, args.PageOrContentID)
		if err != nil {
			log.Printf("agent: confluence page load failed: %v", err)
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		if a.contextLimit > 0 && len(body) > a.contextLimit {
			body = body[:a.contextLimit]
		}

		payload, err := json.Marshal(map[string]string{"body": body})
		if err != nil {
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		return string(payload)

	default:
		return fmt.Sprintf(toolOutputUnknownFormat, call.Function.Name)
	}
}
