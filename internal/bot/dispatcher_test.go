package bot

import (
	"context"
	"testing"

	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListPages(ctx context.Context, spaceKey string) ([]domain.Page, error) {
	args := m.Called(ctx, spaceKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	args := m.Called(ctx, question, conversationKey)
	return args.String(0), args.Error(1)
}

func TestDispatch_Hello_ContainsSender(t *testing.T) {
	d := NewDispatcher(Config{Lister: new(MockLister)})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "hello",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Equal(t, "C123", reply.Channel)
	assert.Contains(t, reply.Text, "U456")
}

func TestDispatch_Hello_CaseInsensitiveAndMentionStripped(t *testing.T) {
	d := NewDispatcher(Config{Lister: new(MockLister), SelfMention: "<@U0BOT>"})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "<@U0BOT> Hello",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "U456")
}

func TestDispatch_FetchPages_TitlesOnePerLineInOrder(t *testing.T) {
	lister := new(MockLister)
	lister.On("ListPages", mock.Anything, "ENG").Return([]domain.Page{
		{ID: "101", Title: "Onboarding"},
		{ID: "102", Title: "Runbooks"},
		{ID: "103", Title: "API Documentation"},
	}, nil)

	d := NewDispatcher(Config{Lister: lister, DefaultSpace: "ENG"})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "fetch pages",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Equal(t, "Onboarding\nRunbooks\nAPI Documentation", reply.Text)
	lister.AssertExpectations(t)
}

func TestDispatch_ListPagesAlias_WithExplicitSpace(t *testing.T) {
	lister := new(MockLister)
	lister.On("ListPages", mock.Anything, "HR").Return([]domain.Page{
		{ID: "201", Title: "Buddy System"},
	}, nil)

	d := NewDispatcher(Config{Lister: lister, DefaultSpace: "ENG"})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "list pages HR",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Equal(t, "Buddy System", reply.Text)
	lister.AssertExpectations(t)
}

func TestDispatch_FetchPages_NoSpaceConfigured(t *testing.T) {
	d := NewDispatcher(Config{Lister: new(MockLister)})

	_, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "fetch pages",
		Channel: "C123",
	})

	assert.ErrorIs(t, err, domain.ErrMissingSpaceKey)
}

func TestDispatch_FetchPages_EmptySpace(t *testing.T) {
	lister := new(MockLister)
	lister.On("ListPages", mock.Anything, "ENG").Return([]domain.Page{}, nil)

	d := NewDispatcher(Config{Lister: lister, DefaultSpace: "ENG"})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "fetch pages",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "No pages found in space ENG")
}

func TestDispatch_FetchPages_ListerError(t *testing.T) {
	lister := new(MockLister)
	lister.On("ListPages", mock.Anything, "ENG").Return(nil, domain.ErrConfluenceUpstream)

	d := NewDispatcher(Config{Lister: lister, DefaultSpace: "ENG"})

	_, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "fetch pages",
		Channel: "C123",
	})

	assert.ErrorIs(t, err, domain.ErrConfluenceUpstream)
}

func TestDispatch_UnmatchedInput_NoReplyWithoutAnswerer(t *testing.T) {
	tests := []string{
		"hellothere",
		"fetch",
		"pages please",
		"what is the buddy system?",
		"",
	}

	d := NewDispatcher(Config{Lister: new(MockLister)})

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			reply, err := d.Dispatch(context.Background(), domain.Message{
				User:    "U456",
				Text:    text,
				Channel: "C123",
			})
			require.NoError(t, err)
			assert.True(t, reply.Empty())
		})
	}
}

func TestDispatch_UnmatchedInput_RoutedToAnswerer(t *testing.T) {
	answerer := new(MockAnswerer)
	answerer.On("Answer", mock.Anything, "what is the buddy system?", "C123").
		Return("Newcomers get paired with a buddy.", nil)

	d := NewDispatcher(Config{Lister: new(MockLister), Answerer: answerer})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:    "U456",
		Text:    "what is the buddy system?",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.Equal(t, "Newcomers get paired with a buddy.", reply.Text)
	answerer.AssertExpectations(t)
}

func TestDispatch_AnswererKeyedByUserForDMs(t *testing.T) {
	answerer := new(MockAnswerer)
	answerer.On("Answer", mock.Anything, "help me", "U456").
		Return("Sure.", nil)

	d := NewDispatcher(Config{Lister: new(MockLister), Answerer: answerer})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User: "U456",
		Text: "help me",
	})

	require.NoError(t, err)
	assert.Equal(t, "U456", reply.Channel)
	assert.Equal(t, "Sure.", reply.Text)
}

func TestDispatch_BotMessagesIgnored(t *testing.T) {
	d := NewDispatcher(Config{Lister: new(MockLister)})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		BotID:   "B042",
		Text:    "hello",
		Channel: "C123",
	})

	require.NoError(t, err)
	assert.True(t, reply.Empty())
}

func TestDispatch_ThreadedReplyKeepsThread(t *testing.T) {
	d := NewDispatcher(Config{Lister: new(MockLister)})

	reply, err := d.Dispatch(context.Background(), domain.Message{
		User:     "U456",
		Text:     "hello",
		Channel:  "C123",
		ThreadTS: "1712.0001",
	})

	require.NoError(t, err)
	assert.Equal(t, "1712.0001", reply.ThreadTS)
}
