package jobs

import (
	"context"
	"log"
	"time"
)

// ConversationStore is the surface the janitor prunes.
type ConversationStore interface {
	PruneIdle(maxAge time.Duration) int
}

// ConversationJanitor drops assistant conversations that have gone quiet,
// keeping the in-memory history bounded over long uptimes.
type ConversationJanitor struct {
	store  ConversationStore
	maxAge time.Duration
}

// NewConversationJanitor creates a janitor that prunes conversations idle
// for longer than maxAge.
func NewConversationJanitor(store ConversationStore, maxAge time.Duration) *ConversationJanitor {
	return &ConversationJanitor{
		store:  store,
		maxAge: maxAge,
	}
}

// ProcessJobs prunes idle conversations. It never returns an error; the
// worker loop keeps running regardless.
func (j *ConversationJanitor) ProcessJobs(ctx context.Context) error {
	if pruned := j.store.PruneIdle(j.maxAge); pruned > 0 {
		log.Printf("janitor: pruned %d idle conversation(s)", pruned)
	}
	return nil
}
