package store

import (
	"context"
	"sync"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
)

type sessionRecord struct {
	userId string
	docIds map[string]struct{}
	turns  []jobmodel.ChatTurn
}

type InMemorySessionStore struct {
	lock     *sync.RWMutex
	sessions map[string]*sessionRecord
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		lock:     new(sync.RWMutex),
		sessions: make(map[string]*sessionRecord),
	}
}

func (store *InMemorySessionStore) ValidateSessionId(ctx context.Context, id string) bool {
	store.lock.RLock()
	defer store.lock.RUnlock()
	_, ok := store.sessions[id]
	return ok
}

func (store *InMemorySessionStore) InitNewSession(ctx context.Context, id string, userId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.sessions[id] = &sessionRecord{
		userId: userId,
		docIds: make(map[string]struct{}),
	}
	inMemLogger.Info("Created session in memory store", "sessionId", id)
	return nil
}

func (store *InMemorySessionStore) AppendChatTurn(ctx context.Context, id string, turn jobmodel.ChatTurn) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	rec, ok := store.sessions[id]
	if !ok {
		return nil
	}
	rec.turns = append(rec.turns, turn)
	return nil
}

func (store *InMemorySessionStore) GetHistory(ctx context.Context, sessionId string) ([]jobmodel.ChatTurn, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	rec, ok := store.sessions[sessionId]
	if !ok {
		return nil, nil
	}
	turns := rec.turns
	if len(turns) > config.HistoryTurns {
		turns = turns[len(turns)-config.HistoryTurns:]
	}
	out := make([]jobmodel.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (store *InMemorySessionStore) ListAllowedDocIDs(ctx context.Context, sessionId string) ([]string, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	rec, ok := store.sessions[sessionId]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(rec.docIds))
	for id := range rec.docIds {
		ids = append(ids, id)
	}
	return ids, nil
}

func (store *InMemorySessionStore) AttachDoc(ctx context.Context, sessionId string, docId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	rec, ok := store.sessions[sessionId]
	if !ok {
		return nil
	}
	rec.docIds[docId] = struct{}{}
	return nil
}

func (store *InMemorySessionStore) DetachDoc(ctx context.Context, docId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	for _, rec := range store.sessions {
		delete(rec.docIds, docId)
	}
	return nil
}
