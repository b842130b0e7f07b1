package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/repository/contract"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/pkg/events"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// In-memory fakes backing the service tests. They honor the same
// contracts as the GORM implementations: not-found lookups return
// (nil, nil) and unique violations surface as Conflict errors.

func copySession(s *entity.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Messages = append([]entity.ChatMessage(nil), s.Messages...)
	if s.ShareId != nil {
		shareId := *s.ShareId
		clone.ShareId = &shareId
	}
	return &clone
}

type fakeChatSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.ChatSession
}

func newFakeChatSessionRepo() *fakeChatSessionRepo {
	return &fakeChatSessionRepo{sessions: make(map[string]*entity.ChatSession)}
}

func (r *fakeChatSessionRepo) shareIdTaken(shareId string, exceptSessionId string) bool {
	for _, s := range r.sessions {
		if s.SessionId != exceptSessionId && s.ShareId != nil && *s.ShareId == shareId {
			return true
		}
	}
	return false
}

func (r *fakeChatSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.SessionId]; exists {
		return apperr.Conflict("Chat session already exists")
	}
	if session.ShareId != nil && r.shareIdTaken(*session.ShareId, session.SessionId) {
		return apperr.Conflict("Share token already in use")
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.SessionId] = copySession(session)
	return nil
}

func (r *fakeChatSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ShareId != nil && r.shareIdTaken(*session.ShareId, session.SessionId) {
		return apperr.Conflict("Share token already in use")
	}
	session.UpdatedAt = time.Now()
	r.sessions[session.SessionId] = copySession(session)
	return nil
}

func (r *fakeChatSessionRepo) DeleteBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionId]
	if !ok || s.UserId != userId {
		return false, nil
	}
	delete(r.sessions, sessionId)
	return true, nil
}

func (r *fakeChatSessionRepo) FindBySessionId(ctx context.Context, sessionId string) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySession(r.sessions[sessionId]), nil
}

func (r *fakeChatSessionRepo) FindBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[sessionId]
	if s == nil || s.UserId != userId {
		return nil, nil
	}
	return copySession(s), nil
}

func (r *fakeChatSessionRepo) FindByShareId(ctx context.Context, shareId string) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.IsShared && s.ShareId != nil && *s.ShareId == shareId {
			return copySession(s), nil
		}
	}
	return nil, nil
}

func (r *fakeChatSessionRepo) FindAllByOwner(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := make([]*entity.ChatSession, 0)
	for _, s := range r.sessions {
		if s.UserId == userId {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].LastActivity.After(owned[j].LastActivity)
	})
	if offset >= len(owned) {
		return []*entity.ChatSession{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	page := make([]*entity.ChatSession, 0, end-offset)
	for _, s := range owned[offset:end] {
		summary := copySession(s)
		summary.Messages = make([]entity.ChatMessage, 0)
		page = append(page, summary)
	}
	return page, nil
}

func (r *fakeChatSessionRepo) MessageCountsBySessionIds(ctx context.Context, sessionIds []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int, len(sessionIds))
	for _, id := range sessionIds {
		if s, ok := r.sessions[id]; ok {
			counts[id] = len(s.Messages)
		}
	}
	return counts, nil
}

func (r *fakeChatSessionRepo) CountByOwner(ctx context.Context, userId uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.sessions {
		if s.UserId == userId {
			count++
		}
	}
	return count, nil
}

func (r *fakeChatSessionRepo) CountMessagesByOwnerAndSender(ctx context.Context, userId uuid.UUID, sender entity.MessageSender) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.sessions {
		if s.UserId != userId {
			continue
		}
		for _, m := range s.Messages {
			if m.Sender == sender {
				count++
			}
		}
	}
	return count, nil
}

func (r *fakeChatSessionRepo) FindAll(ctx context.Context) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, copySession(s))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].SessionId < all[j].SessionId
	})
	return all, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperr.Conflict("Email already registered")
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.users[user.Id] = &clone
	return nil
}

func (r *fakeUserRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

type fakeActivityLogRepo struct {
	mu   sync.Mutex
	logs []*entity.ActivityLog
}

func newFakeActivityLogRepo() *fakeActivityLogRepo {
	return &fakeActivityLogRepo{}
}

func (r *fakeActivityLogRepo) Create(ctx context.Context, log *entity.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeActivityLogRepo) CountByEventType(ctx context.Context, eventType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, l := range r.logs {
		if l.EventType == eventType {
			count++
		}
	}
	return count, nil
}

type fakeUnitOfWork struct {
	sessions *fakeChatSessionRepo
	users    *fakeUserRepo
	activity *fakeActivityLogRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return u.users
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessions
}

func (u *fakeUnitOfWork) ActivityLogRepository() contract.ActivityLogRepository {
	return u.activity
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type memShareCache struct {
	mu      sync.Mutex
	entries map[string]*entity.ChatSession
}

func newMemShareCache() *memShareCache {
	return &memShareCache{entries: make(map[string]*entity.ChatSession)}
}

func (c *memShareCache) Get(ctx context.Context, shareId string) (*entity.ChatSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[shareId]
	return copySession(s), ok
}

func (c *memShareCache) Set(ctx context.Context, session *entity.ChatSession) {
	if session == nil || session.ShareId == nil || !session.IsShared {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[*session.ShareId] = copySession(session)
}

func (c *memShareCache) Invalidate(ctx context.Context, shareId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, shareId)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *capturePublisher) byType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	matched := make([]events.Event, 0)
	for _, evt := range p.events {
		if evt.EventType() == eventType {
			matched = append(matched, evt)
		}
	}
	return matched
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// testEnv wires every service against the in-memory fakes.
type testEnv struct {
	sessions  *fakeChatSessionRepo
	users     *fakeUserRepo
	activity  *fakeActivityLogRepo
	cache     *memShareCache
	publisher *capturePublisher

	sessionService IChatSessionService
	messageService IChatMessageService
	shareService   IChatShareService
	dedupService   IDedupService
	userService    IUserService
}

func newTestEnv() *testEnv {
	sessions := newFakeChatSessionRepo()
	users := newFakeUserRepo()
	activity := newFakeActivityLogRepo()
	factory := &fakeFactory{uow: &fakeUnitOfWork{sessions: sessions, users: users, activity: activity}}
	shareCache := newMemShareCache()
	publisher := &capturePublisher{}
	log := noopLogger{}
	userCache := gocache.New(time.Minute, time.Minute)

	return &testEnv{
		sessions:  sessions,
		users:     users,
		activity:  activity,
		cache:     shareCache,
		publisher: publisher,

		sessionService: NewChatSessionService(factory, publisher, shareCache, userCache, log),
		messageService: NewChatMessageService(factory, publisher, shareCache, log),
		shareService:   NewChatShareService(factory, publisher, shareCache, "http://localhost:5173", log),
		dedupService:   NewDedupService(factory, shareCache, log),
		userService:    NewUserService(factory),
	}
}

func (e *testEnv) seedUser(role entity.UserRole) *entity.User {
	user := &entity.User{
		Id:       uuid.New(),
		Email:    uuid.New().String() + "@example.com",
		FullName: "Test User",
		Role:     role,
	}
	_ = e.users.Create(context.Background(), user)
	return user
}
