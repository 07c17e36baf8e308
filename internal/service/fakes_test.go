package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sumire/overflow/internal/cache"
	"github.com/sumire/overflow/internal/domain"
)

type voteKey struct {
	userID     int64
	targetID   int64
	targetType domain.TargetType
}

// fakeVoteStore keeps the ledger and totals in memory under one mutex,
// mirroring the single-transaction guarantee of the real store.
type fakeVoteStore struct {
	mu      sync.Mutex
	votes   map[voteKey]*domain.Vote
	totals  map[string]int
	authors map[string]int64

	castCalls int
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{
		votes:   make(map[voteKey]*domain.Vote),
		totals:  make(map[string]int),
		authors: make(map[string]int64),
	}
}

func targetKey(targetID int64, targetType domain.TargetType) string {
	return fmt.Sprintf("%s:%d", targetType, targetID)
}

func (f *fakeVoteStore) setAuthor(targetID int64, targetType domain.TargetType, authorID int64) {
	f.authors[targetKey(targetID, targetType)] = authorID
}

func (f *fakeVoteStore) TargetAuthor(_ context.Context, targetID int64, targetType domain.TargetType) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	author, ok := f.authors[targetKey(targetID, targetType)]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return author, nil
}

func (f *fakeVoteStore) Cast(_ context.Context, userID, targetID int64, targetType domain.TargetType, value int) (*domain.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.castCalls++

	key := voteKey{userID: userID, targetID: targetID, targetType: targetType}
	change, err := domain.PlanVote(f.votes[key], value)
	if err != nil {
		return nil, err
	}

	switch change.Op {
	case domain.VoteOpDelete:
		delete(f.votes, key)
	default:
		f.votes[key] = &domain.Vote{
			UserID:     userID,
			TargetID:   targetID,
			TargetType: targetType,
			Value:      change.Value,
		}
	}
	f.totals[targetKey(targetID, targetType)] += change.Delta

	userVote := 0
	if v, ok := f.votes[key]; ok {
		userVote = v.Value
	}
	return &domain.VoteResult{
		TargetID:   targetID,
		TargetType: targetType,
		VoteTotal:  f.totals[targetKey(targetID, targetType)],
		UserVote:   userVote,
		Op:         change.Op,
	}, nil
}

func (f *fakeVoteStore) ListForUser(_ context.Context, userID int64, targetType domain.TargetType, targetIDs []int64) ([]domain.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Vote
	for _, id := range targetIDs {
		if v, ok := f.votes[voteKey{userID: userID, targetID: id, targetType: targetType}]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[int64]*domain.Question
	nextID    int64

	trendingCalls int
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[int64]*domain.Question), nextID: 1}
}

func (f *fakeQuestionStore) add(q domain.Question) *domain.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q.ID == 0 {
		q.ID = f.nextID
		f.nextID++
	}
	// UTC without a monotonic reading so values survive a JSON round trip
	q.CreatedAt = time.Now().UTC().Round(0)
	f.questions[q.ID] = &q
	return &q
}

func (f *fakeQuestionStore) Create(_ context.Context, q domain.Question) (*domain.Question, error) {
	return f.add(q), nil
}

func (f *fakeQuestionStore) FindByID(_ context.Context, id int64) (*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionStore) FindAndIncrementViews(_ context.Context, id int64) (*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	q.ViewCount++
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionStore) List(_ context.Context, _ domain.QuestionFilter) ([]domain.Question, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Question
	for _, q := range f.questions {
		out = append(out, *q)
	}
	return out, false, nil
}

func (f *fakeQuestionStore) Trending(_ context.Context, _ int) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendingCalls++
	var out []domain.Question
	for _, q := range f.questions {
		out = append(out, *q)
	}
	return out, nil
}

type fakeAnswerStore struct {
	mu      sync.Mutex
	answers map[int64]*domain.Answer
	nextID  int64

	acceptCalls   int
	unacceptCalls int
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: make(map[int64]*domain.Answer), nextID: 1}
}

func (f *fakeAnswerStore) add(a domain.Answer) *domain.Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		a.ID = f.nextID
		f.nextID++
	}
	f.answers[a.ID] = &a
	return &a
}

func (f *fakeAnswerStore) Create(_ context.Context, a domain.Answer) (*domain.Answer, error) {
	return f.add(a), nil
}

func (f *fakeAnswerStore) FindByID(_ context.Context, id int64) (*domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.answers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAnswerStore) ListByQuestion(_ context.Context, questionID int64) ([]domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Answer
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAnswerStore) Accept(_ context.Context, questionID, answerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptCalls++
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			a.IsAccepted = a.ID == answerID
		}
	}
	return nil
}

func (f *fakeAnswerStore) Unaccept(_ context.Context, questionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unacceptCalls++
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			a.IsAccepted = false
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUserStore(users ...domain.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[int64]*domain.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) FindByProviderID(_ context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) Upsert(_ context.Context, user domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = int64(len(f.users) + 1)
	}
	f.users[user.ID] = &user
	clone := user
	return &clone, nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	created []domain.Notification
	failErr error
}

func (f *fakeNotificationStore) Create(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	n.ID = int64(len(f.created) + 1)
	f.created = append(f.created, n)
	return &n, nil
}

func (f *fakeNotificationStore) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, notificationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.created {
		if f.created[i].ID == notificationID && f.created[i].UserID == userID {
			f.created[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.created {
		if f.created[i].UserID == userID {
			f.created[i].IsRead = true
		}
	}
	return nil
}

// fakeCache is an in-memory cache.Cache; an optional error makes every
// operation fail to exercise degraded reads.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	data, ok := f.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return data, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	delete(f.entries, key)
	return nil
}
