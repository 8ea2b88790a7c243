package service

import (
	"context"
	"strings"
	"sync"

	"github.com/videotube/backend/internal/model"
	"gorm.io/gorm"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
	events map[uint][]model.WatchEvent

	failUpdateRefresh bool
	failGetByID       bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		nextID: 1,
		users:  make(map[uint]*model.User),
		events: make(map[uint][]model.WatchEvent),
	}
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGetByID {
		return nil, gorm.ErrInvalidDB
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == strings.ToLower(username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if (username != "" && user.Username == strings.ToLower(username)) ||
			(email != "" && user.Email == email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == strings.ToLower(username) || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) UpdateRefreshToken(_ context.Context, id uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateRefresh {
		return gorm.ErrInvalidDB
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.RefreshToken = token
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserStore) UpdateAccount(_ context.Context, id uint, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.FullName = fullName
	user.Email = email
	return nil
}

func (f *fakeUserStore) UpdateAvatar(_ context.Context, id uint, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Avatar = avatarURL
	return nil
}

func (f *fakeUserStore) UpdateCoverImage(_ context.Context, id uint, coverURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.CoverImage = coverURL
	return nil
}

func (f *fakeUserStore) WatchHistory(_ context.Context, userID uint) ([]model.WatchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[userID], nil
}

func (f *fakeUserStore) RecordWatchEvent(_ context.Context, event *model.WatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.UserID] = append(f.events[event.UserID], *event)
	return nil
}

func (f *fakeUserStore) stored(id uint) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

// fakeSubscriptionStore returns canned counts.
type fakeSubscriptionStore struct {
	subscribers  int64
	subscribedTo int64
	isSubscribed bool
}

func (f *fakeSubscriptionStore) CountSubscribers(_ context.Context, _ uint) (int64, error) {
	return f.subscribers, nil
}

func (f *fakeSubscriptionStore) CountSubscribedTo(_ context.Context, _ uint) (int64, error) {
	return f.subscribedTo, nil
}

func (f *fakeSubscriptionStore) IsSubscribed(_ context.Context, _, _ uint) (bool, error) {
	return f.isSubscribed, nil
}

func (f *fakeSubscriptionStore) Subscribe(_ context.Context, _, _ uint) error {
	f.isSubscribed = true
	f.subscribers++
	return nil
}

func (f *fakeSubscriptionStore) Unsubscribe(_ context.Context, _, _ uint) error {
	f.isSubscribed = false
	f.subscribers--
	return nil
}
