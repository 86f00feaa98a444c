// Package friendship implements the friendship state machine: requests,
// accept/reject, canonical unordered friendships, and per-user rate limiting
// on new request creation.
package friendship

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"quantumshield/internal/domain"
)

// requestsPerHour is the recommended floor for friend-request creation.
const requestsPerHour = 10

var (
	// ErrSelfRequest is returned when sender and receiver are the same user.
	ErrSelfRequest = errors.New("friendship: cannot friend yourself")
	// ErrAlreadyFriends is returned when a Friendship already exists.
	ErrAlreadyFriends = errors.New("friendship: already friends")
	// ErrRequestPending is returned when a pending request already exists
	// between the two users, in either direction.
	ErrRequestPending = errors.New("friendship: request already pending")
	// ErrRateLimited is returned when the sender has exceeded the
	// friend-request creation rate.
	ErrRateLimited = errors.New("friendship: rate limited")
	// ErrNotReceiver is returned when a caller other than the request's
	// receiver attempts to accept or reject it.
	ErrNotReceiver = errors.New("friendship: caller is not the request receiver")
	// ErrRequestNotFound is returned when the referenced request does not exist.
	ErrRequestNotFound = errors.New("friendship: request not found")
)

// Service implements domain.FriendshipService over a domain.FriendshipStore.
type Service struct {
	store domain.FriendshipStore

	mu       sync.Mutex
	limiters map[domain.UserID]*rate.Limiter
}

// New returns a friendship Service backed by store.
func New(store domain.FriendshipStore) *Service {
	return &Service{store: store, limiters: make(map[domain.UserID]*rate.Limiter)}
}

func (s *Service) limiterFor(u domain.UserID) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[u]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Hour/requestsPerHour), requestsPerHour)
		s.limiters[u] = l
	}
	return l
}

// Create issues a friend request from sender to receiver. It is valid iff
// sender != receiver, no friendship already exists between them, and no
// pending request exists in either direction.
func (s *Service) Create(ctx context.Context, sender, receiver domain.UserID) (domain.FriendRequest, error) {
	if sender == receiver {
		return domain.FriendRequest{}, ErrSelfRequest
	}
	if !s.limiterFor(sender).Allow() {
		return domain.FriendRequest{}, ErrRateLimited
	}

	exists, err := s.store.Exists(sender, receiver)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if exists {
		return domain.FriendRequest{}, ErrAlreadyFriends
	}

	if _, ok, err := s.store.FindPending(sender, receiver); err != nil {
		return domain.FriendRequest{}, err
	} else if ok {
		return domain.FriendRequest{}, ErrRequestPending
	}
	if _, ok, err := s.store.FindPending(receiver, sender); err != nil {
		return domain.FriendRequest{}, err
	} else if ok {
		return domain.FriendRequest{}, ErrRequestPending
	}

	req := domain.FriendRequest{
		ID:         domain.FriendRequestID(uuid.NewString()),
		SenderID:   sender,
		ReceiverID: receiver,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().Unix(),
	}
	if err := s.store.CreateRequest(req); err != nil {
		return domain.FriendRequest{}, err
	}
	return req, nil
}

// Accept transitions the request to accepted and creates the corresponding
// Friendship, iff caller is the request's receiver and it is still pending.
func (s *Service) Accept(ctx context.Context, caller domain.UserID, requestID domain.FriendRequestID) (domain.Friendship, error) {
	req, ok, err := s.store.LoadRequest(requestID)
	if err != nil {
		return domain.Friendship{}, err
	}
	if !ok {
		return domain.Friendship{}, ErrRequestNotFound
	}
	if req.ReceiverID != caller {
		return domain.Friendship{}, ErrNotReceiver
	}
	return s.store.AcceptRequest(requestID, time.Now().Unix())
}

// Reject transitions the request to rejected, iff caller is the request's
// receiver and it is still pending. A rejected pair may later be
// re-requested.
func (s *Service) Reject(ctx context.Context, caller domain.UserID, requestID domain.FriendRequestID) error {
	req, ok, err := s.store.LoadRequest(requestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRequestNotFound
	}
	if req.ReceiverID != caller {
		return ErrNotReceiver
	}
	return s.store.RejectRequest(requestID, time.Now().Unix())
}

// Remove deletes the friendship between caller and other, if any. It does
// not create a request or block future requests between the pair.
func (s *Service) Remove(ctx context.Context, caller, other domain.UserID) error {
	_, err := s.store.Remove(caller, other)
	return err
}

// ListPending returns every request awaiting receiver's response.
func (s *Service) ListPending(ctx context.Context, receiver domain.UserID) ([]domain.FriendRequest, error) {
	return s.store.ListPendingForReceiver(receiver)
}

// ListFriends returns every friendship user participates in.
func (s *Service) ListFriends(ctx context.Context, user domain.UserID) ([]domain.Friendship, error) {
	return s.store.ListForUser(user)
}

// AreFriends reports whether u and v are friends.
func (s *Service) AreFriends(ctx context.Context, u, v domain.UserID) (bool, error) {
	return s.store.Exists(u, v)
}

var _ domain.FriendshipService = (*Service)(nil)
