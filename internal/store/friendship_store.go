package store

import (
	"errors"
	"path/filepath"
	"strconv"
	"sync"

	"quantumshield/internal/domain"
)

const (
	friendshipsFile    = "friendships.json"
	friendRequestsFile = "friend_requests.json"
)

// FriendshipFileStore persists Friendship and FriendRequest rows and
// serialises the accept transition behind a single mutex so it is never
// observed half-applied.
type FriendshipFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFriendshipFileStore returns a FriendshipFileStore rooted at dir.
func NewFriendshipFileStore(dir string) *FriendshipFileStore {
	return &FriendshipFileStore{dir: dir}
}

type friendshipKey string

func keyFor(a, b domain.UserID) friendshipKey {
	a, b = domain.Pair(a, b)
	return friendshipKey(strconv.FormatInt(int64(a), 10) + ":" + strconv.FormatInt(int64(b), 10))
}

func (s *FriendshipFileStore) friendshipsPath() string { return filepath.Join(s.dir, friendshipsFile) }
func (s *FriendshipFileStore) requestsPath() string     { return filepath.Join(s.dir, friendRequestsFile) }

func (s *FriendshipFileStore) loadFriendships() (map[friendshipKey]domain.Friendship, error) {
	m := make(map[friendshipKey]domain.Friendship)
	if err := readJSON(s.friendshipsPath(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FriendshipFileStore) loadRequests() (map[domain.FriendRequestID]domain.FriendRequest, error) {
	m := make(map[domain.FriendRequestID]domain.FriendRequest)
	if err := readJSON(s.requestsPath(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Exists reports whether u and v are already friends.
func (s *FriendshipFileStore) Exists(u, v domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadFriendships()
	if err != nil {
		return false, err
	}
	_, ok := m[keyFor(u, v)]
	return ok, nil
}

// Create inserts a Friendship row directly.
func (s *FriendshipFileStore) Create(f domain.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadFriendships()
	if err != nil {
		return err
	}
	a, b := domain.Pair(f.A, f.B)
	f.A, f.B = a, b
	m[keyFor(a, b)] = f
	return writeJSON(s.friendshipsPath(), m, 0o600)
}

// Remove deletes the friendship between u and v, if any.
func (s *FriendshipFileStore) Remove(u, v domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadFriendships()
	if err != nil {
		return false, err
	}
	key := keyFor(u, v)
	if _, ok := m[key]; !ok {
		return false, nil
	}
	delete(m, key)
	return true, writeJSON(s.friendshipsPath(), m, 0o600)
}

// ListForUser returns every friendship u participates in.
func (s *FriendshipFileStore) ListForUser(u domain.UserID) ([]domain.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadFriendships()
	if err != nil {
		return nil, err
	}
	var out []domain.Friendship
	for _, f := range m {
		if f.A == u || f.B == u {
			out = append(out, f)
		}
	}
	return out, nil
}

// CreateRequest inserts a new FriendRequest row.
func (s *FriendshipFileStore) CreateRequest(req domain.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadRequests()
	if err != nil {
		return err
	}
	m[req.ID] = req
	return writeJSON(s.requestsPath(), m, 0o600)
}

// LoadRequest returns the request with the given id.
func (s *FriendshipFileStore) LoadRequest(id domain.FriendRequestID) (domain.FriendRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadRequests()
	if err != nil {
		return domain.FriendRequest{}, false, err
	}
	req, ok := m[id]
	return req, ok, nil
}

// FindPending returns the pending request from sender to receiver, if any.
func (s *FriendshipFileStore) FindPending(sender, receiver domain.UserID) (domain.FriendRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadRequests()
	if err != nil {
		return domain.FriendRequest{}, false, err
	}
	for _, req := range m {
		if req.SenderID == sender && req.ReceiverID == receiver && req.Status == domain.RequestPending {
			return req, true, nil
		}
	}
	return domain.FriendRequest{}, false, nil
}

// ListPendingForReceiver returns every request awaiting receiver's response.
func (s *FriendshipFileStore) ListPendingForReceiver(receiver domain.UserID) ([]domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadRequests()
	if err != nil {
		return nil, err
	}
	var out []domain.FriendRequest
	for _, req := range m {
		if req.ReceiverID == receiver && req.Status == domain.RequestPending {
			out = append(out, req)
		}
	}
	return out, nil
}

var errRequestNotPending = errors.New("friend request is not pending")

// AcceptRequest transitions req to accepted and creates the corresponding
// Friendship row, failing without writing anything if the request is not
// pending or the pair is already friends. Both files are rewritten while s.mu is held, so a reader
// never observes the request accepted without the friendship existing or
// vice versa.
func (s *FriendshipFileStore) AcceptRequest(id domain.FriendRequestID, respondedAt int64) (domain.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.loadRequests()
	if err != nil {
		return domain.Friendship{}, err
	}
	req, ok := reqs[id]
	if !ok {
		return domain.Friendship{}, errFriendRequestNotFound
	}
	if req.Status != domain.RequestPending {
		return domain.Friendship{}, errRequestNotPending
	}

	friendships, err := s.loadFriendships()
	if err != nil {
		return domain.Friendship{}, err
	}
	a, b := domain.Pair(req.SenderID, req.ReceiverID)
	if _, exists := friendships[keyFor(a, b)]; exists {
		return domain.Friendship{}, errors.New("friendship already exists")
	}
	f := domain.Friendship{A: a, B: b, CreatedAt: respondedAt}
	friendships[keyFor(a, b)] = f

	req.Status = domain.RequestAccepted
	req.RespondedAt = respondedAt
	reqs[id] = req

	if err := writeJSON(s.friendshipsPath(), friendships, 0o600); err != nil {
		return domain.Friendship{}, err
	}
	if err := writeJSON(s.requestsPath(), reqs, 0o600); err != nil {
		return domain.Friendship{}, err
	}
	return f, nil
}

var errFriendRequestNotFound = errors.New("friend request not found")

// RejectRequest transitions req to rejected.
func (s *FriendshipFileStore) RejectRequest(id domain.FriendRequestID, respondedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.loadRequests()
	if err != nil {
		return err
	}
	req, ok := reqs[id]
	if !ok {
		return errFriendRequestNotFound
	}
	if req.Status != domain.RequestPending {
		return errRequestNotPending
	}
	req.Status = domain.RequestRejected
	req.RespondedAt = respondedAt
	reqs[id] = req
	return writeJSON(s.requestsPath(), reqs, 0o600)
}

var _ domain.FriendshipStore = (*FriendshipFileStore)(nil)
