package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeProvider struct {
	mu sync.Mutex

	authenticated bool
	wallets       []domain.Wallet
	// loginWallets become visible after Login or ConnectInteractive.
	loginWallets []domain.Wallet
	// emptyChecks is the number of CurrentWallets calls answered with an empty list
	// before wallets show up.
	emptyChecks int
	logoutErr   error
	loginGate   chan struct{}
	loginEnter  chan struct{}
	events      *eventLog

	loginCalls   int
	connectCalls int
	logoutCalls  int
	walletChecks int
}

func (p *fakeProvider) Login(ctx context.Context) error {
	p.mu.Lock()
	p.loginCalls++
	gate, enter := p.loginGate, p.loginEnter
	p.mu.Unlock()
	p.events.add("login")

	if enter != nil {
		close(enter)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.authenticated = true
	p.wallets = p.loginWallets
	return nil
}

func (p *fakeProvider) ConnectInteractive(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectCalls++
	p.events.add("connect_interactive")
	p.authenticated = true
	p.wallets = p.loginWallets
	return nil
}

func (p *fakeProvider) Logout(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logoutCalls++
	p.events.add("logout")
	if p.logoutErr != nil {
		return p.logoutErr
	}
	p.authenticated = false
	p.wallets = nil
	return nil
}

func (p *fakeProvider) CurrentWallets(_ context.Context) ([]domain.Wallet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.walletChecks++
	if p.walletChecks <= p.emptyChecks {
		return nil, nil
	}
	return append([]domain.Wallet(nil), p.wallets...), nil
}

func (p *fakeProvider) Authenticated(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated, nil
}

func (p *fakeProvider) counts() (login, connect, logout, checks int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginCalls, p.connectCalls, p.logoutCalls, p.walletChecks
}

type subscribingProvider struct {
	*fakeProvider

	updates      chan []domain.Wallet
	subscribed   chan struct{}
	unsubscribed bool
	subscribeErr error
}

func newSubscribingProvider() *subscribingProvider {
	return &subscribingProvider{
		fakeProvider: &fakeProvider{},
		updates:      make(chan []domain.Wallet, 1),
		subscribed:   make(chan struct{}),
	}
}

func (p *subscribingProvider) SubscribeWallets(_ context.Context) (<-chan []domain.Wallet, func(), error) {
	if p.subscribeErr != nil {
		return nil, nil, p.subscribeErr
	}
	close(p.subscribed)
	return p.updates, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.unsubscribed = true
	}, nil
}

type nameKey struct {
	value   string
	network domain.Network
}

type fakeResolver struct {
	mu sync.Mutex

	names      map[domain.Network]string
	nameErrs   map[domain.Network]error
	avatars    map[nameKey]string
	avatarErr  error
	nameCalls  []domain.Network
	avatarCall []nameKey
}

func (r *fakeResolver) ResolveName(_ context.Context, _ string, network domain.Network) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nameCalls = append(r.nameCalls, network)
	if err := r.nameErrs[network]; err != nil {
		return "", err
	}
	return r.names[network], nil
}

func (r *fakeResolver) ResolveAvatar(_ context.Context, name string, network domain.Network) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avatarCall = append(r.avatarCall, nameKey{value: name, network: network})
	if r.avatarErr != nil {
		return "", r.avatarErr
	}
	return r.avatars[nameKey{value: name, network: network}], nil
}

type memoryProfileStore struct {
	mu sync.Mutex

	records  map[domain.UserID]domain.SessionRecord
	writes   []domain.SessionPatch
	writeErr error
	events   *eventLog
	now      time.Time
}

func newMemoryProfileStore(now time.Time) *memoryProfileStore {
	return &memoryProfileStore{records: map[domain.UserID]domain.SessionRecord{}, now: now}
}

func (s *memoryProfileStore) Read(_ context.Context, userID domain.UserID) (domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return domain.SessionRecord{}, domain.ErrProfileNotFound
	}
	return record, nil
}

func (s *memoryProfileStore) Write(_ context.Context, userID domain.UserID, patch domain.SessionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events.add("write")
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, patch)
	s.records[userID] = s.records[userID].Apply(patch, s.now)
	return nil
}

func (s *memoryProfileStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

type staticSession struct {
	user domain.UserID
	err  error
}

func (s staticSession) CurrentUser(_ context.Context) (domain.UserID, error) {
	return s.user, s.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) NotifySuccess(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) NotifyError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, message)
}
