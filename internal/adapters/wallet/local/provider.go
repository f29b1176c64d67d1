package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const topicPrefix = "wallets:changed:"

var (
	ErrNoKnownWallets = errors.New("no known wallets, add one with `wa wallet add`")
	ErrSelectionAbort = errors.New("wallet selection aborted")
)

// Selector lets the user pick one of the known wallets.
type Selector func(ctx context.Context, wallets []domain.Wallet) (domain.Wallet, error)

// Provider is a wallet provider backed by a locally persisted session. Login
// reconnects the last used known wallet; ConnectInteractive asks the selector.
type Provider struct {
	repo     ports.ProviderSessionRepository
	selector Selector
	clock    ports.Clock

	bus    EventBus.Bus
	mu     sync.Mutex
	topics map[string]struct{}
}

var (
	_ ports.WalletProvider   = (*Provider)(nil)
	_ ports.WalletSubscriber = (*Provider)(nil)
)

func NewProvider(repo ports.ProviderSessionRepository, selector Selector, clock ports.Clock) *Provider {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Provider{
		repo:     repo,
		selector: selector,
		clock:    clock,
		bus:      EventBus.New(),
		topics:   map[string]struct{}{},
	}
}

func (p *Provider) Login(ctx context.Context) error {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load provider session: %w", err)
	}

	session.Authenticated = true
	session.AuthenticatedAt = p.clock.Now()
	session.Connected = nil
	if wallet, ok := lastUsedWallet(session); ok {
		session.Connected = []domain.Wallet{wallet}
		session.LastUsed = wallet.Address
	}

	return p.save(ctx, session)
}

func (p *Provider) ConnectInteractive(ctx context.Context) error {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load provider session: %w", err)
	}
	if len(session.Known) == 0 {
		return ErrNoKnownWallets
	}
	if p.selector == nil {
		return fmt.Errorf("interactive connect: %w", ErrSelectionAbort)
	}

	wallet, err := p.selector(ctx, session.Known)
	if err != nil {
		return fmt.Errorf("select wallet: %w", err)
	}
	if !session.KnowsAddress(wallet.Address) {
		return fmt.Errorf("select wallet: unknown address %q", wallet.Address)
	}

	session.Authenticated = true
	session.AuthenticatedAt = p.clock.Now()
	session.Connected = []domain.Wallet{wallet}
	session.LastUsed = wallet.Address

	return p.save(ctx, session)
}

func (p *Provider) Logout(ctx context.Context) error {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load provider session: %w", err)
	}

	session.Authenticated = false
	session.Connected = nil

	return p.save(ctx, session)
}

func (p *Provider) CurrentWallets(ctx context.Context) ([]domain.Wallet, error) {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider session: %w", err)
	}
	if !session.Authenticated {
		return nil, nil
	}

	return session.Connected, nil
}

func (p *Provider) Authenticated(ctx context.Context) (bool, error) {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load provider session: %w", err)
	}

	return session.Authenticated, nil
}

// AddWallet registers an address the provider may connect.
func (p *Provider) AddWallet(ctx context.Context, address string) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, errors.New("wallet address is empty")
	}

	session, err := p.repo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load provider session: %w", err)
	}
	if !session.AddKnown(domain.Wallet{Address: address}) {
		return false, nil
	}

	if err := p.repo.Save(ctx, session); err != nil {
		return false, fmt.Errorf("save provider session: %w", err)
	}

	return true, nil
}

func (p *Provider) KnownWallets(ctx context.Context) ([]domain.Wallet, error) {
	session, err := p.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider session: %w", err)
	}

	return session.Known, nil
}

// SubscribeWallets delivers the connected wallet list after every change.
func (p *Provider) SubscribeWallets(_ context.Context) (<-chan []domain.Wallet, func(), error) {
	topic := topicPrefix + uuid.NewString()
	updates := make(chan []domain.Wallet, 4)

	handler := func(wallets []domain.Wallet) {
		select {
		case updates <- wallets:
		default:
		}
	}
	if err := p.bus.Subscribe(topic, handler); err != nil {
		return nil, nil, fmt.Errorf("subscribe wallet changes: %w", err)
	}

	p.mu.Lock()
	p.topics[topic] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.topics, topic)
			p.mu.Unlock()

			_ = p.bus.Unsubscribe(topic, handler)
			close(updates)
		})
	}

	return updates, cancel, nil
}

func (p *Provider) save(ctx context.Context, session domain.ProviderSession) error {
	if err := p.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("save provider session: %w", err)
	}

	p.publish(ctx, session)
	return nil
}

func (p *Provider) publish(ctx context.Context, session domain.ProviderSession) {
	var wallets []domain.Wallet
	if session.Authenticated {
		wallets = append(wallets, session.Connected...)
	}

	p.mu.Lock()
	topics := make([]string, 0, len(p.topics))
	for topic := range p.topics {
		topics = append(topics, topic)
	}
	p.mu.Unlock()

	for _, topic := range topics {
		p.bus.Publish(topic, wallets)
	}

	zerolog.Ctx(ctx).Debug().
		Bool("authenticated", session.Authenticated).
		Int("wallets", len(wallets)).
		Int("subscribers", len(topics)).
		Msg("wallet list changed")
}

func lastUsedWallet(session domain.ProviderSession) (domain.Wallet, bool) {
	if session.LastUsed != "" && session.KnowsAddress(session.LastUsed) {
		return domain.Wallet{Address: session.LastUsed}, true
	}
	if len(session.Known) > 0 {
		return session.Known[0], true
	}

	return domain.Wallet{}, false
}
