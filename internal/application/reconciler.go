package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	msgConnected       = "Wallet connected successfully!"
	msgConnectFailed   = "Failed to connect wallet"
	msgDisconnected    = "Wallet disconnected successfully"
	msgDisconnectError = "Failed to disconnect wallet"
	msgSaveFailed      = "Failed to save wallet information"
)

type ReconcilerDeps struct {
	Provider ports.WalletProvider
	Resolver ports.NameResolver
	Profiles ports.ProfileStore
	Sessions ports.SessionSource
	Notifier ports.Notifier
	Clock    ports.Clock
}

type ReconcilerOptions struct {
	Budget WaitBudget
	// ResolveWhenAuthenticated resolves name and avatar even when an already
	// authenticated wallet is adopted as is.
	ResolveWhenAuthenticated bool
	Logger                   *zerolog.Logger
}

// Reconciler owns one UI session's wallet connection. Wallet flows run one at a
// time. Concurrent calls of the same operation share the running call's result;
// different operations queue behind it and keep their own contract.
type Reconciler struct {
	provider ports.WalletProvider
	resolver ports.NameResolver
	profiles ports.ProfileStore
	sessions ports.SessionSource
	notifier ports.Notifier
	clock    ports.Clock
	opts     ReconcilerOptions
	logger   zerolog.Logger

	flows  singleflight.Group
	flowMu sync.Mutex

	mu    sync.Mutex
	state domain.ConnectionState
	// seeded is set while the display identity comes from the session record
	// rather than a resolution.
	seeded bool
}

func NewReconciler(deps ReconcilerDeps, opts ReconcilerOptions) *Reconciler {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if opts.Budget.Attempts <= 0 || opts.Budget.Interval <= 0 {
		opts.Budget = DefaultWaitBudget
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Reconciler{
		provider: deps.Provider,
		resolver: deps.Resolver,
		profiles: deps.Profiles,
		sessions: deps.Sessions,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		opts:     opts,
		logger:   logger,
	}
}

func (r *Reconciler) State() domain.ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Load seeds the connection state from the current user's session record.
func (r *Reconciler) Load(ctx context.Context) (domain.SessionRecord, error) {
	userID, err := r.currentUser(ctx)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	record, err := r.profiles.Read(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return domain.SessionRecord{}, fmt.Errorf("read session record: %w", err)
		}
		record = domain.SessionRecord{}
	}

	r.update(func(s *domain.ConnectionState) {
		if record.LastDisconnectTime == nil {
			return
		}
		if s.LastDisconnectTime == nil || record.LastDisconnectTime.After(*s.LastDisconnectTime) {
			at := *record.LastDisconnectTime
			s.LastDisconnectTime = &at
		}
	})

	return record, nil
}

func (r *Reconciler) Connect(ctx context.Context) (domain.ConnectionState, error) {
	return r.runConnectFlow(ctx, "connect", r.connect)
}

// Resume is the mount-time auto-resume: it reconnects a wallet remembered in the
// session record unless the provider is already authenticated.
func (r *Reconciler) Resume(ctx context.Context) (domain.ConnectionState, error) {
	return r.runConnectFlow(ctx, "resume", r.resume)
}

// Refresh adopts the wallet the provider already has connected and syncs it,
// without any login call. The saved display name is kept when the address
// matches the record.
func (r *Reconciler) Refresh(ctx context.Context) (domain.ConnectionState, error) {
	return r.runConnectFlow(ctx, "refresh", r.refresh)
}

func (r *Reconciler) Disconnect(ctx context.Context) error {
	ctx = r.flowContext(ctx, "disconnect")
	log := zerolog.Ctx(ctx)

	if !r.flowMu.TryLock() {
		log.Warn().Msg("disconnect requested while a wallet flow is running")
		r.notifier.NotifyError(msgDisconnectError)
		return domain.ErrFlowInProgress
	}
	defer r.flowMu.Unlock()

	if err := r.disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("disconnect wallet")
		r.notifier.NotifyError(msgDisconnectError)
		return err
	}

	log.Info().Msg("wallet disconnected")
	r.notifier.NotifySuccess(msgDisconnected)
	return nil
}

// SyncProfile writes the full connection state snapshot to the profile store.
func (r *Reconciler) SyncProfile(ctx context.Context) error {
	state := r.State()
	if !state.Syncable() {
		return nil
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := r.profiles.Write(ctx, userID, state.Snapshot()); err != nil {
		return fmt.Errorf("%w: save wallet info: %w", domain.ErrProfileUpdateFailed, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("user_id", string(userID)).
		Str("address", state.Address).
		Msg("session record synced")

	return nil
}

func (r *Reconciler) runConnectFlow(ctx context.Context, name string, flow func(context.Context) (domain.ConnectionState, error)) (domain.ConnectionState, error) {
	ctx = r.flowContext(ctx, name)

	result, err, shared := r.flows.Do(name, func() (any, error) {
		r.flowMu.Lock()
		defer r.flowMu.Unlock()

		return flow(ctx)
	})
	if shared {
		zerolog.Ctx(ctx).Debug().Msg("joined in-flight wallet flow")
	}

	state, _ := result.(domain.ConnectionState)
	return state, err
}

func (r *Reconciler) connect(ctx context.Context) (domain.ConnectionState, error) {
	log := zerolog.Ctx(ctx)

	state, err := r.establish(ctx)
	if err != nil {
		log.Error().Err(err).Msg("connect wallet")
		r.notifier.NotifyError(msgConnectFailed)
		return state, err
	}

	return r.syncConnected(ctx, state)
}

func (r *Reconciler) establish(ctx context.Context) (domain.ConnectionState, error) {
	log := zerolog.Ctx(ctx)

	authenticated, err := r.provider.Authenticated(ctx)
	if err != nil {
		return r.State(), fmt.Errorf("check provider authentication: %w", err)
	}

	if authenticated {
		wallets, err := r.provider.CurrentWallets(ctx)
		if err != nil {
			return r.State(), fmt.Errorf("enumerate wallets: %w", err)
		}
		if len(wallets) > 0 {
			log.Info().Str("address", wallets[0].Address).Msg("already authenticated, adopting wallet")
			if !r.opts.ResolveWhenAuthenticated && !r.seededIdentity() {
				return r.update(func(s *domain.ConnectionState) { s.Adopt(wallets[0]) }), nil
			}
			return r.adopt(ctx, wallets[0]), nil
		}
	}

	strategy := domain.DecideStrategy(authenticated, r.State().LastDisconnectTime, r.clock.Now())
	if err := r.invoke(ctx, strategy); err != nil {
		return r.State(), err
	}

	wallet, err := r.AwaitWalletEnumeration(ctx, r.opts.Budget)
	if err != nil {
		return r.State(), err
	}

	return r.adopt(ctx, wallet), nil
}

func (r *Reconciler) adopt(ctx context.Context, wallet domain.Wallet) domain.ConnectionState {
	r.update(func(s *domain.ConnectionState) { s.Adopt(wallet) })

	identity := r.ResolveDisplayIdentity(ctx, wallet.Address)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.DisplayName = identity.Name
	r.state.AvatarURL = identity.AvatarURL
	r.seeded = false
	return r.state
}

// adoptSeeded adopts wallet with the identity saved in record.
func (r *Reconciler) adoptSeeded(wallet domain.Wallet, record domain.SessionRecord) domain.ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Adopt(wallet)
	r.state.DisplayName = record.DisplayName
	r.state.AvatarURL = record.AvatarURL
	r.seeded = true
	return r.state
}

func (r *Reconciler) seededIdentity() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seeded
}

func (r *Reconciler) resume(ctx context.Context) (domain.ConnectionState, error) {
	log := zerolog.Ctx(ctx)

	record, err := r.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load session record")
		return r.State(), err
	}
	if strings.TrimSpace(record.WalletAddress) == "" {
		return r.State(), domain.ErrNothingToResume
	}

	authenticated, err := r.provider.Authenticated(ctx)
	if err != nil {
		log.Error().Err(err).Msg("check provider authentication")
		return r.State(), fmt.Errorf("check provider authentication: %w", err)
	}
	if authenticated {
		log.Info().Msg("already authenticated, nothing to resume")
		return r.State(), nil
	}

	strategy := domain.DecideStrategy(false, record.LastDisconnectTime, r.clock.Now())
	if err := r.invoke(ctx, strategy); err != nil {
		log.Error().Err(err).Msg("resume wallet")
		return r.State(), err
	}

	wallet, err := r.AwaitWalletEnumeration(ctx, r.opts.Budget)
	if err != nil {
		log.Error().Err(err).Msg("resume wallet")
		return r.State(), err
	}

	return r.syncConnected(ctx, r.adoptSeeded(wallet, record))
}

func (r *Reconciler) refresh(ctx context.Context) (domain.ConnectionState, error) {
	record, err := r.Load(ctx)
	if err != nil {
		return r.State(), err
	}

	wallets, err := r.provider.CurrentWallets(ctx)
	if err != nil {
		return r.State(), fmt.Errorf("enumerate wallets: %w", err)
	}
	if len(wallets) == 0 {
		return r.State(), domain.ErrNoWalletConnected
	}

	var state domain.ConnectionState
	if strings.EqualFold(record.WalletAddress, wallets[0].Address) && record.DisplayName != "" {
		state = r.adoptSeeded(wallets[0], record)
	} else {
		state = r.adopt(ctx, wallets[0])
	}

	if err := r.SyncProfile(ctx); err != nil {
		return state, err
	}

	return state, nil
}

func (r *Reconciler) syncConnected(ctx context.Context, state domain.ConnectionState) (domain.ConnectionState, error) {
	if err := r.SyncProfile(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("sync session record")
		r.notifier.NotifyError(msgSaveFailed)
		return state, err
	}

	zerolog.Ctx(ctx).Info().Str("address", state.Address).Str("display_name", state.DisplayName).Msg("wallet connected")
	r.notifier.NotifySuccess(msgConnected)
	return state, nil
}

func (r *Reconciler) invoke(ctx context.Context, strategy domain.ReconnectStrategy) error {
	zerolog.Ctx(ctx).Info().Str("strategy", string(strategy)).Msg("reconnect strategy decided")

	switch {
	case !strategy.NeedsProviderCall():
		return nil
	case strategy.Interactive():
		if err := r.provider.ConnectInteractive(ctx); err != nil {
			return fmt.Errorf("interactive wallet connect: %w", err)
		}
	default:
		if err := r.provider.Login(ctx); err != nil {
			return fmt.Errorf("wallet login: %w", err)
		}
	}

	return nil
}

func (r *Reconciler) disconnect(ctx context.Context) error {
	now := r.clock.Now()
	r.mu.Lock()
	r.state.Clear()
	r.state.LastDisconnectTime = &now
	r.seeded = false
	r.mu.Unlock()

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	// The marker must be durable before logout so a failed logout still leaves it.
	if err := r.profiles.Write(ctx, userID, domain.DisconnectPatch(now)); err != nil {
		return fmt.Errorf("%w: save disconnect time: %w", domain.ErrProfileUpdateFailed, err)
	}

	if err := r.provider.Logout(ctx); err != nil {
		return fmt.Errorf("wallet logout: %w", err)
	}

	return r.SyncProfile(ctx)
}

func (r *Reconciler) currentUser(ctx context.Context) (domain.UserID, error) {
	if r.sessions == nil {
		return "", domain.ErrNoActiveSession
	}

	userID, err := r.sessions.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			return "", err
		}
		return "", fmt.Errorf("get current user: %w", err)
	}
	if strings.TrimSpace(string(userID)) == "" {
		return "", domain.ErrNoActiveSession
	}

	return userID, nil
}

func (r *Reconciler) update(fn func(*domain.ConnectionState)) domain.ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(&r.state)
	return r.state
}

func (r *Reconciler) flowContext(ctx context.Context, flow string) context.Context {
	return r.logger.With().
		Str("flow", flow).
		Str("flow_id", uuid.NewString()).
		Logger().WithContext(ctx)
}

type nopNotifier struct{}

func (nopNotifier) NotifySuccess(string) {}
func (nopNotifier) NotifyError(string)   {}
