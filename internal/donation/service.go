// Package donation runs the donation flow: creating QRIS payment entries,
// operator status changes, and payment detection against bank mutations.
package donation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
	"viaqris/internal/payment"
	"viaqris/internal/qris"
)

const (
	defaultPaymentWindow = 5 * time.Minute
	defaultNotifyTimeout = 10 * time.Second
	maxKeyLength         = 128

	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// MutationSource lists recent bank mutations.
type MutationSource interface {
	Recent(ctx context.Context) ([]payment.Mutation, error)
}

// Notifier delivers payment notifications.
type Notifier interface {
	SendHTML(ctx context.Context, text string) error
}

// Options wires the service collaborators. Notifier may be nil.
type Options struct {
	Store         domain.TransactionRepository
	Settings      domain.SettingsRepository
	Mutations     MutationSource
	Notifier      Notifier
	StaticQRIS    string
	PaymentWindow time.Duration
	NotifyTimeout time.Duration
	Logger        *infra.Logger
	Now           func() time.Time
}

type Service struct {
	store         domain.TransactionRepository
	settings      domain.SettingsRepository
	mutations     MutationSource
	notifier      Notifier
	template      string
	window        time.Duration
	notifyTimeout time.Duration
	logger        *infra.Logger
	now           func() time.Time
	inflight      sync.WaitGroup
}

// CreateResult is returned by Create.
type CreateResult struct {
	Key     string
	Entry   domain.Entry
	Payload string
}

// CheckResult is returned by CheckPayment.
type CheckResult struct {
	Matched bool
	Entry   domain.Entry
}

// Summary aggregates the document for the page header and the dashboard.
type Summary struct {
	Total      int                   `json:"total"`
	ByStatus   map[domain.Status]int `json:"by_status"`
	Collected  int64                 `json:"collected"`
	TargetGoal int64                 `json:"target_goal"`
}

// Quote is the amount a donor pays for a chosen donation.
type Quote struct {
	Amount int64 `json:"amount"`
	Fee    int64 `json:"fee"`
	Total  int64 `json:"total"`
}

func New(opts Options) (*Service, error) {
	if opts.Store == nil || opts.Settings == nil || opts.Mutations == nil {
		return nil, errors.New("donation: store, settings and mutations are required")
	}
	if err := qris.Validate(opts.StaticQRIS); err != nil {
		return nil, err
	}
	window := opts.PaymentWindow
	if window <= 0 {
		window = defaultPaymentWindow
	}
	notifyTimeout := opts.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:         opts.Store,
		settings:      opts.Settings,
		mutations:     opts.Mutations,
		notifier:      opts.Notifier,
		template:      opts.StaticQRIS,
		window:        window,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		now:           now,
	}, nil
}

func (s *Service) List(ctx context.Context) (domain.Entries, error) {
	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// Create stores a new unpaid entry under key and attaches the rendered
// dynamic QRIS image for its amount.
func (s *Service) Create(ctx context.Context, key string, in domain.Entry) (*CreateResult, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	amount := in.AmountValue()
	if amount <= 0 {
		return nil, fmt.Errorf("%w: harga_transaksi must be a positive amount", domain.ErrValidation)
	}
	if in.Kind != "" && in.Kind != domain.KindGoods && in.Kind != domain.KindService {
		return nil, fmt.Errorf("%w: jenis must be %q or %q", domain.ErrValidation, domain.KindGoods, domain.KindService)
	}

	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if _, exists := snap.Entries[key]; exists {
		return nil, fmt.Errorf("%w: entry %q already exists", domain.ErrValidation, key)
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry := s.fillDefaults(in, amount, cfg)

	payload, err := qris.BuildPayload(s.template, amount)
	if err != nil {
		return nil, err
	}
	dataURL, err := qris.DataURL(payload)
	if err != nil {
		return nil, err
	}
	entry.PaymentURL = dataURL

	next := snap.Entries.Clone()
	next[key] = entry
	if _, err := s.store.Write(ctx, next, snap.Version, fmt.Sprintf("Create data.json: %s.", key)); err != nil {
		return nil, err
	}
	s.logger.Info().Str("key", key).Int64("amount", amount).Msg("donation created")
	return &CreateResult{Key: key, Entry: entry, Payload: payload}, nil
}

func (s *Service) fillDefaults(in domain.Entry, amount int64, cfg domain.Settings) domain.Entry {
	now := s.now().UTC()
	e := in
	e.Amount = fmt.Sprintf("%d", amount)
	e.Status = domain.StatusUnpaid
	e.MutationRef = ""
	e.PayerName = strings.TrimSpace(e.PayerName)
	if e.Seller == "" {
		e.Seller = cfg.BrandingName
	}
	if e.Kind == "" {
		e.Kind = domain.KindService
	}
	if e.PaymentMethod == "" {
		e.PaymentMethod = domain.DefaultPaymentMethod
	}
	if e.Label == "" {
		name := e.PayerName
		if name == "" {
			name = "Anonim"
		}
		e.Label = "Dukungan dari " + name
	}
	if e.CreatedAt == "" {
		e.CreatedAt = now.Format(isoMillis)
	}
	if _, ok := e.Expiry(); !ok {
		e.ExpiresAt = now.Add(s.window).Format(isoMillis)
	}
	return e
}

// UpdateStatus applies an operator status change. Any status may follow any
// other; entering Berhasil from another status sends one notification.
func (s *Service) UpdateStatus(ctx context.Context, key string, status domain.Status) (domain.Entry, error) {
	key, err := validateKey(key)
	if err != nil {
		return domain.Entry{}, err
	}
	if !status.Valid() {
		return domain.Entry{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	entry, ok := snap.Entries[key]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: entry %q", domain.ErrNotFound, key)
	}
	previous := entry.Status
	if previous == status {
		return entry, nil
	}
	entry.Status = status

	next := snap.Entries.Clone()
	next[key] = entry
	if _, err := s.store.Write(ctx, next, snap.Version, fmt.Sprintf("Update status to '%s' for %s.", status, key)); err != nil {
		return domain.Entry{}, err
	}
	s.logger.Info().Str("key", key).Str("from", string(previous)).Str("to", string(status)).Msg("status updated")
	if status == domain.StatusSuccess {
		s.notifyPaid(key, entry)
	}
	return entry, nil
}

// CheckPayment looks for an unclaimed credit mutation within tolerance of the
// entry amount and marks the entry paid when one is found.
func (s *Service) CheckPayment(ctx context.Context, key string) (*CheckResult, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := snap.Entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: entry %q", domain.ErrNotFound, key)
	}
	if entry.Status == domain.StatusSuccess {
		return &CheckResult{Matched: true, Entry: entry}, nil
	}
	amount := entry.AmountValue()
	if amount <= 0 {
		return &CheckResult{Entry: entry}, nil
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	mutations, err := s.mutations.Recent(ctx)
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]struct{})
	for _, e := range snap.Entries {
		if e.MutationRef != "" {
			claimed[e.MutationRef] = struct{}{}
		}
	}
	tolerance := payment.Tolerance(amount, cfg.PaymentTolerancePercent, cfg.PaymentToleranceMin)
	m, found := payment.Match(amount, mutations, tolerance, claimed)
	if !found {
		s.logger.Debug().Str("key", key).Int64("amount", amount).Int("mutations", len(mutations)).Msg("no matching mutation yet")
		return &CheckResult{Entry: entry}, nil
	}

	entry.Status = domain.StatusSuccess
	entry.MutationRef = m.Fingerprint()
	next := snap.Entries.Clone()
	next[key] = entry
	if _, err := s.store.Write(ctx, next, snap.Version, fmt.Sprintf("Auto mark paid for %s.", key)); err != nil {
		return nil, err
	}
	s.logger.Info().Str("key", key).Int64("amount", amount).Int64("credited", m.Amount).Msg("payment detected")
	s.notifyPaid(key, entry)
	return &CheckResult{Matched: true, Entry: entry}, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := &Summary{ByStatus: make(map[domain.Status]int, len(domain.Statuses)), TargetGoal: cfg.TargetGoal}
	for _, st := range domain.Statuses {
		out.ByStatus[st] = 0
	}
	for _, e := range snap.Entries {
		out.Total++
		out.ByStatus[e.Status]++
		if e.Status == domain.StatusSuccess {
			out.Collected += e.AmountValue()
		}
	}
	return out, nil
}

func (s *Service) Quote(ctx context.Context, amount int64) (*Quote, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	fee := payment.Fee(amount, cfg.FeePercent)
	return &Quote{Amount: amount, Fee: fee, Total: amount + fee}, nil
}

// notifyPaid sends the success notification in the background. Delivery is
// best-effort: failures are logged and never reach the caller.
func (s *Service) notifyPaid(key string, entry domain.Entry) {
	if s.notifier == nil {
		s.logger.Debug().Str("key", key).Msg("notifier disabled, skipping")
		return
	}
	text := PaidMessage(key, entry, s.now())
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.SendHTML(ctx, text); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("payment notification failed")
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: kunciEntri is required", domain.ErrValidation)
	}
	if len(key) > maxKeyLength {
		return "", fmt.Errorf("%w: kunciEntri is too long", domain.ErrValidation)
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("%w: kunciEntri contains control characters", domain.ErrValidation)
		}
	}
	return key, nil
}
