package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory Store. Lets us test the real ledger rules without a database.
// The pgx.Tx parameter is ignored, exactly like the repository mocks in the
// rest of the codebase.
// ---------------------------------------------------------------------------

type memStore struct {
	mu    sync.Mutex
	txs   []*models.Transaction
	holds []*models.EscrowHold
}

func (m *memStore) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (m *memStore) Append(_ context.Context, _ pgx.Tx, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.CreatedAt = time.Now()
	m.txs = append(m.txs, &cp)
	return nil
}

func (m *memStore) SumCompleted(_ context.Context, _ pgx.Tx, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, t := range m.txs {
		if t.UserID == userID && t.Status == models.TxStatusCompleted {
			total += t.AmountCents
		}
	}
	return total, nil
}

func (m *memStore) LockBalance(_ context.Context, _ pgx.Tx, _ uuid.UUID) error { return nil }

func (m *memStore) InsertHold(_ context.Context, _ pgx.Tx, h *models.EscrowHold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.holds {
		if existing.JobID == h.JobID && existing.State == models.HoldStateHeld {
			return ErrDuplicateHold
		}
	}
	cp := *h
	cp.CreatedAt = time.Now()
	m.holds = append(m.holds, &cp)
	return nil
}

func (m *memStore) HoldForUpdate(_ context.Context, _ pgx.Tx, jobID uuid.UUID) (*models.EscrowHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.EscrowHold
	for _, h := range m.holds {
		if h.JobID == jobID {
			latest = h
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) SetHoldState(_ context.Context, _ pgx.Tx, holdID uuid.UUID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.holds {
		if h.ID == holdID {
			h.State = state
			return nil
		}
	}
	return ErrHoldNotFound
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, t := range m.txs {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) countByDesc(desc string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.txs {
		if t.Description == desc {
			n++
		}
	}
	return n
}

func (m *memStore) activeHolds(jobID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.holds {
		if h.JobID == jobID && h.State == models.HoldStateHeld {
			n++
		}
	}
	return n
}

func mustBalance(t *testing.T, svc Service, userID uuid.UUID) int64 {
	t.Helper()
	b, err := svc.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	return b
}

// ---------------------------------------------------------------------------
// Balance derivation: balance == sum of completed transaction amounts,
// after any sequence of top-up/hold/release/refund/withdraw.
// ---------------------------------------------------------------------------

func TestBalanceDerivation(t *testing.T) {
	client := uuid.New()
	freelancer := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, client, 100000, "card_1"); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	// Pending entries must not count.
	if _, err := svc.RecordTransaction(ctx, client, "Pending deposit", 5000, models.TxStatusPending); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if _, err := svc.RecordTransaction(ctx, client, "Failed deposit", 7000, models.TxStatusFailed); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if got := mustBalance(t, svc, client); got != 100000 {
		t.Errorf("client balance: got %d, want 100000", got)
	}

	job := uuid.New()
	if err := svc.CreateHold(ctx, nil, job, client, freelancer, 50000); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if got := mustBalance(t, svc, client); got != 50000 {
		t.Errorf("client balance after hold: got %d, want 50000", got)
	}
	if err := svc.ReleaseHold(ctx, nil, job); err != nil {
		t.Fatalf("ReleaseHold: %v", err)
	}
	if got := mustBalance(t, svc, freelancer); got != 50000 {
		t.Errorf("freelancer balance after release: got %d, want 50000", got)
	}

	// Cross-check every user against the raw completed sum.
	for _, u := range []uuid.UUID{client, freelancer} {
		txs, err := svc.ListTransactions(ctx, u)
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		var sum int64
		for _, tx := range txs {
			if tx.Status == models.TxStatusCompleted {
				sum += tx.AmountCents
			}
		}
		if got := mustBalance(t, svc, u); got != sum {
			t.Errorf("user %s: balance %d != completed sum %d", u, got, sum)
		}
	}
}

// ---------------------------------------------------------------------------
// Hold creation guards.
// ---------------------------------------------------------------------------

func TestCreateHoldInsufficientFunds(t *testing.T) {
	client := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	err := svc.CreateHold(ctx, nil, uuid.New(), client, uuid.New(), 50000)
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := mustBalance(t, svc, client); got != 0 {
		t.Errorf("failed hold must not touch the ledger: balance %d", got)
	}
	if n := store.countByDesc(models.TxDescEscrowHold); n != 0 {
		t.Errorf("expected 0 hold entries, got %d", n)
	}
}

func TestCreateHoldDuplicate(t *testing.T) {
	client := uuid.New()
	job := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, client, 100000, "card_1"); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if err := svc.CreateHold(ctx, nil, job, client, uuid.New(), 10000); err != nil {
		t.Fatalf("first CreateHold: %v", err)
	}
	if err := svc.CreateHold(ctx, nil, job, client, uuid.New(), 10000); err != ErrDuplicateHold {
		t.Fatalf("expected ErrDuplicateHold, got %v", err)
	}
	if n := store.activeHolds(job); n != 1 {
		t.Errorf("active holds for job: got %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Idempotent release/refund.
// ---------------------------------------------------------------------------

func TestReleaseHoldIdempotent(t *testing.T) {
	client := uuid.New()
	freelancer := uuid.New()
	job := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, client, 100000, "card_1"); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if err := svc.CreateHold(ctx, nil, job, client, freelancer, 50000); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	if err := svc.ReleaseHold(ctx, nil, job); err != nil {
		t.Fatalf("first ReleaseHold: %v", err)
	}
	if err := svc.ReleaseHold(ctx, nil, job); err != nil {
		t.Fatalf("second ReleaseHold should be a no-op, got %v", err)
	}
	if got := mustBalance(t, svc, freelancer); got != 50000 {
		t.Errorf("freelancer credited twice: balance %d, want 50000", got)
	}
	if n := store.countByDesc(models.TxDescEscrowRelease); n != 1 {
		t.Errorf("release entries: got %d, want 1", n)
	}

	// Released holds cannot be refunded.
	if err := svc.RefundHold(ctx, nil, job); err != ErrInvalidHoldState {
		t.Errorf("expected ErrInvalidHoldState, got %v", err)
	}
}

func TestRefundHold(t *testing.T) {
	client := uuid.New()
	job := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, client, 80000, "wallet_evc"); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if err := svc.CreateHold(ctx, nil, job, client, uuid.New(), 80000); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if got := mustBalance(t, svc, client); got != 0 {
		t.Fatalf("balance after hold: got %d, want 0", got)
	}

	if err := svc.RefundHold(ctx, nil, job); err != nil {
		t.Fatalf("RefundHold: %v", err)
	}
	if err := svc.RefundHold(ctx, nil, job); err != nil {
		t.Fatalf("second RefundHold should be a no-op, got %v", err)
	}
	if got := mustBalance(t, svc, client); got != 80000 {
		t.Errorf("client balance after refund: got %d, want 80000", got)
	}
}

func TestReleaseHoldNotFound(t *testing.T) {
	svc := NewService(&memStore{})
	if err := svc.ReleaseHold(context.Background(), nil, uuid.New()); err != ErrHoldNotFound {
		t.Fatalf("expected ErrHoldNotFound, got %v", err)
	}
	if err := svc.RefundHold(context.Background(), nil, uuid.New()); err != ErrHoldNotFound {
		t.Fatalf("expected ErrHoldNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Withdraw.
// ---------------------------------------------------------------------------

func TestWithdraw(t *testing.T) {
	user := uuid.New()
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, user, 30000, "card_1"); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if _, err := svc.Withdraw(ctx, user, 12500); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if got := mustBalance(t, svc, user); got != 17500 {
		t.Errorf("balance after withdraw: got %d, want 17500", got)
	}
	if _, err := svc.Withdraw(ctx, user, 20000); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, user, 0); err != models.ErrBadAmount {
		t.Fatalf("expected ErrBadAmount for zero withdrawal, got %v", err)
	}
}
