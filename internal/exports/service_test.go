package exports_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/exports"
	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/zones"
	"github.com/geepos/geepos/internal/shared"
	_ "github.com/geepos/geepos/testing"
)

type fakeRepo struct {
	stored   map[int64]exports.Export
	byRef    map[string]int64
	nextID   int64
	failNext error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: map[int64]exports.Export{}, byRef: map[string]int64{}, nextID: 500}
}

func (f *fakeRepo) Create(ctx context.Context, exp exports.Export) (int64, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return 0, err
	}
	if exp.JournalRef != "" {
		if _, ok := f.byRef[exp.JournalRef]; ok {
			// Conflict target hit: the replay already landed.
			return 0, nil
		}
	}
	f.nextID++
	exp.ExportID = f.nextID
	f.stored[f.nextID] = exp
	if exp.JournalRef != "" {
		f.byRef[exp.JournalRef] = f.nextID
	}
	return f.nextID, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]exports.Export, error) {
	items := make([]exports.Export, 0, len(f.stored))
	for _, exp := range f.stored {
		items = append(items, exp)
	}
	return items, nil
}

func (f *fakeRepo) Get(ctx context.Context, exportID int64) (exports.Export, error) {
	exp, ok := f.stored[exportID]
	if !ok {
		return exports.Export{}, exports.ErrNotFound
	}
	return exp, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, exportID int64, from, to exports.Status) error {
	exp, ok := f.stored[exportID]
	if !ok {
		return exports.ErrNotFound
	}
	if exp.Status != from {
		return exports.ErrInvalidState
	}
	exp.Status = to
	f.stored[exportID] = exp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, exportID int64) error {
	if _, ok := f.stored[exportID]; !ok {
		return exports.ErrNotFound
	}
	delete(f.stored, exportID)
	return nil
}

type fakeProducts struct {
	items map[int64]products.Product
}

func (f *fakeProducts) Get(ctx context.Context, proID int64) (products.Product, error) {
	p, ok := f.items[proID]
	if !ok {
		return products.Product{}, errors.New("products: not found")
	}
	return p, nil
}

func (f *fakeProducts) AdjustStock(ctx context.Context, proID int64, delta int64) (int64, error) {
	p, ok := f.items[proID]
	if !ok {
		return 0, errors.New("products: not found")
	}
	if p.Qty+delta < 0 {
		return 0, products.ErrInsufficientStock
	}
	p.Qty += delta
	f.items[proID] = p
	return p.Qty, nil
}

type fakeZones struct {
	items map[int64]zones.Zone
}

func (f *fakeZones) Get(ctx context.Context, id int64) (zones.Zone, error) {
	z, ok := f.items[id]
	if !ok {
		return zones.Zone{}, shared.ErrNotFound
	}
	return z, nil
}

// memJournal mimics the Redis-list journal in memory.
type memJournal struct {
	entries []exports.JournalEntry
	dead    []exports.JournalEntry
	nextRef int
}

func (j *memJournal) Push(ctx context.Context, exp exports.Export) (exports.JournalEntry, error) {
	j.nextRef++
	entry := exports.JournalEntry{
		Ref:        time.Now().UTC().Format("20060102") + "-" + string(rune('a'+j.nextRef)),
		EmpID:      exp.EmpID,
		ExportDate: exp.ExportDate,
		Status:     exports.StatusPending,
		Lines:      exp.Lines,
		QueuedAt:   time.Now().UTC(),
	}
	j.entries = append(j.entries, entry)
	return entry, nil
}

func (j *memJournal) Pop(ctx context.Context) (exports.JournalEntry, bool, error) {
	if len(j.entries) == 0 {
		return exports.JournalEntry{}, false, nil
	}
	entry := j.entries[0]
	j.entries = j.entries[1:]
	return entry, true, nil
}

func (j *memJournal) Requeue(ctx context.Context, entry exports.JournalEntry) error {
	j.entries = append(j.entries, entry)
	return nil
}

func (j *memJournal) DeadLetter(ctx context.Context, entry exports.JournalEntry) error {
	j.dead = append(j.dead, entry)
	return nil
}

func (j *memJournal) Len(ctx context.Context) (int64, error) {
	return int64(len(j.entries)), nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, log shared.AuditLog) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func catalog() *fakeProducts {
	return &fakeProducts{items: map[int64]products.Product{
		10: {ProID: 10, Name: "Water", Qty: 100, SalePrice: 10},
		11: {ProID: 11, Name: "Chips", Qty: 4, SalePrice: 29},
	}}
}

func zoneTable() *fakeZones {
	return &fakeZones{items: map[int64]zones.Zone{
		1: {ZoneID: 1, Name: "A1"},
	}}
}

func newService(repo *fakeRepo, cat *fakeProducts, journal *memJournal) *exports.Service {
	return exports.NewService(repo, cat, cat, zoneTable(), journal, nopAudit{}, nil, discardLogger())
}

func validInput() exports.CreateInput {
	return exports.CreateInput{
		EmpID: 3,
		Lines: []exports.LineInput{
			{ProID: 10, Qty: 20, ZoneID: 1, Reason: "transfer to branch"},
		},
	}
}

func TestCreateStoresPending(t *testing.T) {
	repo := newFakeRepo()
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	result, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.False(t, result.Queued)
	assert.Equal(t, exports.StatusPending, result.Export.Status)
	assert.NotZero(t, result.Export.ExportID)
	// The journal is only for outages.
	assert.Empty(t, journal.entries)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(newFakeRepo(), catalog(), &memJournal{})

	cases := []struct {
		name  string
		input exports.CreateInput
	}{
		{"no lines", exports.CreateInput{EmpID: 3}},
		{"zero qty", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 10, Qty: 0, ZoneID: 1, Reason: "x"}}}},
		{"missing reason", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 10, Qty: 1, ZoneID: 1}}}},
		{"zero zone", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 10, Qty: 1, Reason: "x"}}}},
		{"unknown zone", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 10, Qty: 1, ZoneID: 40, Reason: "x"}}}},
		{"unknown product", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 99, Qty: 1, ZoneID: 1, Reason: "x"}}}},
		{"over stock", exports.CreateInput{EmpID: 3, Lines: []exports.LineInput{{ProID: 11, Qty: 5, ZoneID: 1, Reason: "x"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			assert.True(t, errors.Is(err, exports.ErrValidation), "got %v", err)
		})
	}
}

func TestCreateFallsBackToJournal(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = errors.New("connection refused")
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	result, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, result.Queued)
	assert.NotEmpty(t, result.Export.JournalRef)
	assert.Equal(t, exports.StatusPending, result.Export.Status)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, exports.StatusPending, journal.entries[0].Status)
	assert.Empty(t, repo.stored)
}

func TestCreateBadZoneNeverQueued(t *testing.T) {
	repo := newFakeRepo()
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	input := validInput()
	input.Lines[0].ZoneID = 0
	_, err := svc.Create(context.Background(), input)
	assert.True(t, errors.Is(err, exports.ErrValidation), "got %v", err)
	assert.Empty(t, journal.entries)
	assert.Empty(t, repo.stored)
}

func TestCreateConstraintErrorNotQueued(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	// The store rejecting the data means replay can never succeed, so the
	// caller gets a validation error and nothing lands in the journal.
	result, err := svc.Create(context.Background(), validInput())
	assert.True(t, errors.Is(err, exports.ErrValidation), "got %v", err)
	assert.False(t, result.Queued)
	assert.Empty(t, journal.entries)
}

func TestReconcileReplaysJournal(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = errors.New("connection refused")
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	queued, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.True(t, queued.Queued)

	replayed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)
	assert.Empty(t, journal.entries)

	require.Len(t, repo.stored, 1)
	for _, exp := range repo.stored {
		assert.Equal(t, queued.Export.JournalRef, exp.JournalRef)
		assert.Equal(t, exports.StatusPending, exp.Status)
	}

	// Replaying the same ref again is a no-op.
	require.NoError(t, journal.Requeue(context.Background(), exports.JournalEntry{
		Ref:   queued.Export.JournalRef,
		EmpID: 3,
		Lines: queued.Export.Lines,
	}))
	replayed, err = svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)
	assert.Len(t, repo.stored, 1)
}

func TestReconcileDeadLettersRejectedEntry(t *testing.T) {
	repo := newFakeRepo()
	journal := &memJournal{}
	svc := newService(repo, catalog(), journal)

	poison := exports.JournalEntry{
		Ref:   "ref-poison",
		EmpID: 3,
		Lines: []exports.Line{{ProID: 10, Qty: 1, ZoneID: 0, Reason: "transfer"}},
	}
	good := exports.JournalEntry{
		Ref:   "ref-good",
		EmpID: 3,
		Lines: []exports.Line{{ProID: 10, Qty: 1, ZoneID: 1, Reason: "transfer"}},
	}
	require.NoError(t, journal.Requeue(context.Background(), poison))
	require.NoError(t, journal.Requeue(context.Background(), good))

	// The store rejects the first entry outright; it must be parked, not
	// requeued, so the run still drains the rest of the queue.
	repo.failNext = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	replayed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	assert.Empty(t, journal.entries)
	require.Len(t, journal.dead, 1)
	assert.Equal(t, "ref-poison", journal.dead[0].Ref)
	require.Len(t, repo.stored, 1)
}

func TestApproveDecrementsStock(t *testing.T) {
	repo := newFakeRepo()
	cat := catalog()
	svc := newService(repo, cat, &memJournal{})

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.Export.ExportID, 1)
	require.NoError(t, err)
	assert.Equal(t, exports.StatusApproved, approved.Status)
	assert.Equal(t, int64(80), cat.items[10].Qty)

	// A second approval must fail: the request is no longer pending.
	_, err = svc.Approve(context.Background(), created.Export.ExportID, 1)
	assert.True(t, errors.Is(err, exports.ErrInvalidState))
	assert.Equal(t, int64(80), cat.items[10].Qty)
}

func TestApproveInsufficientStockRollsBack(t *testing.T) {
	repo := newFakeRepo()
	cat := catalog()
	svc := newService(repo, cat, &memJournal{})

	input := exports.CreateInput{
		EmpID: 3,
		Lines: []exports.LineInput{
			{ProID: 10, Qty: 20, ZoneID: 1, Reason: "transfer"},
			{ProID: 11, Qty: 4, ZoneID: 1, Reason: "transfer"},
		},
	}
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	// Stock moved between request and approval.
	p := cat.items[11]
	p.Qty = 2
	cat.items[11] = p

	_, err = svc.Approve(context.Background(), created.Export.ExportID, 1)
	require.True(t, errors.Is(err, exports.ErrInsufficientStock), "got %v", err)

	// The applied decrement was compensated and the request is pending again.
	assert.Equal(t, int64(100), cat.items[10].Qty)
	got, err := svc.Get(context.Background(), created.Export.ExportID)
	require.NoError(t, err)
	assert.Equal(t, exports.StatusPending, got.Status)
}

func TestCancelPendingOnly(t *testing.T) {
	repo := newFakeRepo()
	cat := catalog()
	svc := newService(repo, cat, &memJournal{})

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	canceled, err := svc.Cancel(context.Background(), created.Export.ExportID, 1)
	require.NoError(t, err)
	assert.Equal(t, exports.StatusCanceled, canceled.Status)
	// Cancel never touches stock.
	assert.Equal(t, int64(100), cat.items[10].Qty)

	_, err = svc.Cancel(context.Background(), created.Export.ExportID, 1)
	assert.True(t, errors.Is(err, exports.ErrInvalidState))
}

func TestDeletePendingOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, catalog(), &memJournal{})

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	approvedID := created.Export.ExportID
	_, err = svc.Approve(context.Background(), approvedID, 1)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), approvedID, 1)
	assert.True(t, errors.Is(err, exports.ErrInvalidState))

	second, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), second.Export.ExportID, 1))
	_, err = svc.Get(context.Background(), second.Export.ExportID)
	assert.True(t, errors.Is(err, exports.ErrNotFound))
}
