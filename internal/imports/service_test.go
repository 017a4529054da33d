package imports_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/imports"
	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/shared"
	_ "github.com/geepos/geepos/testing"
)

type fakeRepo struct {
	created   []imports.Import
	statuses  map[int64]imports.Status
	applied   map[int64][]int64
	nextID    int64
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{statuses: map[int64]imports.Status{}, applied: map[int64][]int64{}, nextID: 100}
}

func (f *fakeRepo) Create(ctx context.Context, imp imports.Import) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	imp.ImpID = f.nextID
	f.created = append(f.created, imp)
	return f.nextID, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, impID int64, status imports.Status) error {
	f.statuses[impID] = status
	return nil
}

func (f *fakeRepo) MarkLineApplied(ctx context.Context, impID, proID int64) error {
	f.applied[impID] = append(f.applied[impID], proID)
	return nil
}

func (f *fakeRepo) List(ctx context.Context) ([]imports.Import, error) { return f.created, nil }

func (f *fakeRepo) Get(ctx context.Context, impID int64) (imports.Import, error) {
	for _, imp := range f.created {
		if imp.ImpID == impID {
			return imp, nil
		}
	}
	return imports.Import{}, imports.ErrNotFound
}

type fakeOrders struct {
	order   orders.Order
	deleted []int64
}

func (f *fakeOrders) Get(ctx context.Context, orderID int64) (orders.Order, error) {
	if f.order.OrderID != orderID {
		return orders.Order{}, orders.ErrNotFound
	}
	return f.order, nil
}

func (f *fakeOrders) Delete(ctx context.Context, orderID int64) error {
	f.deleted = append(f.deleted, orderID)
	return nil
}

// fakeStock rejects increments for the product IDs in failFor.
type fakeStock struct {
	levels  map[int64]int64
	failFor map[int64]bool
}

func (f *fakeStock) AdjustStock(ctx context.Context, proID int64, delta int64) (int64, error) {
	if f.failFor[proID] {
		return 0, products.ErrInsufficientStock
	}
	f.levels[proID] += delta
	return f.levels[proID], nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(ctx context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingOrder() orders.Order {
	return orders.Order{
		OrderID:   42,
		OrderNo:   "ORD-1",
		SupID:     1,
		EmpID:     3,
		OrderDate: time.Now().UTC(),
		Lines: []orders.Line{
			{ProID: 10, Qty: 5},
			{ProID: 11, Qty: 3},
		},
	}
}

func costs() map[int64]float64 {
	return map[int64]float64{10: 5.0, 11: 14.0}
}

func TestImportOrderFullSuccess(t *testing.T) {
	repo := newFakeRepo()
	ordersPort := &fakeOrders{order: pendingOrder()}
	stock := &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{}}
	audit := &fakeAudit{}
	svc := imports.NewService(repo, ordersPort, stock, audit, nil, discardLogger())

	result, err := svc.ImportOrder(context.Background(), imports.ImportInput{
		OrderID: 42, EmpID: 3, CostPrices: costs(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Applied)
	assert.True(t, result.OrderDeleted)
	assert.Equal(t, imports.StatusCompleted, result.Import.Status)
	assert.Equal(t, "all 2 items received into stock", result.Message)

	assert.Equal(t, int64(5), stock.levels[10])
	assert.Equal(t, int64(3), stock.levels[11])
	assert.Equal(t, []int64{42}, ordersPort.deleted)
	require.Len(t, repo.created, 1)
	assert.InDelta(t, 5*5.0+3*14.0, repo.created[0].TotalPrice, 0.001)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "IMPORT_POST", audit.logs[0].Action)
}

func TestImportOrderNoLineApplied(t *testing.T) {
	repo := newFakeRepo()
	ordersPort := &fakeOrders{order: pendingOrder()}
	stock := &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{10: true, 11: true}}
	svc := imports.NewService(repo, ordersPort, stock, &fakeAudit{}, nil, discardLogger())

	result, err := svc.ImportOrder(context.Background(), imports.ImportInput{
		OrderID: 42, EmpID: 3, CostPrices: costs(),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Applied)
	assert.False(t, result.OrderDeleted)
	assert.Equal(t, imports.StatusFailed, result.Import.Status)
	assert.Equal(t, "no items could be received, order kept", result.Message)
	assert.Empty(t, ordersPort.deleted)
}

// A partially applied import must keep the source order; deleting it would
// silently drop the lines that never made it into stock.
func TestImportOrderPartialKeepsOrder(t *testing.T) {
	repo := newFakeRepo()
	ordersPort := &fakeOrders{order: pendingOrder()}
	stock := &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{11: true}}
	svc := imports.NewService(repo, ordersPort, stock, &fakeAudit{}, nil, discardLogger())

	result, err := svc.ImportOrder(context.Background(), imports.ImportInput{
		OrderID: 42, EmpID: 3, CostPrices: costs(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 2, result.Total)
	assert.False(t, result.OrderDeleted)
	assert.Equal(t, imports.StatusPartial, result.Import.Status)
	assert.Equal(t, "1 of 2 items received, order kept for the remainder", result.Message)
	assert.Empty(t, ordersPort.deleted)

	assert.Equal(t, int64(5), stock.levels[10])
	assert.Zero(t, stock.levels[11])
}

func TestImportOrderAlreadyImported(t *testing.T) {
	order := pendingOrder()
	order.Imported = true
	svc := imports.NewService(newFakeRepo(), &fakeOrders{order: order}, &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{}}, &fakeAudit{}, nil, discardLogger())

	_, err := svc.ImportOrder(context.Background(), imports.ImportInput{OrderID: 42, EmpID: 3, CostPrices: costs()})
	assert.True(t, errors.Is(err, imports.ErrOrderImported))
}

// Two receivers can both read the order before either insert lands. The
// unique index on order_id makes the store reject the loser, and no stock
// moves for it.
func TestImportOrderConcurrentDuplicateRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = imports.ErrOrderImported
	stock := &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{}}
	svc := imports.NewService(repo, &fakeOrders{order: pendingOrder()}, stock, &fakeAudit{}, nil, discardLogger())

	_, err := svc.ImportOrder(context.Background(), imports.ImportInput{
		OrderID: 42, EmpID: 3, CostPrices: costs(),
	})
	assert.True(t, errors.Is(err, imports.ErrOrderImported), "got %v", err)
	assert.Empty(t, stock.levels)
	assert.Empty(t, repo.created)
}

func TestImportOrderMissingCostPrice(t *testing.T) {
	svc := imports.NewService(newFakeRepo(), &fakeOrders{order: pendingOrder()}, &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{}}, &fakeAudit{}, nil, discardLogger())

	_, err := svc.ImportOrder(context.Background(), imports.ImportInput{
		OrderID: 42, EmpID: 3, CostPrices: map[int64]float64{10: 5.0},
	})
	assert.True(t, errors.Is(err, imports.ErrValidation))
}

func TestImportOrderEmptyOrder(t *testing.T) {
	order := pendingOrder()
	order.Lines = nil
	svc := imports.NewService(newFakeRepo(), &fakeOrders{order: order}, &fakeStock{levels: map[int64]int64{}, failFor: map[int64]bool{}}, &fakeAudit{}, nil, discardLogger())

	_, err := svc.ImportOrder(context.Background(), imports.ImportInput{OrderID: 42, EmpID: 3, CostPrices: costs()})
	assert.True(t, errors.Is(err, imports.ErrNoLines))
}
