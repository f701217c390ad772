package service_test

// In-memory repository fakes. A fakeTxManager snapshots all fake state before
// each unit of work and restores it when fn fails, so the all-or-nothing
// contract of a real DB transaction holds in tests too. failSave /
// failCreateTx flags let tests inject persistence failures mid-commit.

import (
	"context"
	"errors"
	"sort"
	"time"

	"yardpos/internal/dto"
	"yardpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── TxManager ────────────────────────────────────────────────────────────────

type fakeTxManager struct {
	registers *fakeRegisterRepo
	orders    *fakeOrderRepo
	customers *fakeCustomerRepo
}

type fakeSnapshot struct {
	registers  map[uuid.UUID]model.CashRegister
	txs        []model.CashTransaction
	orders     map[uuid.UUID]model.Order
	items      map[uuid.UUID][]model.OrderItem
	payments   map[uuid.UUID]model.OrderPayment
	custByID   map[uuid.UUID]model.Customer
	custByName map[string]uuid.UUID
}

func (m *fakeTxManager) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := m.snapshot()
	if err := fn(nil); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *fakeTxManager) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		registers:  make(map[uuid.UUID]model.CashRegister, len(m.registers.registers)),
		txs:        append([]model.CashTransaction(nil), m.registers.txs...),
		orders:     make(map[uuid.UUID]model.Order, len(m.orders.orders)),
		items:      make(map[uuid.UUID][]model.OrderItem, len(m.orders.items)),
		payments:   make(map[uuid.UUID]model.OrderPayment, len(m.orders.payments)),
		custByID:   make(map[uuid.UUID]model.Customer, len(m.customers.byID)),
		custByName: make(map[string]uuid.UUID, len(m.customers.byName)),
	}
	for id, reg := range m.registers.registers {
		s.registers[id] = *reg
	}
	for id, o := range m.orders.orders {
		s.orders[id] = *o
	}
	for id, items := range m.orders.items {
		s.items[id] = append([]model.OrderItem(nil), items...)
	}
	for id, p := range m.orders.payments {
		s.payments[id] = p
	}
	for id, c := range m.customers.byID {
		s.custByID[id] = *c
	}
	for k, id := range m.customers.byName {
		s.custByName[k] = id
	}
	return s
}

func (m *fakeTxManager) restore(s fakeSnapshot) {
	m.registers.registers = make(map[uuid.UUID]*model.CashRegister, len(s.registers))
	for id, reg := range s.registers {
		cp := reg
		m.registers.registers[id] = &cp
	}
	m.registers.txs = s.txs

	m.orders.orders = make(map[uuid.UUID]*model.Order, len(s.orders))
	for id, o := range s.orders {
		cp := o
		m.orders.orders[id] = &cp
	}
	m.orders.items = s.items
	m.orders.payments = s.payments

	m.customers.byID = make(map[uuid.UUID]*model.Customer, len(s.custByID))
	for id, c := range s.custByID {
		cp := c
		m.customers.byID[id] = &cp
	}
	m.customers.byName = s.custByName
}

// ── RegisterRepository ───────────────────────────────────────────────────────

type fakeRegisterRepo struct {
	registers    map[uuid.UUID]*model.CashRegister
	txs          []model.CashTransaction
	failCreateTx bool
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{registers: make(map[uuid.UUID]*model.CashRegister)}
}

func (r *fakeRegisterRepo) Create(_ context.Context, _ *gorm.DB, reg *model.CashRegister) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	cp.Transactions = nil
	for _, t := range r.txs {
		if t.CashRegisterID == id {
			cp.Transactions = append(cp.Transactions, t)
		}
	}
	return &cp, nil
}

func (r *fakeRegisterRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	for _, reg := range r.registers {
		if reg.OperatorID == operatorID && reg.Status == model.RegisterOpen {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRegisterRepo) LockByID(_ *gorm.DB, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *fakeRegisterRepo) Update(_ context.Context, _ *gorm.DB, reg *model.CashRegister) error {
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) CreateTransaction(_ context.Context, _ *gorm.DB, t *model.CashTransaction) error {
	if r.failCreateTx {
		return errors.New("injected: transaction insert failed")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.txs = append(r.txs, *t)
	return nil
}

func (r *fakeRegisterRepo) ListTransactions(_ context.Context, registerID uuid.UUID) ([]model.CashTransaction, error) {
	var out []model.CashTransaction
	for _, t := range r.txs {
		if t.CashRegisterID == registerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRegisterRepo) FindTransactionByOrder(_ context.Context, orderID uuid.UUID) (*model.CashTransaction, error) {
	for _, t := range r.txs {
		if t.OrderID != nil && *t.OrderID == orderID &&
			(t.Type == model.TxSale || t.Type == model.TxPurchase) {
			cp := t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) ListClosed(_ context.Context, operatorID uuid.UUID, _, _ int) ([]model.CashRegister, int64, error) {
	var out []model.CashRegister
	for _, reg := range r.registers {
		if reg.OperatorID == operatorID && reg.Status == model.RegisterClosed {
			out = append(out, *reg)
		}
	}
	return out, int64(len(out)), nil
}

// entriesFor returns all ledger entries of one register, insertion-ordered.
func (r *fakeRegisterRepo) entriesFor(id uuid.UUID) []model.CashTransaction {
	out, _ := r.ListTransactions(context.Background(), id)
	return out
}

// ── OrderRepository ──────────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	items     map[uuid.UUID][]model.OrderItem
	payments  map[uuid.UUID]model.OrderPayment
	customers *fakeCustomerRepo
	nextNum   int
	failSave  bool
}

func newFakeOrderRepo(customers *fakeCustomerRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[uuid.UUID]*model.Order),
		items:     make(map[uuid.UUID][]model.OrderItem),
		payments:  make(map[uuid.UUID]model.OrderPayment),
		customers: customers,
	}
}

func (r *fakeOrderRepo) DB() *gorm.DB { return nil }

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	cp := *o
	cp.Items, cp.Customer, cp.Payment = nil, nil, nil
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	stored, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stored
	items := append([]model.OrderItem(nil), r.items[id]...)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	cp.Items = items
	if c, err := r.customers.FindByID(context.Background(), cp.CustomerID); err == nil {
		cp.Customer = c
	}
	if p, ok := r.payments[id]; ok {
		pay := p
		cp.Payment = &pay
	}
	return &cp, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if r.failSave {
		return errors.New("injected: order save failed")
	}
	cp := *o
	cp.Items, cp.Customer, cp.Payment = nil, nil, nil
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, o *model.Order) error {
	delete(r.orders, o.ID)
	delete(r.items, o.ID)
	delete(r.payments, o.ID)
	return nil
}

func (r *fakeOrderRepo) CreateItem(_ context.Context, item *model.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.OrderID] = append(r.items[item.OrderID], *item)
	return nil
}

func (r *fakeOrderRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	for orderID, items := range r.items {
		for i, item := range items {
			if item.ID == id {
				r.items[orderID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) CreatePayment(_ context.Context, _ *gorm.DB, p *model.OrderPayment) error {
	if _, exists := r.payments[p.OrderID]; exists {
		return errors.New("duplicate payment for order")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments[p.OrderID] = *p
	return nil
}

func (r *fakeOrderRepo) NextOrderNumber(_ context.Context) (int, error) {
	r.nextNum++
	return r.nextNum, nil
}

func (r *fakeOrderRepo) List(_ context.Context, operatorID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for id, o := range r.orders {
		if o.OperatorID != operatorID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		if filter.Type != "" && o.Type != filter.Type {
			continue
		}
		full, _ := r.FindByID(context.Background(), id)
		out = append(out, *full)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ListCompletedInWindow(_ context.Context, operatorID uuid.UUID, from time.Time, to *time.Time) ([]model.Order, error) {
	var out []model.Order
	for id, o := range r.orders {
		if o.OperatorID != operatorID || o.Status != model.OrderCompleted || o.CompletedAt == nil {
			continue
		}
		if o.CompletedAt.Before(from) {
			continue
		}
		if to != nil && !o.CompletedAt.Before(*to) {
			continue
		}
		full, _ := r.FindByID(context.Background(), id)
		out = append(out, *full)
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

// setPayment plants a payment record directly, bypassing settlement.
func (r *fakeOrderRepo) setPayment(orderID uuid.UUID, method string) {
	r.payments[orderID] = model.OrderPayment{ID: uuid.New(), OrderID: orderID, Method: method}
}

// ── CustomerRepository ───────────────────────────────────────────────────────

type fakeCustomerRepo struct {
	byID   map[uuid.UUID]*model.Customer
	byName map[string]uuid.UUID
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		byID:   make(map[uuid.UUID]*model.Customer),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *fakeCustomerRepo) key(operatorID uuid.UUID, name string) string {
	return operatorID.String() + "|" + name
}

func (r *fakeCustomerRepo) FindOrCreateByName(_ context.Context, operatorID uuid.UUID, name string) (*model.Customer, error) {
	if id, ok := r.byName[r.key(operatorID, name)]; ok {
		cp := *r.byID[id]
		return &cp, nil
	}
	c := &model.Customer{ID: uuid.New(), OperatorID: operatorID, Name: name}
	r.byID[c.ID] = c
	r.byName[r.key(operatorID, name)] = c.ID
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, _ *gorm.DB, c *model.Customer) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.byID[id]; ok {
		delete(r.byName, r.key(c.OperatorID, c.Name))
		delete(r.byID, id)
	}
	return nil
}

// ── MaterialRepository ───────────────────────────────────────────────────────

type fakeMaterialRepo struct {
	materials map[uuid.UUID]*model.Material
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: make(map[uuid.UUID]*model.Material)}
}

func (r *fakeMaterialRepo) Create(_ context.Context, m *model.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.materials[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMaterialRepo) FindByName(_ context.Context, name string) (*model.Material, error) {
	for _, m := range r.materials {
		if m.Name == name {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMaterialRepo) List(_ context.Context, includeInactive bool) ([]model.Material, error) {
	var out []model.Material
	for _, m := range r.materials {
		if m.Active || includeInactive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) Update(_ context.Context, m *model.Material) error {
	cp := *m
	r.materials[m.ID] = &cp
	return nil
}

func (r *fakeMaterialRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if m, ok := r.materials[id]; ok {
		m.Active = false
	}
	return nil
}

// ── StockProvider / ClosingNotifier ──────────────────────────────────────────

type fakeStock struct {
	levels map[string]decimal.Decimal
	err    error
}

func (s *fakeStock) CurrentStock(_ context.Context, material string) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.levels[material], nil
}

type fakeNotifier struct {
	enqueued []uuid.UUID
	err      error
}

func (n *fakeNotifier) EnqueueClosingReport(_ context.Context, registerID uuid.UUID) error {
	if n.err != nil {
		return n.err
	}
	n.enqueued = append(n.enqueued, registerID)
	return nil
}
