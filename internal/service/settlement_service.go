package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yardpos/internal/dto"
	"yardpos/internal/model"
	"yardpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService owns the open → completed order transition and is the
// only writer allowed to touch the ledger as part of that transition. It is
// stateless between calls; all state lives in the store.
type SettlementService interface {
	CreateOrder(ctx context.Context, operatorID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, operatorID, orderID uuid.UUID) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, operatorID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	AddItem(ctx context.Context, operatorID, orderID uuid.UUID, req dto.AddItemRequest) (*dto.OrderResponse, error)
	RemoveItem(ctx context.Context, operatorID, orderID uuid.UUID, index int) (*dto.OrderResponse, error)
	DeleteOrder(ctx context.Context, operatorID, orderID uuid.UUID) error

	// InitiateSettlement runs the advisory preconditions: EmptyOrder, stock
	// for sales, funds for purchases. No state is mutated.
	InitiateSettlement(ctx context.Context, operatorID, orderID uuid.UUID) error
	// CommitSettlement is the atomic unit of work: stock re-check, order
	// completion, customer/order/payment persistence and the ledger entry,
	// all in one DB transaction. Re-committing a completed order is a no-op
	// returning the finalized order (callers re-query after an unknown
	// outcome rather than blindly retrying).
	CommitSettlement(ctx context.Context, operatorID, orderID uuid.UUID, paymentMethod string) (*dto.OrderResponse, error)
	// Settle chains InitiateSettlement and CommitSettlement.
	Settle(ctx context.Context, operatorID, orderID uuid.UUID, paymentMethod string) (*dto.OrderResponse, error)

	// CancelOrder flags a completed order out of reconciliation and, when
	// the originating register is still open, appends a compensating
	// reversal entry. Ledger rows are never edited.
	CancelOrder(ctx context.Context, operatorID, orderID uuid.UUID, reason string) error
}

type settlementService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	registers repository.RegisterRepository
	materials repository.MaterialRepository
	ledger    LedgerService
	stock     StockProvider
	txm       repository.TxManager
}

func NewSettlementService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	registers repository.RegisterRepository,
	materials repository.MaterialRepository,
	ledger LedgerService,
	stock StockProvider,
	txm repository.TxManager,
) SettlementService {
	return &settlementService{
		orders:    orders,
		customers: customers,
		registers: registers,
		materials: materials,
		ledger:    ledger,
		stock:     stock,
		txm:       txm,
	}
}

// ── Order building ────────────────────────────────────────────────────────────

func (s *settlementService) CreateOrder(ctx context.Context, operatorID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	customer, err := s.customers.FindOrCreateByName(ctx, operatorID, req.CustomerName)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "create order", Err: err}
	}

	number, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "create order", Err: err}
	}

	order := &model.Order{
		Number:     number,
		OperatorID: operatorID,
		CustomerID: customer.ID,
		Type:       req.Type,
		Status:     model.OrderOpen,
		Total:      decimal.Zero,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, &StoreUnavailableError{Op: "create order", Err: err}
	}
	order.Customer = customer
	return orderToResponse(order), nil
}

func (s *settlementService) GetOrder(ctx context.Context, operatorID, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *settlementService) ListOrders(ctx context.Context, operatorID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.orders.List(ctx, operatorID, filter)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "list orders", Err: err}
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *settlementService) AddItem(ctx context.Context, operatorID, orderID uuid.UUID, req dto.AddItemRequest) (*dto.OrderResponse, error) {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderOpen {
		return nil, ErrOrderNotOpen
	}

	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("invalid material_id: %w", err)
	}
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("material %s not found", req.MaterialID)
	}
	if !material.Active {
		return nil, fmt.Errorf("material %s is inactive", material.Name)
	}

	// Quantity is net of tare; the line is priced on net weight only.
	net := req.GrossWeight.Sub(req.Tare)
	if !net.IsPositive() {
		return nil, fmt.Errorf("net weight must be positive (gross %s, tare %s)",
			req.GrossWeight.StringFixed(3), req.Tare.StringFixed(3))
	}

	// Positions are max+1, not len(items): removals leave gaps and a length-
	// based position would collide with a surviving row.
	position := 0
	for _, existing := range order.Items {
		if existing.Position >= position {
			position = existing.Position + 1
		}
	}

	item := &model.OrderItem{
		OrderID:      order.ID,
		MaterialID:   material.ID,
		MaterialName: material.Name,
		Position:     position,
		Quantity:     net,
		Tare:         req.Tare,
		UnitPrice:    req.UnitPrice,
		Total:        req.UnitPrice.Mul(net).Round(2),
	}
	if err := s.orders.CreateItem(ctx, item); err != nil {
		return nil, &StoreUnavailableError{Op: "add item", Err: err}
	}
	return s.recomputeTotal(ctx, order.ID)
}

func (s *settlementService) RemoveItem(ctx context.Context, operatorID, orderID uuid.UUID, index int) (*dto.OrderResponse, error) {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderOpen {
		return nil, ErrOrderNotOpen
	}
	if index < 0 || index >= len(order.Items) {
		return nil, fmt.Errorf("item index %d out of range", index)
	}
	if err := s.orders.DeleteItem(ctx, order.Items[index].ID); err != nil {
		return nil, &StoreUnavailableError{Op: "remove item", Err: err}
	}
	return s.recomputeTotal(ctx, order.ID)
}

// recomputeTotal rebuilds the order total from scratch after every item
// mutation instead of adjusting incrementally, so the total cannot drift.
// Item positions are left as stored; they stay unique and ordered even with
// gaps from removals.
func (s *settlementService) recomputeTotal(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "recompute total", Err: err}
	}
	total := decimal.Zero
	for i := range order.Items {
		total = total.Add(order.Items[i].Total)
	}
	order.Total = total
	if err := s.orders.Save(ctx, s.orders.DB(), order); err != nil {
		return nil, &StoreUnavailableError{Op: "recompute total", Err: err}
	}
	return orderToResponse(order), nil
}

func (s *settlementService) DeleteOrder(ctx context.Context, operatorID, orderID uuid.UUID) error {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderOpen {
		return ErrOrderNotOpen
	}
	if err := s.orders.Delete(ctx, order); err != nil {
		return &StoreUnavailableError{Op: "delete order", Err: err}
	}

	// A customer with no remaining orders is garbage-collected.
	remaining, err := s.orders.CountByCustomer(ctx, order.CustomerID)
	if err == nil && remaining == 0 {
		if err := s.customers.Delete(ctx, order.CustomerID); err != nil {
			log.Warn().Err(err).Str("customer_id", order.CustomerID.String()).
				Msg("failed to remove orphaned customer")
		}
	}
	return nil
}

// ── Settlement ────────────────────────────────────────────────────────────────

func (s *settlementService) InitiateSettlement(ctx context.Context, operatorID, orderID uuid.UUID) error {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderOpen {
		return ErrOrderNotOpen
	}
	if len(order.Items) == 0 {
		return ErrEmptyOrder
	}

	switch order.Type {
	case model.OrderSale:
		// Advisory stock check; the authoritative one runs inside commit.
		if err := s.checkStock(ctx, order); err != nil {
			return err
		}
	case model.OrderPurchase:
		// Funds are only checked while a register is open; a purchase with
		// no open drawer completes without a ledger entry.
		reg, err := s.registers.FindOpenByOperator(ctx, operatorID)
		if err != nil {
			return &StoreUnavailableError{Op: "initiate settlement", Err: err}
		}
		if reg != nil && reg.CurrentAmount.LessThan(order.Total) {
			return insufficientFunds(order.Total, reg.CurrentAmount)
		}
	}
	return nil
}

// checkStock fails on the first item whose required quantity exceeds what
// the inventory aggregator currently reports. Sales only.
func (s *settlementService) checkStock(ctx context.Context, order *model.Order) error {
	for _, item := range order.Items {
		have, err := s.stock.CurrentStock(ctx, item.MaterialName)
		if err != nil {
			return &StoreUnavailableError{Op: "stock query", Err: err}
		}
		if have.LessThan(item.Quantity) {
			return &InsufficientStockError{
				Material: item.MaterialName,
				Have:     have,
				Need:     item.Quantity,
			}
		}
	}
	return nil
}

func (s *settlementService) CommitSettlement(ctx context.Context, operatorID, orderID uuid.UUID, paymentMethod string) (*dto.OrderResponse, error) {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderCompleted {
		return orderToResponse(order), nil
	}
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	txErr := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		// Final stock check inside the transaction — closes the race window
		// between two concurrent sale settlements against the same material.
		// Funds are deliberately NOT re-checked for purchases: once
		// authorized, the debit is unconditional.
		if order.Type == model.OrderSale {
			if err := s.checkStock(ctx, order); err != nil {
				return err
			}
		}

		now := time.Now()
		order.Status = model.OrderCompleted
		order.CompletedAt = &now

		if order.Customer != nil {
			if err := s.customers.Save(ctx, tx, order.Customer); err != nil {
				return err
			}
		}
		if err := s.orders.Save(ctx, tx, order); err != nil {
			return err
		}
		if err := s.orders.CreatePayment(ctx, tx, &model.OrderPayment{
			OrderID: order.ID,
			Method:  paymentMethod,
		}); err != nil {
			return err
		}

		// One ledger entry per settled order, when a drawer is open. Sales
		// complete unconditionally even without one.
		reg, err := s.registers.FindOpenByOperator(ctx, operatorID)
		if err != nil {
			return err
		}
		if reg != nil {
			entryType := model.TxSale
			if order.Type == model.OrderPurchase {
				entryType = model.TxPurchase
			}
			ref := order.ID
			if _, err := s.ledger.Append(ctx, tx, reg.ID, LedgerEntry{
				Type:        entryType,
				Amount:      order.Total,
				Description: fmt.Sprintf("Order #%d", order.Number),
				OrderID:     &ref,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		// The transaction rolled back: the order is still open from the
		// caller's point of view. Typed precondition errors pass through;
		// everything else is a settlement failure.
		order.Status = model.OrderOpen
		order.CompletedAt = nil

		var stockErr *InsufficientStockError
		if errors.As(txErr, &stockErr) {
			return nil, txErr
		}
		if errors.Is(txErr, context.DeadlineExceeded) || errors.Is(txErr, context.Canceled) {
			return nil, &StoreUnavailableError{Op: "commit settlement", Err: txErr}
		}
		return nil, &SettlementFailedError{Err: txErr}
	}

	log.Info().
		Int("order", order.Number).
		Str("type", order.Type).
		Str("total", order.Total.StringFixed(2)).
		Str("payment", paymentMethod).
		Msg("order settled")

	order.Payment = &model.OrderPayment{OrderID: order.ID, Method: paymentMethod}
	return orderToResponse(order), nil
}

func (s *settlementService) Settle(ctx context.Context, operatorID, orderID uuid.UUID, paymentMethod string) (*dto.OrderResponse, error) {
	if err := s.InitiateSettlement(ctx, operatorID, orderID); err != nil {
		return nil, err
	}
	return s.CommitSettlement(ctx, operatorID, orderID, paymentMethod)
}

// ── Cancellation ──────────────────────────────────────────────────────────────

func (s *settlementService) CancelOrder(ctx context.Context, operatorID, orderID uuid.UUID, reason string) error {
	order, err := s.findOwned(ctx, operatorID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderCompleted {
		return ErrOrderNotOpen
	}
	if order.Cancelled {
		return errors.New("order is already cancelled")
	}

	return s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		order.Cancelled = true
		if err := s.orders.Save(ctx, tx, order); err != nil {
			return err
		}

		// Compensate the original ledger entry when its register is still
		// open. A closed register stays untouched; the cancellation flag
		// alone excludes the order from reconciliation.
		original, err := s.registers.FindTransactionByOrder(ctx, order.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		reg, err := s.registers.FindByID(ctx, original.CashRegisterID)
		if err != nil || reg.Status != model.RegisterOpen {
			return nil
		}
		reversedType := original.Type
		reversalOf := original.ID
		_, err = s.ledger.Append(ctx, tx, reg.ID, LedgerEntry{
			Type:         model.TxReversal,
			Amount:       original.Amount,
			Description:  fmt.Sprintf("Reversal of order #%d — %s", order.Number, reason),
			OrderID:      &order.ID,
			ReversalOf:   &reversalOf,
			ReversedType: &reversedType,
		})
		return err
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *settlementService) findOwned(ctx context.Context, operatorID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, &StoreUnavailableError{Op: "load order", Err: err}
	}
	if order.OperatorID != operatorID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			Material:  item.MaterialName,
			Quantity:  item.Quantity,
			Tare:      item.Tare,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	resp := &dto.OrderResponse{
		ID:        o.ID.String(),
		Number:    o.Number,
		Type:      o.Type,
		Status:    o.Status,
		Cancelled: o.Cancelled,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.Customer != nil {
		resp.Customer = o.Customer.Name
	}
	if o.Payment != nil {
		m := o.Payment.Method
		resp.PaymentMethod = &m
	}
	if o.CompletedAt != nil {
		t := o.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	return resp
}
