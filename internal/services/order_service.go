package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	tx          repositories.Transactor
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	events      EventPublisher
	validate    *validation.Validator
	log         *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService. A nil publisher disables events.
func NewOrderService(tx repositories.Transactor, orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, events EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		tx:          tx,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		events:      events,
		validate:    validation.New(),
		log:         log,
		now:         time.Now,
	}
}

type orderCreatedPayload struct {
	OrderID  int64   `json:"orderId"`
	ClientID int64   `json:"clientId"`
	Status   string  `json:"status"`
	Total    float64 `json:"total"`
}

// PlaceOrder creates an order for the calling user. Lines for the same product
// are merged and every line records the product's current price.
func (s *OrderService) PlaceOrder(ctx context.Context, d dto.OrderDTO) (*dto.OrderDTO, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(d); err != nil {
		return nil, err
	}

	lines, err := mergeLines(d.Items)
	if err != nil {
		return nil, err
	}

	var result dto.OrderDTO
	err = s.tx.Do(ctx, repositories.ReadWrite, func(ctx context.Context) error {
		order := &models.Order{
			Moment:   s.now().UTC(),
			Status:   models.OrderStatusWaitingPayment,
			ClientID: principal.UserID,
			Items:    make([]models.OrderItem, 0, len(lines)),
		}
		for _, line := range lines {
			product, err := s.productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperror.NotFound(fmt.Sprintf("Product %d not found", line.ProductID)).WithError(err)
				}
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
		}

		if err := s.orderRepo.Create(ctx, order); err != nil {
			if errors.Is(err, repositories.ErrIntegrityViolation) {
				return apperror.Integrity(msgIntegrity).WithError(err)
			}
			return err
		}

		saved, err := s.orderRepo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		result = dto.NewOrderDTO(saved)
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}

	metrics.RecordOrderPlaced()
	logger.For(ctx, s.log).Info("Order placed",
		zap.Int64("order_id", result.ID),
		zap.Int64("client_id", result.ClientID),
		zap.Float64("total", result.Total))
	publishEvent(ctx, s.log, s.events, EventOrderCreated, orderCreatedPayload{
		OrderID:  result.ID,
		ClientID: result.ClientID,
		Status:   result.Status,
		Total:    result.Total,
	})
	return &result, nil
}

// FindByID returns an order to its owner or to an administrator.
func (s *OrderService) FindByID(ctx context.Context, id int64) (*dto.OrderDTO, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	var result dto.OrderDTO
	err = s.tx.Do(ctx, repositories.ReadOnly, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperror.NotFound("Order not found").WithError(err)
			}
			return err
		}
		if !principal.IsAdmin() && order.ClientID != principal.UserID {
			return apperror.Forbidden("Access denied")
		}
		result = dto.NewOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return &result, nil
}

// mergeLines sums quantities per product, keeping first-seen order. A merged
// quantity above dto.MaxItemQuantity is rejected.
func mergeLines(items []dto.OrderItemDTO) ([]dto.OrderItemDTO, error) {
	index := make(map[int64]int, len(items))
	out := make([]dto.OrderItemDTO, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			// Both terms are already bounded, so the sum cannot overflow.
			if out[i].Quantity > dto.MaxItemQuantity-item.Quantity {
				return nil, apperror.Validation("Invalid data", apperror.FieldError{
					Field:   "items",
					Message: fmt.Sprintf("Quantity for product %d must be at most %d", item.ProductID, dto.MaxItemQuantity),
				})
			}
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, dto.OrderItemDTO{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out, nil
}
