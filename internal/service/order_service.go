package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/domain"
	"github.com/12344-munna/order-handler/internal/events"
	"github.com/12344-munna/order-handler/internal/repository"
)

var (
	ErrInvalidCodeFormat = errors.New("invalid product code format")
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("out of stock")
)

const orderSource = "messenger"

// OrderEventPublisher emits order-confirmed events for downstream
// fulfillment. Publish failures must not affect the confirmation itself.
type OrderEventPublisher interface {
	PublishOrderConfirmed(event events.OrderConfirmedEvent) error
}

type OrderService struct {
	productRepo *repository.ProductRepository
	orderRepo   *repository.OrderRepository
	publisher   OrderEventPublisher
	logger      *zap.Logger
}

func NewOrderService(productRepo *repository.ProductRepository, orderRepo *repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// SetEventPublisher wires the optional Kafka feed.
func (s *OrderService) SetEventPublisher(p OrderEventPublisher) {
	s.publisher = p
}

// stockState is the working copy of one product's stock during validation.
type stockState struct {
	product *domain.Product
	sizes   map[string]int
	prev    int
}

// ConfirmOrder validates every product code in the intent, decrements stock
// by one unit per code occurrence, and writes the inventory updates together
// with the new pending order in a single transaction. Any validation failure
// aborts the whole confirmation with stock untouched.
func (s *OrderService) ConfirmOrder(ctx context.Context, intent domain.OrderIntent, senderID string) (*domain.PendingOrder, error) {
	if len(intent.ProductCodes) == 0 {
		return nil, fmt.Errorf("%w: no product codes in message", ErrInvalidCodeFormat)
	}

	states := make(map[string]*stockState)
	items := make(map[string]*domain.OrderItem)
	var productOrder []string
	var buyingTotal float64

	for _, code := range intent.ProductCodes {
		productCode, size, err := splitProductCode(code)
		if err != nil {
			return nil, err
		}

		st, ok := states[productCode]
		if !ok {
			product, err := s.productRepo.GetProduct(ctx, productCode)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productCode)
				}
				return nil, err
			}

			sizes := make(map[string]int, len(product.Sizes))
			for label, qty := range product.Sizes {
				sizes[label] = qty
			}
			st = &stockState{
				product: product,
				sizes:   sizes,
				prev:    product.AvailableAmount,
			}
			states[productCode] = st
			productOrder = append(productOrder, productCode)
		}

		if st.sizes[size] <= 0 {
			return nil, fmt.Errorf("%w: %s size %s", ErrOutOfStock, productCode, size)
		}
		st.sizes[size]--
		buyingTotal += st.product.BuyingPrice

		item, ok := items[productCode]
		if !ok {
			item = &domain.OrderItem{
				ProductID:   productCode,
				ProductName: st.product.Name,
				Sizes:       make(map[string]int),
				UnitPrice:   st.product.SellingPrice,
			}
			items[productCode] = item
		}
		item.Sizes[size]++
		item.TotalPrice += st.product.SellingPrice
	}

	var orderItems []domain.OrderItem
	var sellingTotal float64
	for _, productCode := range productOrder {
		orderItems = append(orderItems, *items[productCode])
		sellingTotal += items[productCode].TotalPrice
	}

	updates := make([]repository.StockUpdate, 0, len(productOrder))
	for _, productCode := range productOrder {
		st := states[productCode]
		available := 0
		for _, qty := range st.sizes {
			available += qty
		}
		updates = append(updates, repository.StockUpdate{
			ProductCode:         productCode,
			Sizes:               st.sizes,
			AvailableAmount:     available,
			PrevAvailableAmount: st.prev,
		})
	}

	order := &domain.PendingOrder{
		OrderID:         uuid.NewString(),
		CustomerName:    intent.Name,
		CustomerAddress: intent.Address,
		CustomerPhone:   intent.Phone,
		Items:           orderItems,
		DeliveryCharge:  intent.DeliveryCharge,
		AdvancePaid:     intent.PaidInAdvance,
		CODAmount:       intent.COD,
		TotalOrderPrice: sellingTotal + intent.DeliveryCharge,
		Profit:          intent.COD + intent.PaidInAdvance - buyingTotal - intent.DeliveryCharge,
		Status:          domain.StatusPending,
		Source:          orderSource,
		UserID:          senderID,
		CustomerFbID:    senderID,
	}

	if err := s.orderRepo.ConfirmOrder(ctx, order, updates); err != nil {
		return nil, err
	}

	s.logger.Info("Pending order created",
		zap.String("order_id", order.OrderID),
		zap.Int("items", len(order.Items)),
		zap.Float64("profit", order.Profit))

	s.publishConfirmed(order)

	return order, nil
}

// TrackingMessage builds the reply for a /trackinglink request.
func (s *OrderService) TrackingMessage(ctx context.Context, customerFbID string) (string, error) {
	order, err := s.orderRepo.LatestTrackedOrder(ctx, customerFbID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "Sorry, no shipped order was found for you.", nil
	}
	return "Track your order here: " + trackingURL(order), nil
}

func trackingURL(order *domain.PendingOrder) string {
	if strings.EqualFold(order.Courier, "pathao") {
		return fmt.Sprintf("https://merchant.pathao.com/tracking?consignment_id=%s", order.ConsignmentID)
	}
	return fmt.Sprintf("https://steadfast.com.bd/t/%s", order.ConsignmentID)
}

// splitProductCode splits "AB12-M" on the last dash into code and
// upper-cased size.
func splitProductCode(code string) (productCode, size string, err error) {
	idx := strings.LastIndex(code, "-")
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, code)
	}

	productCode = strings.TrimSpace(code[:idx])
	size = strings.ToUpper(strings.TrimSpace(code[idx+1:]))
	if productCode == "" || size == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, code)
	}

	return productCode, size, nil
}

func (s *OrderService) publishConfirmed(order *domain.PendingOrder) {
	if s.publisher == nil {
		return
	}

	eventItems := make([]events.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		quantity := 0
		for _, qty := range item.Sizes {
			quantity += qty
		}
		eventItems = append(eventItems, events.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	event := events.OrderConfirmedEvent{
		EventID:      uuid.NewString(),
		OrderID:      order.OrderID,
		CustomerFbID: order.CustomerFbID,
		Items:        eventItems,
		TotalAmount:  order.TotalOrderPrice,
		Profit:       order.Profit,
		Timestamp:    time.Now().UTC(),
	}

	if err := s.publisher.PublishOrderConfirmed(event); err != nil {
		s.logger.Error("Failed to publish order confirmed event",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}
}
