package command

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/domain"
)

const (
	availablePrefix    = "/available:"
	trackingPrefix     = "/trackinglink"
	confirmationMarker = "/confirmation"
)

// OrderConfirmer commits a parsed order intent against inventory.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, intent domain.OrderIntent, senderID string) (*domain.PendingOrder, error)
	TrackingMessage(ctx context.Context, customerFbID string) (string, error)
}

// StockReporter formats per-product stock reports.
type StockReporter interface {
	StockReport(ctx context.Context, codes []string) (string, error)
}

// Notifier delivers outbound replies to a Messenger recipient.
type Notifier interface {
	SendText(ctx context.Context, recipientID, text string) error
}

// Router classifies inbound message text and dispatches to the matching
// handler. It has side effects only; business failures are logged and
// swallowed so the platform never sees a retryable error.
type Router struct {
	orders   OrderConfirmer
	stock    StockReporter
	notifier Notifier
	adminID  string
	logger   *zap.Logger
}

func NewRouter(orders OrderConfirmer, stock StockReporter, notifier Notifier, adminID string, logger *zap.Logger) *Router {
	return &Router{
		orders:   orders,
		stock:    stock,
		notifier: notifier,
		adminID:  adminID,
		logger:   logger,
	}
}

// Route inspects messageText and runs the first matching command. Matching is
// case-insensitive; /available: and /trackinglink match on prefix while
// /confirmation matches anywhere in the text.
func (r *Router) Route(ctx context.Context, senderID, messageText string) {
	text := strings.TrimSpace(messageText)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, availablePrefix):
		r.handleStockCheck(ctx, senderID, text[len(availablePrefix):])
	case strings.HasPrefix(lower, trackingPrefix):
		r.handleTracking(ctx, senderID)
	case strings.Contains(lower, confirmationMarker):
		r.handleConfirmation(ctx, senderID, messageText)
	}
}

func (r *Router) handleStockCheck(ctx context.Context, senderID, rest string) {
	if !r.isAdmin(senderID) {
		return
	}

	var codes []string
	for _, code := range strings.Split(rest, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			codes = append(codes, code)
		}
	}

	// the Send API rejects empty message text, so answer with a usage hint
	// instead of an empty report
	if len(codes) == 0 {
		r.reply(ctx, senderID, "Usage: /available: CODE1, CODE2")
		return
	}

	report, err := r.stock.StockReport(ctx, codes)
	if err != nil {
		r.logger.Error("Failed to build stock report", zap.Error(err))
		return
	}
	r.reply(ctx, senderID, report)
}

func (r *Router) handleTracking(ctx context.Context, senderID string) {
	message, err := r.orders.TrackingMessage(ctx, senderID)
	if err != nil {
		r.logger.Error("Failed to look up tracking link",
			zap.String("sender_id", senderID),
			zap.Error(err))
		return
	}
	r.reply(ctx, senderID, message)
}

func (r *Router) handleConfirmation(ctx context.Context, senderID, messageText string) {
	if !r.isAdmin(senderID) {
		return
	}

	intent := ParseOrderIntent(messageText)

	order, err := r.orders.ConfirmOrder(ctx, intent, senderID)
	if err != nil {
		// The admin is not messaged back on failure; the webhook already
		// answered 200 so the platform does not redeliver.
		r.logger.Error("Order confirmation failed",
			zap.String("sender_id", senderID),
			zap.Error(err))
		return
	}

	r.logger.Info("Order confirmed",
		zap.String("order_id", order.OrderID),
		zap.Float64("profit", order.Profit))
}

func (r *Router) isAdmin(senderID string) bool {
	if senderID == r.adminID {
		return true
	}
	r.logger.Warn("Ignoring admin command from non-admin sender",
		zap.String("sender_id", senderID))
	return false
}

func (r *Router) reply(ctx context.Context, recipientID, text string) {
	if err := r.notifier.SendText(ctx, recipientID, text); err != nil {
		r.logger.Error("Failed to send reply",
			zap.String("recipient_id", recipientID),
			zap.Error(err))
	}
}
