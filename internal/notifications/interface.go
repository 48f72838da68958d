package notifications

import (
	"context"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendDigest(ctx context.Context, digest *models.Digest) error
	SendAlert(ctx context.Context, alert *models.Alert) error
}
