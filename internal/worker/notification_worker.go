package worker

import (
	"go.uber.org/zap"

	"github.com/campus-kit/complaint-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the event
// dispatcher. Dispatch is synchronous and in-process; this hook is where a
// queue consumer would start if notifications move out of band.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered")
}
