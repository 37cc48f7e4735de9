package usecases

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"tgnotify/internal/application/notification/dto"
	"tgnotify/internal/domain/delivery"
	vo "tgnotify/internal/domain/delivery/valueobjects"
	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/infrastructure/telegram"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/utils"
	"tgnotify/internal/shared/utils/logutil"
)

const (
	formatMarkdown = "markdown"
	// maxRecordedError bounds the error text kept in the delivery log.
	maxRecordedError = 500
)

type SendNotificationUseCase struct {
	sender   MessageSender
	throttle ThrottleChecker
	repo     DeliveryRepository
	renderer TextRenderer
	logger   logger.Interface
	now      func() time.Time
}

func NewSendNotificationUseCase(
	sender MessageSender,
	throttle ThrottleChecker,
	repo DeliveryRepository,
	renderer TextRenderer,
	logger logger.Interface,
) *SendNotificationUseCase {
	return &SendNotificationUseCase{
		sender:   sender,
		throttle: throttle,
		repo:     repo,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *SendNotificationUseCase) Execute(ctx context.Context, cmd dto.NotifyCommand) (*dto.NotifyResponse, error) {
	if err := utils.ValidateStruct(cmd.Submission); err != nil {
		return nil, err
	}

	sub, err := uc.sanitize(cmd)
	if err != nil {
		return nil, err
	}

	chatID := uc.sender.DefaultChatID()

	if uc.throttle != nil {
		result, err := uc.throttle.Check(ctx, ratelimit.GlobalKey)
		if err != nil {
			uc.logger.Warnw("global limiter check failed, continuing", "error", err)
		} else if !result.Allowed {
			uc.logger.Warnw("global notification limit reached",
				"kind", sub.kind,
				"retry_after", result.RetryAfter,
			)
			uc.record(ctx, sub, chatID, vo.StatusThrottled, 0, "global rate limit")
			return nil, errors.NewServiceUnavailableError(uc.throttle.Config().Message, result.RetryAfter)
		}
	}

	text := formatMessage(sub, uc.now())

	parts, err := uc.sender.SendLongMessage(ctx, chatID, text)
	if err != nil {
		uc.logger.Errorw("failed to send telegram notification",
			"kind", sub.kind,
			"parts_sent", parts,
			"error", err,
		)
		uc.record(ctx, sub, chatID, vo.StatusFailed, parts, logutil.TruncateForLog(err.Error(), maxRecordedError))

		switch {
		case telegram.IsRetryAfter(err):
			return nil, errors.NewServiceUnavailableError(
				"Notification service is busy, please try again later.",
				telegram.GetRetryAfter(err),
			)
		case stderrors.Is(err, telegram.ErrNotConfigured):
			return nil, errors.NewServiceUnavailableError("Notification channel is not configured", 0)
		default:
			return nil, errors.NewInternalError("Failed to deliver notification")
		}
	}

	id := uc.record(ctx, sub, chatID, vo.StatusSent, parts, "")

	log := uc.logger
	if sub.email != "" {
		log = log.With("from", logutil.MaskEmail(sub.email))
	}
	log.Infow("notification delivered",
		"kind", sub.kind,
		"delivery_id", id,
		"parts", parts,
	)

	return &dto.NotifyResponse{
		DeliveryID: id,
		Parts:      parts,
	}, nil
}

func (uc *SendNotificationUseCase) sanitize(cmd dto.NotifyCommand) (submission, error) {
	req := cmd.Submission
	clean := func(s string) string {
		return strings.TrimSpace(uc.renderer.StripTags(s))
	}

	kind, err := vo.NewKind(req.Kind)
	if err != nil {
		return submission{}, errors.NewValidationError("Validation failed", err.Error())
	}

	var body string
	if req.Format == formatMarkdown {
		body, err = uc.renderer.ToTelegramHTML(req.Message)
		if err != nil {
			return submission{}, errors.NewValidationError("Validation failed", "message is not valid markdown")
		}
	} else {
		body = telegram.EscapeHTML(clean(req.Message))
	}
	if strings.TrimSpace(body) == "" {
		return submission{}, errors.NewValidationError("Validation failed", "message is empty after sanitizing")
	}

	var metadata map[string]string
	if len(req.Metadata) > 0 {
		metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			if key := clean(k); key != "" {
				metadata[key] = clean(v)
			}
		}
	}

	return submission{
		kind:      kind,
		name:      clean(req.Name),
		email:     strings.TrimSpace(req.Email),
		subject:   clean(req.Subject),
		body:      body,
		pageURL:   strings.TrimSpace(req.PageURL),
		userAgent: clean(req.UserAgent),
		clientIP:  cmd.ClientIP,
		metadata:  metadata,
	}, nil
}

// record writes the attempt to the delivery log. A log failure never fails the request.
func (uc *SendNotificationUseCase) record(ctx context.Context, sub submission, chatID int64, status vo.Status, parts int, errMsg string) uint {
	if uc.repo == nil {
		return 0
	}

	d, err := delivery.NewDelivery(sub.kind, chatID, sub.clientIP, status, parts, errMsg)
	if err != nil {
		uc.logger.Errorw("failed to build delivery record", "error", err)
		return 0
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		uc.logger.Errorw("failed to persist delivery record", "status", status, "error", err)
		return 0
	}

	return d.ID()
}
