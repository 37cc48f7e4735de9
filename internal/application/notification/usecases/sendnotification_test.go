package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgnotify/internal/application/notification/dto"
	vo "tgnotify/internal/domain/delivery/valueobjects"
	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/infrastructure/telegram"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/services/markdown"
)

func newTestUseCase(sender *mockSender, throttle *mockThrottle, repo *mockDeliveryRepo) *SendNotificationUseCase {
	var tc ThrottleChecker
	if throttle != nil {
		tc = throttle
	}
	var dr DeliveryRepository
	if repo != nil {
		dr = repo
	}
	uc := NewSendNotificationUseCase(sender, tc, dr, markdown.NewMarkdownService(), logger.NewNop())
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return uc
}

func allowThrottle() *mockThrottle {
	return &mockThrottle{
		result: ratelimit.Result{Allowed: true, Limit: 30, Remaining: 29},
		cfg:    ratelimit.Config{MaxRequests: 30, Window: time.Second, Message: "busy"},
	}
}

func validCommand() dto.NotifyCommand {
	return dto.NotifyCommand{
		Submission: dto.SubmissionRequest{
			Kind:    "contact",
			Name:    "Ada",
			Email:   "ada@example.com",
			Subject: "Hello",
			Message: "I would like a quote.",
		},
		ClientIP: "203.0.113.9",
	}
}

func TestSendNotification_Success(t *testing.T) {
	sender := &mockSender{chatID: -100}
	throttle := allowThrottle()
	repo := &mockDeliveryRepo{}
	uc := newTestUseCase(sender, throttle, repo)

	resp, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.DeliveryID)
	assert.Equal(t, 1, resp.Parts)

	assert.Equal(t, []string{ratelimit.GlobalKey}, throttle.keys)

	require.Len(t, sender.texts, 1)
	text := sender.texts[0]
	assert.Contains(t, text, "<b>📬 New contact message</b>")
	assert.Contains(t, text, "<b>Subject:</b> Hello")
	assert.Contains(t, text, "<b>From:</b> Ada &lt;ada@example.com&gt;")
	assert.Contains(t, text, "<b>IP:</b> 203.0.113.9")
	assert.Contains(t, text, "I would like a quote.")
	assert.Contains(t, text, "<i>2026-01-02 03:04:05 UTC</i>")

	require.Len(t, repo.deliveries, 1)
	d := repo.deliveries[0]
	assert.Equal(t, vo.StatusSent, d.Status())
	assert.Equal(t, int64(-100), d.ChatID())
	assert.Equal(t, "203.0.113.9", d.ClientIP())
}

func TestSendNotification_ValidationError(t *testing.T) {
	sender := &mockSender{}
	uc := newTestUseCase(sender, allowThrottle(), &mockDeliveryRepo{})

	cmd := validCommand()
	cmd.Submission.Kind = "spam"
	cmd.Submission.Email = "not-an-email"

	_, err := uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, errors.GetAppError(err).Details, "kind must be one of")
	assert.Empty(t, sender.texts)
}

func TestSendNotification_SanitizesInput(t *testing.T) {
	sender := &mockSender{}
	uc := newTestUseCase(sender, allowThrottle(), &mockDeliveryRepo{})

	cmd := validCommand()
	cmd.Submission.Name = "<b>Eve</b>"
	cmd.Submission.Message = "click <a href=\"http://evil\">here</a> & win"
	cmd.Submission.Metadata = map[string]string{"browser_version": "<i>120</i>"}

	_, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	text := sender.texts[0]
	assert.NotContains(t, text, "evil")
	assert.Contains(t, text, "click here &amp; win")
	assert.Contains(t, text, "<b>From:</b> Eve &lt;ada@example.com&gt;")
	assert.Contains(t, text, "<b>Browser Version:</b> 120")
}

func TestSendNotification_EmptyAfterSanitize(t *testing.T) {
	uc := newTestUseCase(&mockSender{}, allowThrottle(), &mockDeliveryRepo{})

	cmd := validCommand()
	cmd.Submission.Message = "<script>alert(1)</script>"

	_, err := uc.Execute(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestSendNotification_Markdown(t *testing.T) {
	sender := &mockSender{}
	uc := newTestUseCase(sender, allowThrottle(), &mockDeliveryRepo{})

	cmd := validCommand()
	cmd.Submission.Format = "markdown"
	cmd.Submission.Message = "**urgent** issue"

	_, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Contains(t, sender.texts[0], "<strong>urgent</strong> issue")
}

func TestSendNotification_GlobalLimitDenied(t *testing.T) {
	sender := &mockSender{}
	throttle := allowThrottle()
	throttle.result = ratelimit.Result{Allowed: false, RetryAfter: 2, Limit: 30}
	repo := &mockDeliveryRepo{}
	uc := newTestUseCase(sender, throttle, repo)

	_, err := uc.Execute(context.Background(), validCommand())
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeServiceUnavailable, appErr.Type)
	assert.Equal(t, 503, appErr.Code)
	assert.Equal(t, 2, appErr.RetryAfter)
	assert.Equal(t, "busy", appErr.Message)

	assert.Empty(t, sender.texts)
	require.Len(t, repo.deliveries, 1)
	assert.Equal(t, vo.StatusThrottled, repo.deliveries[0].Status())
}

func TestSendNotification_GlobalLimiterErrorFailsOpen(t *testing.T) {
	sender := &mockSender{}
	throttle := allowThrottle()
	throttle.err = fmt.Errorf("redis down")
	uc := newTestUseCase(sender, throttle, &mockDeliveryRepo{})

	_, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Len(t, sender.texts, 1)
}

func TestSendNotification_TelegramErrors(t *testing.T) {
	tests := []struct {
		name      string
		sendErr   error
		wantType  errors.ErrorType
		wantRetry int
	}{
		{
			name:      "telegram rate limit",
			sendErr:   fmt.Errorf("failed to send part 1/1: %w", &telegram.APIError{ErrorCode: 429, Description: "Too Many Requests", RetryAfter: 7}),
			wantType:  errors.ErrorTypeServiceUnavailable,
			wantRetry: 7,
		},
		{
			name:     "not configured",
			sendErr:  fmt.Errorf("failed to send part 1/1: %w", telegram.ErrNotConfigured),
			wantType: errors.ErrorTypeServiceUnavailable,
		},
		{
			name:     "other api error",
			sendErr:  &telegram.APIError{ErrorCode: 400, Description: "Bad Request"},
			wantType: errors.ErrorTypeInternal,
		},
		{
			name:     "network error",
			sendErr:  stderrors.New("connection refused"),
			wantType: errors.ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{sendFunc: func(context.Context, int64, string) (int, error) {
				return 0, tt.sendErr
			}}
			repo := &mockDeliveryRepo{}
			uc := newTestUseCase(sender, allowThrottle(), repo)

			_, err := uc.Execute(context.Background(), validCommand())
			require.Error(t, err)

			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantRetry, appErr.RetryAfter)

			require.Len(t, repo.deliveries, 1)
			assert.Equal(t, vo.StatusFailed, repo.deliveries[0].Status())
			assert.NotEmpty(t, repo.deliveries[0].Error())
		})
	}
}

func TestSendNotification_RepoFailureDoesNotFailRequest(t *testing.T) {
	sender := &mockSender{}
	uc := newTestUseCase(sender, allowThrottle(), &mockDeliveryRepo{createErr: fmt.Errorf("disk full")})

	resp, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Zero(t, resp.DeliveryID)
	assert.Len(t, sender.texts, 1)
}

func TestSendNotification_WithoutLimiterOrRepo(t *testing.T) {
	sender := &mockSender{}
	uc := newTestUseCase(sender, nil, nil)

	resp, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Parts)
}
