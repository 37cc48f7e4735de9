package delivery

import (
	"fmt"
	"time"

	vo "tgnotify/internal/domain/delivery/valueobjects"
)

// Delivery is one attempt to forward a submission to Telegram.
type Delivery struct {
	id        uint
	kind      vo.Kind
	chatID    int64
	clientIP  string
	status    vo.Status
	parts     int
	errMsg    string
	createdAt time.Time
}

func NewDelivery(kind vo.Kind, chatID int64, clientIP string, status vo.Status, parts int, errMsg string) (*Delivery, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid submission kind")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid delivery status")
	}
	if parts < 0 {
		return nil, fmt.Errorf("parts cannot be negative")
	}

	return &Delivery{
		kind:      kind,
		chatID:    chatID,
		clientIP:  clientIP,
		status:    status,
		parts:     parts,
		errMsg:    errMsg,
		createdAt: time.Now(),
	}, nil
}

func ReconstructDelivery(
	id uint,
	kind vo.Kind,
	chatID int64,
	clientIP string,
	status vo.Status,
	parts int,
	errMsg string,
	createdAt time.Time,
) (*Delivery, error) {
	if id == 0 {
		return nil, fmt.Errorf("delivery ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid delivery status")
	}

	return &Delivery{
		id:        id,
		kind:      kind,
		chatID:    chatID,
		clientIP:  clientIP,
		status:    status,
		parts:     parts,
		errMsg:    errMsg,
		createdAt: createdAt,
	}, nil
}

func (d *Delivery) ID() uint             { return d.id }
func (d *Delivery) Kind() vo.Kind        { return d.kind }
func (d *Delivery) ChatID() int64        { return d.chatID }
func (d *Delivery) ClientIP() string     { return d.clientIP }
func (d *Delivery) Status() vo.Status    { return d.status }
func (d *Delivery) Parts() int           { return d.parts }
func (d *Delivery) Error() string        { return d.errMsg }
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }

// SetID assigns the storage ID once the delivery has been persisted.
func (d *Delivery) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("delivery ID already set")
	}
	if id == 0 {
		return fmt.Errorf("delivery ID cannot be zero")
	}
	d.id = id
	return nil
}
