package dto

import "tgnotify/internal/domain/delivery"

func ToDeliveryResponse(d *delivery.Delivery) *DeliveryResponse {
	if d == nil {
		return nil
	}
	return &DeliveryResponse{
		ID:        d.ID(),
		Kind:      d.Kind().String(),
		ChatID:    d.ChatID(),
		ClientIP:  d.ClientIP(),
		Status:    d.Status().String(),
		Parts:     d.Parts(),
		Error:     d.Error(),
		CreatedAt: d.CreatedAt(),
	}
}

func ToDeliveryResponses(list []*delivery.Delivery) []*DeliveryResponse {
	responses := make([]*DeliveryResponse, 0, len(list))
	for _, d := range list {
		responses = append(responses, ToDeliveryResponse(d))
	}
	return responses
}
