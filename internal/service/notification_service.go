package service

import (
	"encoding/json"
	"fmt"

	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/internal/ws"
)

type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	return nil
}

func dollars(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func (s *NotificationService) NotifyEscrowFunded(creatorID, contractID uint, amountCents int64) error {
	return s.Notify(creatorID, "ESCROW_FUNDED", "Contract funded",
		"The brand has funded the contract. "+dollars(amountCents)+" is held in escrow for you.",
		map[string]interface{}{"contract_id": contractID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyWorkSubmitted(brandID, contractID uint) error {
	return s.Notify(brandID, "WORK_SUBMITTED", "Work submitted",
		"The creator marked the contract complete. Leave a review to release payment.",
		map[string]interface{}{"contract_id": contractID})
}

func (s *NotificationService) NotifyReviewReceived(userID, contractID uint) error {
	return s.Notify(userID, "REVIEW_RECEIVED", "New review",
		"You received a review on your contract.",
		map[string]interface{}{"contract_id": contractID})
}

func (s *NotificationService) NotifyFundsReleased(creatorID, contractID uint, amountCents int64) error {
	return s.Notify(creatorID, "FUNDS_RELEASED", "Payment available",
		dollars(amountCents)+" is now available for withdrawal.",
		map[string]interface{}{"contract_id": contractID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyDisputeOpened(userID, contractID uint) error {
	return s.Notify(userID, "DISPUTE_OPENED", "Contract disputed",
		"The other party opened a dispute on your contract.",
		map[string]interface{}{"contract_id": contractID})
}

func (s *NotificationService) NotifyDisputeResolved(userID, contractID uint, resolution string) error {
	return s.Notify(userID, "DISPUTE_RESOLVED", "Dispute resolved",
		"An admin resolved the dispute on your contract ("+resolution+").",
		map[string]interface{}{"contract_id": contractID, "resolution": resolution})
}

func (s *NotificationService) NotifyWithdrawalSettled(creatorID uint, orderID, status string) error {
	return s.Notify(creatorID, "WITHDRAWAL_"+status, "Withdrawal "+status,
		"Your withdrawal "+orderID+" is now "+status+".",
		map[string]interface{}{"order_id": orderID, "status": status})
}
