package redis

import (
	"context"
	"errors"
	"fmt"

	"guestpost-checkout/pkg/redis"
)

// PERSISTED CHECKOUT STATE
//
// Durable per-user keys that survive a reload: payment-resume keys, the
// cached cart-id list and the manual calling-code flag. Missing keys read
// back as zero values.

type Storage struct {
	client *redis.Client
}

func New(client *redis.Client) *Storage {
	return &Storage{client: client}
}

type paymentResume struct {
	UUID    string `json:"uuid"`
	OrderID string `json:"order_id"`
}

func (s *Storage) SetPaymentResume(ctx context.Context, userID, uuid, orderID string) error {
	if err := s.client.SetJSON(ctx, resumeKey(userID), paymentResume{UUID: uuid, OrderID: orderID}); err != nil {
		return fmt.Errorf("set payment resume: %w", err)
	}
	return nil
}

func (s *Storage) PaymentResume(ctx context.Context, userID string) (string, string, error) {
	var resume paymentResume
	err := s.client.GetJSON(ctx, resumeKey(userID), &resume)
	if errors.Is(err, redis.Nil) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get payment resume: %w", err)
	}
	return resume.UUID, resume.OrderID, nil
}

func (s *Storage) ClearPaymentResume(ctx context.Context, userID string) error {
	return s.client.Del(ctx, resumeKey(userID))
}

func (s *Storage) SetCachedCartIDs(ctx context.Context, userID string, ids []string) error {
	if err := s.client.SetJSON(ctx, cartKey(userID), ids); err != nil {
		return fmt.Errorf("set cached cart: %w", err)
	}
	return nil
}

func (s *Storage) CachedCartIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.client.GetJSON(ctx, cartKey(userID), &ids)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached cart: %w", err)
	}
	return ids, nil
}

func (s *Storage) ClearCachedCart(ctx context.Context, userID string) error {
	return s.client.Del(ctx, cartKey(userID))
}

func (s *Storage) SetManualCallingCode(ctx context.Context, userID string, manual bool) error {
	if err := s.client.SetJSON(ctx, manualCodeKey(userID), manual); err != nil {
		return fmt.Errorf("set manual calling-code flag: %w", err)
	}
	return nil
}

func (s *Storage) ManualCallingCode(ctx context.Context, userID string) (bool, error) {
	var manual bool
	err := s.client.GetJSON(ctx, manualCodeKey(userID), &manual)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get manual calling-code flag: %w", err)
	}
	return manual, nil
}

func (s *Storage) SetDisplayName(ctx context.Context, userID, name string) error {
	if err := s.client.Set(ctx, displayNameKey(userID), []byte(name)); err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}

func (s *Storage) DisplayName(ctx context.Context, userID string) (string, error) {
	data, err := s.client.Get(ctx, displayNameKey(userID))
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get display name: %w", err)
	}
	return string(data), nil
}

func resumeKey(userID string) string {
	return fmt.Sprintf("checkout:resume:%s", userID)
}

func cartKey(userID string) string {
	return fmt.Sprintf("checkout:cart:%s", userID)
}

func manualCodeKey(userID string) string {
	return fmt.Sprintf("checkout:manual_code:%s", userID)
}

func displayNameKey(userID string) string {
	return fmt.Sprintf("checkout:display_name:%s", userID)
}
