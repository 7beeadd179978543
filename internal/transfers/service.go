// Package transfers implements account-to-account money movement addressed
// by target account number.
package transfers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
	"github.com/atlasbank/atlasbank/internal/notification"
)

// Service validates and executes transfers against the ledger.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(led ledger.Ledger, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{ledger: led, notifier: notifier, logger: logger}
}

// Input describes a transfer request from an authenticated customer.
type Input struct {
	SourceID     string
	CustomerID   string
	TargetNumber string
	Amount       int64
	Description  string
}

// Result is the committed transfer plus the source balance the caller may
// surface immediately.
type Result struct {
	DebitEntryID  string
	CreditEntryID string
	SourceBalance int64
}

// Execute moves Amount from the customer's source account to the account
// addressed by TargetNumber. Both journal legs commit atomically in the
// ledger; the received-funds notification is best effort after commit.
func (s *Service) Execute(ctx context.Context, input Input) (Result, error) {
	src, err := s.ledger.Account(ctx, input.SourceID)
	if err != nil {
		return Result{}, err
	}
	if src.CustomerID != input.CustomerID {
		return Result{}, ledger.ErrNotOwned
	}

	res, err := s.ledger.Transfer(ctx, ledger.TransferInput{
		SourceID:     input.SourceID,
		TargetNumber: input.TargetNumber,
		Amount:       input.Amount,
		Description:  input.Description,
	})
	if err != nil {
		return Result{}, err
	}

	s.notifyTarget(ctx, res.TargetID, src.Number, input.Amount)

	return Result{
		DebitEntryID:  res.DebitEntryID,
		CreditEntryID: res.CreditEntryID,
		SourceBalance: res.SourceBalance,
	}, nil
}

func (s *Service) notifyTarget(ctx context.Context, targetID, sourceNumber string, amount int64) {
	if s.notifier == nil {
		return
	}
	tgt, err := s.ledger.Account(ctx, targetID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("transfer notification skipped", "target_id", targetID, "error", err)
		}
		return
	}
	msg := notification.Message{
		Kind:        notification.KindTransferReceived,
		Destination: tgt.CustomerID,
		Body:        fmt.Sprintf("You received %s from account %s", money.Format(amount), sourceNumber),
	}
	if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("transfer notification failed", "destination", tgt.CustomerID, "error", err)
	}
}
