package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formationhq/formation/pkg/registry"
)

// BankAccount opens a business bank account with the partner bank and
// returns the account reference.
type BankAccount struct {
	latency time.Duration
}

func NewBankAccount() *BankAccount {
	return &BankAccount{latency: 70 * time.Millisecond}
}

func (s *BankAccount) ID() string {
	return registry.StepBankAccount
}

func (s *BankAccount) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	accountRef := fmt.Sprintf("acct-%s", uuid.New().String()[:8])

	execCtx.Logger.Info("Business bank account opened", "account_ref", accountRef)

	return Result{BankAccount: accountRef}, nil
}
