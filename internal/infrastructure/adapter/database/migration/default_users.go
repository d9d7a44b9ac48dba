package migration

import (
	"context"
	"fmt"

	walletUseCase "github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/wallet"
)

// Default user IDs and starting balances
var defaultUsers = map[uint64]string{
	1: "100.00",
	2: "200.00",
	3: "300.00",
}

// CreateDefaultUsers creates the default users with predefined balances
func CreateDefaultUsers(ctx context.Context, walletService *walletUseCase.Service) error {
	for userID, balance := range defaultUsers {
		exists, err := walletService.UserExists(ctx, userID)
		if err != nil {
			return err
		}

		if !exists {
			casinoRef := fmt.Sprintf("casino-acct-%d", userID)
			if _, err := walletService.CreateUser(ctx, userID, balance, casinoRef); err != nil {
				return err
			}
		}
	}

	return nil
}
