package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the system
const (
	TransactionTypeInitial  TransactionType = "initial"
	TransactionTypeEntryFee TransactionType = "entry_fee"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeBingoWin TransactionType = "bingo_win"
)

// IsDebit returns true if the transaction takes money from the player
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeEntryFee
}

// IsCredit returns true if the transaction pays money to the player
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeRefund || tt == TransactionTypeBingoWin || tt == TransactionTypeInitial
}
