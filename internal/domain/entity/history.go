package entity

import "time"

// TxMethod names the kind of activity a history record came from.
type TxMethod string

const (
	MethodOfframp    TxMethod = "Offramp"
	MethodTransfer   TxMethod = "Transfer"
	MethodWithdrawal TxMethod = "Withdrawal"
)

// TxStatus is the settlement state of a history record.
type TxStatus string

const (
	StatusCompleted TxStatus = "Completed"
	StatusPending   TxStatus = "Pending"
)

// TxRecord is a single line in the user's transaction history.
type TxRecord struct {
	OrderID     string    `json:"orderId"`
	Hash        string    `json:"hash"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Method      TxMethod  `json:"method"`
	Status      TxStatus  `json:"status"`
	Amount      string    `json:"amount"`
	BlockNumber uint64    `json:"blockNumber"`
	TxIndex     uint      `json:"txIndex"`
	LogIndex    uint      `json:"logIndex"`
	Time        time.Time `json:"time"`
}
