package contracts

import (
	"context"
	"fmt"
	"math/big"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const fiatDecimals = 18

// ActivityScanner turns the user's contract events into history records.
type ActivityScanner struct {
	reader   port.ChainReader
	fiatSend common.Address
	momoNFT  common.Address
	ghsFiat  common.Address
}

// NewActivityScanner creates a scanner over the three offramp contracts.
func NewActivityScanner(reader port.ChainReader, fiatSend, momoNFT, ghsFiat common.Address) *ActivityScanner {
	return &ActivityScanner{reader: reader, fiatSend: fiatSend, momoNFT: momoNFT, ghsFiat: ghsFiat}
}

// Scan returns the records for user in [fromBlock, toBlock]. Time is left zero for the caller to fill.
func (s *ActivityScanner) Scan(ctx context.Context, user common.Address, fromBlock, toBlock uint64) ([]entity.TxRecord, error) {
	userTopic := common.BytesToHash(user.Bytes())
	from, to := new(big.Int).SetUint64(fromBlock), new(big.Int).SetUint64(toBlock)

	queries := []struct {
		contract common.Address
		abi      abi.ABI
		events   []string
	}{
		{s.fiatSend, parsedFiatSendABI, []string{"FiatSent", "StablecoinReceived"}},
		{s.momoNFT, parsedMomoNFTABI, []string{"Transfer"}},
		{s.ghsFiat, parsedERC20ABI, []string{"Burn"}},
	}

	var records []entity.TxRecord
	for _, q := range queries {
		ids := make([]common.Hash, 0, len(q.events))
		for _, name := range q.events {
			ids = append(ids, q.abi.Events[name].ID)
		}
		logs, err := s.reader.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: from,
			ToBlock:   to,
			Addresses: []common.Address{q.contract},
			Topics:    [][]common.Hash{ids, {userTopic}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch logs of %s in blocks %d-%d: %w", q.contract.Hex(), fromBlock, toBlock, err)
		}
		for _, lg := range logs {
			if lg.Removed {
				continue
			}
			rec, ok, err := s.decode(q.abi, lg, user)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

func (s *ActivityScanner) decode(contractABI abi.ABI, lg types.Log, user common.Address) (entity.TxRecord, bool, error) {
	if len(lg.Topics) < 2 || common.BytesToAddress(lg.Topics[1].Bytes()) != user {
		return entity.TxRecord{}, false, nil
	}
	event, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return entity.TxRecord{}, false, nil
	}

	rec := entity.TxRecord{
		OrderID:     utils.ShortHash(lg.TxHash.Hex()),
		Hash:        lg.TxHash.Hex(),
		Status:      entity.StatusCompleted,
		BlockNumber: lg.BlockNumber,
		TxIndex:     lg.TxIndex,
		LogIndex:    lg.Index,
	}

	var amount *big.Int
	switch {
	case lg.Address == s.fiatSend && event.Name == "FiatSent":
		rec.From, rec.To, rec.Method = "USDT", "GHS", entity.MethodOfframp
		amount, err = firstUint(contractABI, event.Name, lg.Data)
	case lg.Address == s.fiatSend && event.Name == "StablecoinReceived":
		rec.From, rec.To, rec.Method = "GHS", "USDT", entity.MethodOfframp
		amount, err = firstUint(contractABI, event.Name, lg.Data)
	case lg.Address == s.momoNFT && event.Name == "Transfer":
		rec.From, rec.Method, rec.Amount = "NFT", entity.MethodTransfer, "1"
		rec.To = "Unknown"
		if len(lg.Topics) > 2 {
			rec.To = common.BytesToAddress(lg.Topics[2].Bytes()).Hex()
		}
		return rec, true, nil
	case lg.Address == s.ghsFiat && event.Name == "Burn":
		rec.From, rec.To, rec.Method = "GHSFIAT", "Burned", entity.MethodWithdrawal
		amount, err = firstUint(contractABI, event.Name, lg.Data)
	default:
		return entity.TxRecord{}, false, nil
	}
	if err != nil {
		return entity.TxRecord{}, false, fmt.Errorf("failed to decode %s in tx %s: %w", event.Name, lg.TxHash.Hex(), err)
	}
	rec.Amount, err = utils.FormatBigInt(amount, fiatDecimals)
	if err != nil {
		return entity.TxRecord{}, false, err
	}
	return rec, true, nil
}

func firstUint(contractABI abi.ABI, event string, data []byte) (*big.Int, error) {
	values, err := contractABI.Unpack(event, data)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no data")
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", values[0])
	}
	return v, nil
}
