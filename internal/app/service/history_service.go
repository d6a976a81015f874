package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryWindows = 10
	historyConcurrency    = 4
)

// HistoryService builds the user's transaction history from contract events.
type HistoryService struct {
	reader    port.ChainReader
	source    port.ActivitySource
	fromBlock uint64
	span      uint64
	logger    port.Logger
}

// NewHistoryService scans [fromBlock, latest] in windows of span blocks.
// fromBlock 0 means the last ten windows.
func NewHistoryService(reader port.ChainReader, source port.ActivitySource, fromBlock, span uint64, logger port.Logger) *HistoryService {
	if span == 0 {
		span = 10_000
	}
	return &HistoryService{reader: reader, source: source, fromBlock: fromBlock, span: span, logger: logger}
}

// History returns the user's records, newest first, at most limit of them (0 means all).
func (s *HistoryService) History(ctx context.Context, user common.Address, limit int) ([]entity.TxRecord, error) {
	latest, err := s.reader.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest block: %w", err)
	}
	from := s.fromBlock
	if from == 0 && latest > s.span*defaultHistoryWindows {
		from = latest - s.span*defaultHistoryWindows
	}
	ranges := utils.BatchBlockRanges(from, latest, s.span)
	s.logger.Debug("Scanning history", "user", user.Hex(), "from_block", from, "to_block", latest, "windows", len(ranges))

	var (
		mu      sync.Mutex
		records []entity.TxRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for _, r := range ranges {
		g.Go(func() error {
			found, err := s.source.Scan(gctx, user, r.From, r.To)
			if err != nil {
				return err
			}
			mu.Lock()
			records = append(records, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber > b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex > b.TxIndex
		}
		return a.LogIndex > b.LogIndex
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	if err := s.fillTimes(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// fillTimes reads each distinct block's timestamp once.
func (s *HistoryService) fillTimes(ctx context.Context, records []entity.TxRecord) error {
	times := make(map[uint64]time.Time)
	var blocks []uint64
	for _, rec := range records {
		if _, seen := times[rec.BlockNumber]; !seen {
			times[rec.BlockNumber] = time.Time{}
			blocks = append(blocks, rec.BlockNumber)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for _, block := range blocks {
		g.Go(func() error {
			t, err := s.reader.BlockTime(gctx, block)
			if err != nil {
				return fmt.Errorf("failed to read time of block %d: %w", block, err)
			}
			mu.Lock()
			times[block] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range records {
		records[i].Time = times[records[i].BlockNumber]
	}
	return nil
}
