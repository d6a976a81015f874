package utils

// BlockRange is an inclusive range of block numbers.
type BlockRange struct {
	From uint64
	To   uint64
}

// BatchBlockRanges splits [from, to] into consecutive ranges of at most size blocks.
// Public RPC nodes cap eth_getLogs spans, so history queries walk these one by one.
func BatchBlockRanges(from, to, size uint64) []BlockRange {
	if from > to {
		return []BlockRange{}
	}
	if size == 0 {
		return []BlockRange{{From: from, To: to}}
	}

	var ranges []BlockRange
	for start := from; start <= to; start += size {
		end := start + size - 1
		if end > to || end < start {
			end = to
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
	}
	return ranges
}

// ShortHash renders a transaction hash as "0x1234...abcd".
func ShortHash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-4:]
}
