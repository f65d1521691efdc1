package proc

import (
	"errors"

	"github.com/prometheus/procfs"
)

// MemInfo holds memory and swap totals in KiB.
type MemInfo struct {
	TotalKB, FreeKB, AvailableKB, BuffCacheKB int64
	SwapTotalKB, SwapFreeKB                   int64
}

func (m MemInfo) UsedKB() int64 {
	used := m.TotalKB - m.FreeKB - m.BuffCacheKB
	if used < 0 {
		return 0
	}
	return used
}

func (m MemInfo) SwapUsedKB() int64 {
	return m.SwapTotalKB - m.SwapFreeKB
}

func kb(v *uint64) int64 {
	if v == nil {
		return 0
	}
	return int64(*v)
}

func ReadMemory(fs procfs.FS) (MemInfo, error) {
	mi, err := fs.Meminfo()
	if err != nil {
		return MemInfo{}, err
	}
	if mi.MemTotal == nil {
		return MemInfo{}, errors.New("MemTotal missing from meminfo")
	}
	return MemInfo{
		TotalKB:     kb(mi.MemTotal),
		FreeKB:      kb(mi.MemFree),
		AvailableKB: kb(mi.MemAvailable),
		BuffCacheKB: kb(mi.Buffers) + kb(mi.Cached) + kb(mi.SReclaimable),
		SwapTotalKB: kb(mi.SwapTotal),
		SwapFreeKB:  kb(mi.SwapFree),
	}, nil
}
