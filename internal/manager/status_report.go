package manager

import (
	"time"

	"devmem/internal/devrt"
	"devmem/pkg/types"
)

const mb = 1 << 20

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	resp := types.StatusResponse{
		State:     string(m.state),
		LastError: m.lastErr,
		Runtime: types.RuntimeStatus{
			Name:        m.info.Name,
			Device:      m.info.Device,
			Description: m.info.Description,
			TotalBytes:  m.info.TotalBytes,
		},
		Queue: types.QueueStatus{
			QueueLen:      len(m.queueCh),
			Inflight:      len(m.genCh),
			MaxQueueDepth: cap(m.queueCh),
		},
	}
	m.mu.RUnlock()

	if st, ok := devrt.StatsOf(m.rt); ok {
		resp.Memory = types.MemoryStatus{
			Allocations: st.Allocations,
			Frees:       st.Frees,
			Failures:    st.Failures,
			LiveBuffers: st.LiveBuffers,
			BytesInUse:  st.BytesInUse,
			PeakBytes:   st.PeakBytes,
			HtoDBytes:   st.HtoDBytes,
			DtoHBytes:   st.DtoHBytes,
			BudgetMB:    int(st.BudgetBytes / mb),
			MarginMB:    int(st.MarginBytes / mb),
		}
	}
	resp.ProbesTotal = m.probesTotal.Load()
	resp.ProbeFailures = m.probeFailures.Load()
	resp.UptimeSeconds = int64(time.Since(m.startTime) / time.Second)
	resp.ServerTimeUnix = time.Now().Unix()
	return resp
}
