package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"devmem/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStatus(w io.Writer, s types.StatusResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "runtime\t%s\n", s.Runtime.Name)
	fmt.Fprintf(tw, "device\t%s\n", s.Runtime.Device)
	if s.Runtime.Description != "" {
		fmt.Fprintf(tw, "description\t%s\n", s.Runtime.Description)
	}
	fmt.Fprintf(tw, "total bytes\t%d\n", s.Runtime.TotalBytes)
	fmt.Fprintf(tw, "budget\t%d MB (margin %d MB)\n", s.Memory.BudgetMB, s.Memory.MarginMB)
	fmt.Fprintf(tw, "state\t%s\n", s.State)
	fmt.Fprintf(tw, "allocations\t%d\n", s.Memory.Allocations)
	fmt.Fprintf(tw, "frees\t%d\n", s.Memory.Frees)
	fmt.Fprintf(tw, "live buffers\t%d\n", s.Memory.LiveBuffers)
	fmt.Fprintf(tw, "peak bytes\t%d\n", s.Memory.PeakBytes)
	return tw.Flush()
}

func writeProbe(w io.Writer, r types.ProbeResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "probe\t%s (%s)\n", r.Kind, r.ID)
	fmt.Fprintf(tw, "dtype\t%s\n", r.DType)
	fmt.Fprintf(tw, "elems\t%d\n", r.Elems)
	fmt.Fprintf(tw, "capacity\t%d\n", r.Capacity)
	fmt.Fprintf(tw, "allocations\t%d\n", r.Allocations)
	fmt.Fprintf(tw, "frees\t%d\n", r.Frees)
	fmt.Fprintf(tw, "bytes copied\t%d\n", r.BytesCopied)
	fmt.Fprintf(tw, "verified\t%t\n", r.Verified)
	if r.Mismatches > 0 {
		fmt.Fprintf(tw, "mismatches\t%d\n", r.Mismatches)
	}
	fmt.Fprintf(tw, "duration\t%d ms\n", r.DurationMS)
	return tw.Flush()
}
