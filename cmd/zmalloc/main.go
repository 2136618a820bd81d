// Command zmalloc exercises the allocator and prints what the heap looks
// like afterwards. It exists for poking at the allocator from a shell; the
// real consumers import pkg/zmalloc directly.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"unsafe"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/flier/zmalloc/pkg/zmalloc"
)

func main() {
	root := &cobra.Command{
		Use:          "zmalloc",
		Short:        "Drive the zoned allocator and inspect its pools",
		SilenceUsage: true,
	}

	root.AddCommand(showCmd(), stressCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// showCmd runs a fixed mixed-size workload crossing all three pools, then
// prints the allocation map.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Allocate a mixed-size workload and dump the live map",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, size := range []int{1, 1024, 32 * 1024, 1 << 20, 16 << 20} {
				if p := zmalloc.Malloc(size); p == nil {
					return fmt.Errorf("allocating %d bytes failed", size)
				}
			}

			zmalloc.ShowAllocMem()
			return nil
		},
	}
}

// stressCmd churns random allocations and prints per-pool counters.
func stressCmd() *cobra.Command {
	var (
		iters   int
		maxSize int
		keep    int
	)

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Churn random alloc/free cycles and report pool stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(1))
			held := make([]unsafe.Pointer, 0, keep)

			for i := 0; i < iters; i++ {
				p := zmalloc.Malloc(1 + rng.Intn(maxSize))
				if p == nil {
					return fmt.Errorf("allocation failed at iteration %d", i)
				}

				held = append(held, p)
				if len(held) == keep {
					for _, q := range held {
						zmalloc.Free(q)
					}
					held = held[:0]
				}
			}

			printStats(cmd, zmalloc.Stats())
			return nil
		},
	}

	cmd.Flags().IntVarP(&iters, "iterations", "n", 10000, "allocations to perform")
	cmd.Flags().IntVarP(&maxSize, "max-size", "s", 4096, "largest request size in bytes")
	cmd.Flags().IntVarP(&keep, "keep", "k", 64, "live allocations held before each bulk free")

	return cmd
}

func printStats(cmd *cobra.Command, st zmalloc.AllocStats) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Pool", "Arenas", "Live blocks", "Live bytes"})

	for _, row := range []struct {
		label string
		stats zmalloc.PoolStats
	}{
		{"TINY", st.Tiny},
		{"SMALL", st.Small},
		{"LARGE", st.Large},
	} {
		table.Append([]string{
			row.label,
			strconv.Itoa(row.stats.Arenas),
			strconv.Itoa(row.stats.LiveBlocks),
			strconv.FormatUint(uint64(row.stats.LiveBytes), 10),
		})
	}

	table.SetFooter([]string{"", "", "Total", strconv.FormatUint(uint64(st.TotalLiveBytes()), 10)})
	table.Render()
}
