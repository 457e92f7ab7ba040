package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded tutor exchanges",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")
		endpoint, _ := cmd.Flags().GetString("endpoint")

		s, err := openJournalStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.ExchangeRepo().QueryExchanges(ctx, store.QueryOpts{
			Limit:     limit,
			SessionID: sessionID,
			Endpoint:  endpoint,
		})
		if err != nil {
			return fmt.Errorf("query exchanges: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No exchanges found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-5s  %-19s  %-18s  %-8s  %-7s  %s\n",
			"ID", "Timestamp", "Endpoint", "Session", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 72))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-18s  %-8s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Endpoint, 18),
				truncate(e.SessionID, 8),
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var journalViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request/response of an exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openJournalStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		e, err := s.ExchangeRepo().GetExchange(ctx, id)
		if err != nil {
			return fmt.Errorf("get exchange: %w", err)
		}
		if e == nil {
			return fmt.Errorf("exchange %d not found", id)
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)

		fmt.Fprintf(out, "ID:        %d\n", e.ID)
		fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Session:   %s\n", e.SessionID)
		fmt.Fprintf(out, "Endpoint:  %s\n", e.Endpoint)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
		}

		fmt.Fprintln(out)
		printSection(out, sep, "REQUEST", e.RequestBody)
		printSection(out, sep, "RESPONSE", e.ResponseBody)
		return nil
	},
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts and latency per endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		s, err := openJournalStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.ExchangeRepo().QueryExchanges(ctx, store.QueryOpts{SessionID: sessionID})
		if err != nil {
			return fmt.Errorf("query exchanges: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No exchanges recorded yet.")
			return nil
		}

		stats := summarizeExchanges(events)

		fmt.Fprintln(out, "Exchanges by Endpoint")
		fmt.Fprintln(out, strings.Repeat("─", 56))
		fmt.Fprintf(out, "%-18s  %6s  %8s  %8s  %8s\n", "Endpoint", "Calls", "Failed", "Avg Ms", "Max Ms")
		fmt.Fprintln(out, strings.Repeat("─", 56))

		var total endpointStats
		for _, st := range stats {
			fmt.Fprintf(out, "%-18s  %6d  %8d  %8d  %8d\n",
				truncate(st.Endpoint, 18), st.Calls, st.Failed, st.avgLatency(), st.MaxLatencyMs)
			total.Calls += st.Calls
			total.Failed += st.Failed
			total.TotalLatencyMs += st.TotalLatencyMs
			total.MaxLatencyMs = max(total.MaxLatencyMs, st.MaxLatencyMs)
		}

		fmt.Fprintln(out, strings.Repeat("─", 56))
		fmt.Fprintf(out, "%-18s  %6d  %8d  %8d  %8d\n",
			"TOTAL", total.Calls, total.Failed, total.avgLatency(), total.MaxLatencyMs)
		return nil
	},
}

// endpointStats aggregates journal rows for one endpoint.
type endpointStats struct {
	Endpoint       string
	Calls          int
	Failed         int
	TotalLatencyMs int64
	MaxLatencyMs   int64
}

func (s endpointStats) avgLatency() int64 {
	if s.Calls == 0 {
		return 0
	}
	return s.TotalLatencyMs / int64(s.Calls)
}

// summarizeExchanges groups events by endpoint, sorted by endpoint name.
func summarizeExchanges(events []store.ExchangeEvent) []endpointStats {
	byEndpoint := make(map[string]*endpointStats)
	for _, e := range events {
		st, ok := byEndpoint[e.Endpoint]
		if !ok {
			st = &endpointStats{Endpoint: e.Endpoint}
			byEndpoint[e.Endpoint] = st
		}
		st.Calls++
		if !e.Success {
			st.Failed++
		}
		st.TotalLatencyMs += e.LatencyMs
		st.MaxLatencyMs = max(st.MaxLatencyMs, e.LatencyMs)
	}

	out := make([]endpointStats, 0, len(byEndpoint))
	for _, st := range byEndpoint {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// openJournalStore opens the journal database named by the configuration.
func openJournalStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := openJournal(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return s, nil
}

func printSection(out io.Writer, sep, title, body string) {
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, sep)
	if body != "" {
		fmt.Fprintln(out, body)
	} else {
		fmt.Fprintln(out, "(not captured)")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func init() {
	journalListCmd.Flags().IntP("limit", "n", 20, "Number of exchanges to show")
	journalListCmd.Flags().StringP("session", "s", "", "Only show exchanges from this session ID")
	journalListCmd.Flags().StringP("endpoint", "e", "", "Filter by endpoint (e.g. /chat, /vocab-exercise)")
	journalStatsCmd.Flags().StringP("session", "s", "", "Only count exchanges from this session ID")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalViewCmd)
	journalCmd.AddCommand(journalStatsCmd)
}
