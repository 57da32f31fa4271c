package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// sample is one throughput reading in the shape the ingest API accepts.
type sample struct {
	ServerName string  `json:"server_name"`
	Timestamp  string  `json:"timestamp"`
	RxRate     float64 `json:"rx_rate"`
	TxRate     float64 `json:"tx_rate"`
}

type counters struct {
	rxBytes uint64
	txBytes uint64
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Dashboard base URL")
	token := flag.String("token", os.Getenv("VNSTAT_AGENT_TOKEN"), "API token with report permission")
	name := flag.String("name", hostname(), "Server name to report as")
	iface := flag.String("iface", "eth0", "Network interface to sample")
	interval := flag.Duration("interval", 30*time.Second, "Sampling interval")
	batch := flag.Int("batch", 1, "Samples to accumulate before posting")
	flag.Parse()

	if *name == "" {
		fmt.Println("Error: --name is required when hostname cannot be determined")
		os.Exit(1)
	}

	fmt.Printf("Reporting %s (%s) to %s every %s\n", *name, *iface, *serverURL, *interval)

	client := &http.Client{Timeout: 10 * time.Second}
	endpoint := strings.TrimRight(*serverURL, "/") + "/api/v1/samples"

	prev, err := readCounters(*iface)
	if err != nil {
		fmt.Printf("Error reading counters: %v\n", err)
		os.Exit(1)
	}
	prevAt := time.Now()

	pending := make([]sample, 0, *batch)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for now := range ticker.C {
		cur, err := readCounters(*iface)
		if err != nil {
			fmt.Printf("Error reading counters: %v\n", err)
			continue
		}

		elapsed := now.Sub(prevAt).Seconds()
		if elapsed <= 0 {
			continue
		}

		// Counter wrap (reboot, interface reset): skip the interval.
		if cur.rxBytes >= prev.rxBytes && cur.txBytes >= prev.txBytes {
			pending = append(pending, sample{
				ServerName: *name,
				Timestamp:  now.UTC().Format(time.RFC3339),
				RxRate:     float64(cur.rxBytes-prev.rxBytes) / 1024 / elapsed,
				TxRate:     float64(cur.txBytes-prev.txBytes) / 1024 / elapsed,
			})
		}
		prev = cur
		prevAt = now

		if len(pending) < *batch {
			continue
		}

		if err := post(client, endpoint, *token, pending); err != nil {
			fmt.Printf("Error posting samples: %v\n", err)
			// Keep the batch and retry next tick, bounded so a long
			// outage does not grow memory without limit.
			if len(pending) > 120 {
				pending = pending[len(pending)-120:]
			}
			continue
		}
		pending = pending[:0]
	}
}

func post(client *http.Client, endpoint, token string, samples []sample) error {
	body, err := json.Marshal(map[string]any{"samples": samples})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

// readCounters parses /proc/net/dev for the cumulative byte counters
// of a single interface.
func readCounters(iface string) (counters, error) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return counters{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		name, rest, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(name) != iface {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) < 16 {
			return counters{}, fmt.Errorf("unexpected /proc/net/dev format for %s", iface)
		}

		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return counters{}, err
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return counters{}, err
		}
		return counters{rxBytes: rx, txBytes: tx}, nil
	}

	if err := scanner.Err(); err != nil {
		return counters{}, err
	}
	return counters{}, fmt.Errorf("interface %s not found in /proc/net/dev", iface)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}
