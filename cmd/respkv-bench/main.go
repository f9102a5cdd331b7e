package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loganszeto/respkv/internal/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "server address")
	threads := flag.Int("threads", 10, "goroutines")
	ops := flag.Int("ops", 10000, "total operations")
	ratioGet := flag.Float64("ratio_get", 0.8, "get ratio")
	valueSize := flag.Int("value_size", 128, "value size bytes")
	flag.Parse()

	if *threads <= 0 {
		fmt.Fprintln(os.Stderr, "threads must be > 0")
		os.Exit(1)
	}

	value := []byte(strings.Repeat("x", *valueSize))
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key:%d", i)
	}

	var opsDone atomic.Int64
	latCh := make(chan time.Duration, *ops)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *threads; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", *addr)
			if err != nil {
				return
			}
			defer conn.Close()
			reader := resp.NewReader(conn)
			writer := resp.NewWriter(conn)
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
			for {
				idx := int(opsDone.Add(1)) - 1
				if idx >= *ops {
					return
				}
				key := keys[rng.Intn(len(keys))]
				var request resp.Frame
				if rng.Float64() < *ratioGet {
					request = resp.Array(resp.BulkString("GET"), resp.BulkString(key))
				} else {
					request = resp.Array(resp.BulkString("SET"), resp.BulkString(key), resp.Bulk(value))
				}
				startOp := time.Now()
				if err := writer.WriteFrame(request); err != nil {
					return
				}
				if err := writer.Flush(); err != nil {
					return
				}
				if _, err := reader.ReadFrame(); err != nil {
					return
				}
				latCh <- time.Since(startOp)
			}
		}(i)
	}

	wg.Wait()
	close(latCh)

	elapsed := time.Since(start)
	totalOps := opsDone.Load()
	if totalOps > int64(*ops) {
		totalOps = int64(*ops)
	}
	fmt.Printf("Total ops: %d\n", totalOps)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Ops/sec: %.2f\n", float64(totalOps)/elapsed.Seconds())

	var lats []time.Duration
	for d := range latCh {
		lats = append(lats, d)
	}
	printLatencyStats(lats)
}

func printLatencyStats(lats []time.Duration) {
	if len(lats) == 0 {
		fmt.Println("No latency samples")
		return
	}
	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })
	fmt.Printf("p50: %s\n", lats[len(lats)*50/100])
	fmt.Printf("p95: %s\n", lats[len(lats)*95/100])
	fmt.Printf("p99: %s\n", lats[len(lats)*99/100])
}
