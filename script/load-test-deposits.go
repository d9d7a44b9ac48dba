package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// DepositRequest represents the deposit payload
type DepositRequest struct {
	Amount           string `json:"amount"`
	Channel          string `json:"channel"`
	IdempotencyToken string `json:"idempotencyToken"`
}

// DepositResponse represents the API response
type DepositResponse struct {
	TransactionID string `json:"transactionId"`
	UserID        uint64 `json:"userId"`
	Status        string `json:"status"`
	PayURL        string `json:"payUrl,omitempty"`
	Replayed      bool   `json:"replayed"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Success      bool
	Replayed     bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the API")
	users := flag.Int("users", 3, "number of user IDs to spread deposits over")
	total := flag.Int("n", 100, "total number of deposits to create")
	concurrency := flag.Int("c", 10, "number of concurrent workers")
	replayRate := flag.Float64("replay", 0.1, "fraction of requests reusing an earlier idempotency token")
	flag.Parse()

	fmt.Printf("Running %d deposits against %s with %d workers\n", *total, *baseURL, *concurrency)

	client := &http.Client{Timeout: 10 * time.Second}
	jobs := make(chan int)
	results := make(chan TestResult, *total)

	var usedTokens sync.Map

	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				userID := uint64(1 + i%*users)
				token := fmt.Sprintf("load-%d", i)

				// Occasionally replay an earlier token to exercise idempotency
				if rand.Float64() < *replayRate && i > 0 {
					token = fmt.Sprintf("load-%d", rand.Intn(i))
				}
				usedTokens.Store(token, struct{}{})

				amount := fmt.Sprintf("%d.%02d", 1+rand.Intn(100), rand.Intn(100))
				results <- sendDeposit(client, *baseURL, userID, DepositRequest{
					Amount:           amount,
					Channel:          "gateway",
					IdempotencyToken: token,
				})
			}
		}()
	}

	start := time.Now()
	go func() {
		for i := 0; i < *total; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var success, replayed, failed int
	var totalLatency time.Duration
	for res := range results {
		totalLatency += res.ResponseTime
		switch {
		case res.Error != nil || !res.Success:
			failed++
		case res.Replayed:
			replayed++
			success++
		default:
			success++
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("Done in %s\n", elapsed)
	fmt.Printf("  success: %d (replayed: %d)\n", success, replayed)
	fmt.Printf("  failed:  %d\n", failed)
	if *total > 0 {
		fmt.Printf("  avg latency: %s\n", totalLatency/time.Duration(*total))
		fmt.Printf("  throughput:  %.1f req/s\n", float64(*total)/elapsed.Seconds())
	}
}

func sendDeposit(client *http.Client, baseURL string, userID uint64, req DepositRequest) TestResult {
	body, err := json.Marshal(req)
	if err != nil {
		return TestResult{Error: err}
	}

	url := fmt.Sprintf("%s/wallet/%d/deposit", baseURL, userID)
	start := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		return TestResult{Error: err, ResponseTime: latency}
	}
	defer func() { _ = resp.Body.Close() }()

	var deposit DepositResponse
	if err := json.NewDecoder(resp.Body).Decode(&deposit); err != nil {
		return TestResult{Error: err, ResponseTime: latency, StatusCode: resp.StatusCode}
	}

	return TestResult{
		Success:      resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK,
		Replayed:     deposit.Replayed,
		ResponseTime: latency,
		StatusCode:   resp.StatusCode,
	}
}
