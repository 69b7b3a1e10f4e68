package main

// autosre-doctor — внешняя диагностика стенда: проверяет liveness бэкенда
// (:8000) и консоли (:3000). Это отдельный процесс-коллаборатор, а не часть
// ядра синхронизации, поэтому здесь ретраи уместны: проба с тремя попытками
// отличает мигнувшую сеть от лежащего сервиса.

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v5"
	"golang.org/x/time/rate"
)

type target struct {
	name string
	url  string
}

func main() {
	backendURL := flag.String("backend", "http://localhost:8000", "backend base URL")
	consoleURL := flag.String("console", "http://localhost:3000", "console base URL")
	timeout := flag.Duration("timeout", 2*time.Second, "per-request timeout")
	watch := flag.Bool("watch", false, "keep probing until interrupted")
	probesPerMinute := flag.Float64("rate", 12, "probe cycles per minute in watch mode")
	flag.Parse()

	targets := []target{
		{"backend", *backendURL + "/health"},
		{"console", *consoleURL + "/health"},
	}

	client := &http.Client{Timeout: *timeout}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !*watch {
		os.Exit(runCycle(ctx, client, targets))
	}

	// Watch-режим: лимитер задает темп, чтобы не душить стенд пробами
	limiter := rate.NewLimiter(rate.Limit(*probesPerMinute/60.0), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return // прервано сигналом
		}
		runCycle(ctx, client, targets)
	}
}

// runCycle пробует все цели и возвращает код выхода (0 — все живы).
func runCycle(ctx context.Context, client *http.Client, targets []target) int {
	code := 0
	for _, t := range targets {
		if err := probe(ctx, client, t.url); err != nil {
			log.Printf("[FAIL] %-8s %s: %v", t.name, t.url, err)
			code = 1
			continue
		}
		log.Printf("[ OK ] %-8s %s", t.name, t.url)
	}
	return code
}

func probe(ctx context.Context, client *http.Client, url string) error {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(3),
	)

	return r.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})
}
