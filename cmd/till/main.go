package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/cart"
	"github.com/selular-pos/till/internal/cashsession"
	"github.com/selular-pos/till/internal/checkout"
	"github.com/selular-pos/till/internal/config"
	"github.com/selular-pos/till/internal/purchasing"
	"github.com/selular-pos/till/internal/router"
	"github.com/selular-pos/till/internal/ws"
)

func main() {
	cfg := config.Load()

	registerID, err := uuid.Parse(cfg.RegisterID)
	if err != nil {
		log.Fatalf("invalid REGISTER_ID: %v", err)
	}

	api := backoffice.NewClient(cfg.BackofficeURL, cfg.BackofficeToken)

	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewRefreshNotifier(hub, registerID)

	basket := cart.New()
	gate := cashsession.NewGate(api)

	// Initial gate state comes from the back office, not inference. A failed
	// fetch leaves the gate closed; the UI retries via the session endpoints.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := gate.Refresh(ctx); err != nil {
		log.Printf("ERROR: initial cash session fetch: %v", err)
	}
	cancel()

	closer := cashsession.NewAutoCloser(gate, api, notifier)
	go closer.Run(context.Background())

	orchestrator := checkout.NewOrchestrator(basket, gate, api, notifier)
	workflow := purchasing.NewWorkflow(api)

	r := router.New(cfg, api, basket, gate, orchestrator, workflow, hub, notifier)

	log.Printf("Starting till agent on :%s (register %s)", cfg.Port, registerID)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
