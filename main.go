package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/halissimsek/edit-text/ot"
	"github.com/halissimsek/edit-text/server"
	"github.com/halissimsek/edit-text/store"
	"github.com/halissimsek/edit-text/synclog"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	project := flag.String("project", "", "GCP project ID for Firestore persistence (in-memory if empty)")
	flush := flag.Duration("flush", 5*time.Second, "write-back flush interval for the Firestore cache")
	flag.Parse()

	var st store.DocumentStore
	if *project != "" {
		ctx := context.Background()
		client, err := firestore.NewClient(ctx, *project)
		if err != nil {
			log.Fatalf("firestore: %v", err)
		}
		defer client.Close()

		cached := store.NewCachedStore(store.NewFirestoreStore(client), *flush)
		defer cached.Close()
		st = cached
		log.Printf("Using Firestore persistence (project %s)", *project)
	} else {
		st = store.NewMemoryStore()
		log.Printf("Using in-memory persistence")
	}

	sink, err := synclog.FromEnv()
	if err != nil {
		log.Fatalf("sync log: %v", err)
	}
	engine := &ot.JupiterEngine{}
	hub := server.NewHub(st, engine, sink)
	go hub.Run()

	handler := server.NewHandler(hub, st)

	log.Printf("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal(err)
	}
}
