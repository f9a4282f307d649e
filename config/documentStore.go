package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
)

var docStore store.Store

func GetStore() store.Store {
	return docStore
}

// SetStore swaps the backing store. Tests and local tools use it to
// install a memory store without going through env config.
func SetStore(s store.Store) {
	docStore = s
}

func init() {
	// Load env from .env
	godotenv.Load()
	// IMPORTANT (Cloud Run):
	// Do NOT block startup in init() waiting for the store.
	// Cloud Run requires the container to start listening on $PORT quickly.
}

// ConnectStoreWithRetry connects the document store and sets the global.
// Call this from main() AFTER the HTTP server is listening.
//
// STORE_DRIVER=memory selects the in-process store (local dev, tests);
// anything else connects Firestore using FIRESTORE_PROJECT_ID.
func ConnectStoreWithRetry() {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if driver == "memory" {
		docStore = store.NewMemoryStore()
		log.Println("document store: memory driver")
		return
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	deadline := time.Now().Add(2 * time.Minute)
	for {
		client, err := firestore.NewClient(context.Background(), projectID)
		if err == nil {
			docStore = store.NewFirestoreStore(client)
			log.Printf("document store: firestore project %s", projectID)
			return
		}
		if time.Now().After(deadline) {
			log.Fatalf("firestore connect failed after retries: %v", err)
		}
		log.Printf("firestore connect failed: %v (retrying in 5s)", err)
		time.Sleep(5 * time.Second)
	}
}
