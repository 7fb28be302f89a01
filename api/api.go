// Package api exposes the election trust core over HTTP: election
// management, blind credential issuance, the key ceremony and vote
// submission with ledger proofs.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/protocol"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host     string
	Port     int
	Protocol *protocol.Protocol
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	protocol *protocol.Protocol
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Protocol == nil {
		return nil, fmt.Errorf("missing protocol instance")
	}
	a := &API{
		protocol: conf.Protocol,
	}
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	a.router.Post(ElectionsEndpoint, a.createElection)
	a.router.Get(ElectionsEndpoint, a.listElections)
	a.router.Get(ElectionEndpoint, a.election)
	a.router.Put(ElectionStatusEndpoint, a.setElectionStatus)
	a.router.Get(AuthorityKeyEndpoint, a.authorityKey)
	a.router.Post(CredentialsEndpoint, a.issueCredential)
	a.router.Post(TrusteesEndpoint, a.registerTrustee)
	a.router.Get(TrusteesEndpoint, a.trustees)
	a.router.Post(CommitmentsEndpoint, a.submitCommitment)
	a.router.Get(CeremonyEndpoint, a.ceremonyStatus)
	a.router.Post(VotesEndpoint, a.submitVote)
	a.router.Get(LedgerRootEndpoint, a.ledgerRoot)
	a.router.Get(LedgerProofEndpoint, a.ledgerProof)
	a.router.Post(SnapshotEndpoint, a.snapshot)
	log.Infow("api handlers registered", "count", 14)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
