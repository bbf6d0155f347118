package main

import (
	"net/http"
	"os"

	"github.com/buildbarn/bb-treehash/pkg/clock"
	"github.com/buildbarn/bb-treehash/pkg/configuration"
	bb_http "github.com/buildbarn/bb-treehash/pkg/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if len(os.Args) != 2 {
		logger.Fatal("Usage: bb_treehash_server bb_treehash_server.jsonnet")
	}
	config, err := configuration.GetServerConfiguration(os.Args[1])
	if err != nil {
		logger.WithError(err).Fatalf("Failed to read configuration from %s", os.Args[1])
	}

	authenticator, err := bb_http.NewAuthenticatorFromConfiguration(config.JWTAuthentication, clock.SystemClock)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create authenticator")
	}

	router := mux.NewRouter()
	bb_http.NewDigestService(
		config.Steps.NewParser(true),
		authenticator,
		config.MaximumSteps,
		uuid.NewRandom,
		logger,
	).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	logger.WithField("listen_address", config.ListenAddress).Info("Serving digest service")
	logger.Fatal(http.ListenAndServe(config.ListenAddress, router))
}
