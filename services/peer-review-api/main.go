package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/apihelpers"
	"github.com/conductor-oer/conductor-backend/pkg/apihelpers/middlewares"
	"github.com/conductor-oer/conductor-backend/services/peer-review-api/apihandlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var conf PeerReviewApiConfig

func main() {
	if smtpClients != nil {
		defer smtpClients.Close()
	}

	// Start webserver
	router := gin.Default()
	router.Use(middlewares.RequestID())
	router.Use(cors.New(cors.Config{
		// AllowAllOrigins: true,
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", middlewares.HeaderRequestID},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition", middlewares.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.JWTConfig.SignKey,
		conf.AllowedOrgIDs,
	)
	v1APIHandlers.AddPeerReviewAPI(v1Root)
	v1APIHandlers.AddManagementAPI(v1Root)

	if conf.GinConfig.DebugMode {
		if err := apihelpers.WriteRoutesToFile(router, "peer-review-api-routes.txt"); err != nil {
			slog.Error("Error writing routes to file", slog.String("error", err.Error()))
		}
	}

	// Start the server
	slog.Info("Starting Peer Review API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Peer Review API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Peer Review API", slog.String("error", err.Error()))
			return
		}
	}
}
