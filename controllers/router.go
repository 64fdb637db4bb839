package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stellar/go/support/log"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	loggerKey = "logger"
)

// NewRouter wires every gateway route onto a gin engine
func NewRouter(ctrl *WalletController, base *log.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(base))

	router.GET("/healthz", ctrl.Health)
	if ctrl.Metrics != nil {
		router.GET("/metrics", gin.WrapH(ctrl.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/wallets", ctrl.CreateWallet)
	v1.POST("/payments", ctrl.Send)
	v1.POST("/payments/batch", ctrl.SendMany)
	v1.GET("/balance", ctrl.WalletBalance)
	v1.GET("/addresses", ctrl.ListAddresses)
	v1.POST("/addresses", ctrl.NewAddress)
	v1.GET("/addresses/:address/balance", ctrl.AddressBalance)

	return router
}

// requestLogger tags each request with an id and logs it once served
func requestLogger(base *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)

		entry := base.WithField("request_id", id)
		c.Set(loggerKey, entry)

		start := time.Now()
		c.Next()

		entry.WithFields(log.F{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("Request served")
	}
}

func logger(c *gin.Context) *log.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*log.Entry); ok {
			return entry
		}
	}
	return log.DefaultLogger
}
