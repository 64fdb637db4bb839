package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saif727/wallet-service-client/models"
	"github.com/saif727/wallet-service-client/services"
)

// WalletService is the part of services.WalletClient the gateway uses
type WalletService interface {
	CreateWallet(ctx context.Context, opts services.CreateWalletOptions) models.Response
	Send(ctx context.Context, to string, amount int64, opts services.SendOptions) models.Response
	SendMany(ctx context.Context, recipients models.Recipients, opts services.SendOptions) models.Response
	WalletBalance(ctx context.Context) models.Response
	ListAddresses(ctx context.Context) models.Response
	AddressBalance(ctx context.Context, address string) models.Response
	NewAddress(ctx context.Context, label string) models.Response
	Ping(ctx context.Context) error
}

var _ WalletService = (*services.WalletClient)(nil)

// WalletController handles wallet-related HTTP requests
type WalletController struct {
	Service WalletService
	Metrics *Metrics
}

// NewWalletController creates a new WalletController instance
func NewWalletController(service WalletService, metrics *Metrics) *WalletController {
	return &WalletController{Service: service, Metrics: metrics}
}

// CreateWallet handles POST /api/v1/wallets
func (ctrl *WalletController) CreateWallet(c *gin.Context) {
	var req models.CreateWalletRequest
	if !bind(c, &req) {
		return
	}

	response := ctrl.Service.CreateWallet(c.Request.Context(), services.CreateWalletOptions{
		Password:   req.Password,
		PrivateKey: req.PrivateKey,
		Email:      req.Email,
		Label:      req.Label,
	})
	ctrl.respond(c, "create_wallet", response)
}

// Send handles POST /api/v1/payments
func (ctrl *WalletController) Send(c *gin.Context) {
	var req models.SendRequest
	if !bind(c, &req) {
		return
	}

	response := ctrl.Service.Send(c.Request.Context(), req.To, *req.Amount, services.SendOptions{
		From: req.From,
		Fee:  req.Fee,
	})
	ctrl.respond(c, "send", response)
}

// SendMany handles POST /api/v1/payments/batch
func (ctrl *WalletController) SendMany(c *gin.Context) {
	var req models.SendManyRequest
	if !bind(c, &req) {
		return
	}

	response := ctrl.Service.SendMany(c.Request.Context(), req.Recipients, services.SendOptions{
		From: req.From,
		Fee:  req.Fee,
	})
	ctrl.respond(c, "send_many", response)
}

// WalletBalance handles GET /api/v1/balance
func (ctrl *WalletController) WalletBalance(c *gin.Context) {
	ctrl.respond(c, "wallet_balance", ctrl.Service.WalletBalance(c.Request.Context()))
}

// ListAddresses handles GET /api/v1/addresses
func (ctrl *WalletController) ListAddresses(c *gin.Context) {
	ctrl.respond(c, "list_addresses", ctrl.Service.ListAddresses(c.Request.Context()))
}

// AddressBalance handles GET /api/v1/addresses/:address/balance
func (ctrl *WalletController) AddressBalance(c *gin.Context) {
	address := c.Param("address")
	ctrl.respond(c, "address_balance", ctrl.Service.AddressBalance(c.Request.Context(), address))
}

// NewAddress handles POST /api/v1/addresses
func (ctrl *WalletController) NewAddress(c *gin.Context) {
	var req models.NewAddressRequest
	// the body is optional
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	ctrl.respond(c, "new_address", ctrl.Service.NewAddress(c.Request.Context(), req.Label))
}

// Health handles GET /healthz
func (ctrl *WalletController) Health(c *gin.Context) {
	if err := ctrl.Service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respond writes the wallet service's value through untouched. Error
// objects from the service are not interpreted.
func (ctrl *WalletController) respond(c *gin.Context, operation string, response models.Response) {
	switch {
	case response.IsValidationError():
		ctrl.Metrics.observe(operation, outcomeInvalid)
		c.JSON(http.StatusBadRequest, response.Value)
	case response.IsNoResult():
		ctrl.Metrics.observe(operation, outcomeUnavailable)
		logger(c).WithField("operation", operation).WithField("err", response.Err).Warn("No result from wallet service")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "wallet service unavailable"})
	default:
		ctrl.Metrics.observe(operation, outcomeOK)
		c.JSON(http.StatusOK, response.Value)
	}
}

func bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
