package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanjalab/pesaflow/pkg/config"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/middleware"
	paymentsvc "github.com/wanjalab/pesaflow/pkg/service/payment"
	"github.com/wanjalab/pesaflow/webapi/common"
)

// Routes registers the payment endpoints. The callback route is
// unauthenticated: the processor posts to it directly.
func Routes(app *fiber.App, svc *paymentsvc.Service, cfg *config.App) {
	app.Post("/api/v1/payments/stkpush", middleware.JwtProtected(cfg.Jwt), InitiateSTKPush(svc))
	app.Get("/api/v1/payments/:id", middleware.JwtProtected(cfg.Jwt), GetTransaction(svc))
	app.Post("/api/v1/payments/mpesa/callback", MpesaCallback(svc))
}

// InitiateSTKPush starts a push-payment prompt on the payer's phone.
// @Summary Initiate an STK push
// @Description Prompt the payer's phone for a payment; the outcome arrives asynchronously
// @Tags payments
// @Accept json
// @Produce json
// @Param request body STKPushRequest true "Push parameters"
// @Success 202 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/v1/payments/stkpush [post]
// @Security Bearer
func InitiateSTKPush(svc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[STKPushRequest](c)
		if input == nil {
			return err // error response already written
		}
		userID, err := middleware.UserIDFromContext(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid token", err, fiber.StatusUnauthorized)
		}
		amount, err := decimal.NewFromString(input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		result, err := svc.Initiate(c.Context(), paymentsvc.InitiateInput{
			UserID:      userID,
			PhoneNumber: input.PhoneNumber,
			Amount:      amount,
			Direction:   domainpayment.Direction(input.Direction),
			Reference:   input.Reference,
			Description: input.Description,
		})
		if err != nil {
			log.Errorf("Failed to initiate push: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't initiate push", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Push initiated", STKPushResponse{
			TransactionID:     result.TransactionID.String(),
			MerchantRequestID: result.MerchantRequestID,
			CheckoutRequestID: result.CheckoutRequestID,
			CustomerMessage:   result.CustomerMessage,
		})
	}
}

// GetTransaction returns a transaction for status polling.
// @Summary Get a transaction
// @Description Retrieve a transaction by ID to poll its status
// @Tags payments
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/v1/payments/{id} [get]
// @Security Bearer
func GetTransaction(svc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err, "Transaction ID must be a valid UUID", fiber.StatusBadRequest)
		}
		read, err := svc.GetTransaction(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction found", toResponse(read))
	}
}
