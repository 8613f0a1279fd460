package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	paymentsvc "github.com/wanjalab/pesaflow/pkg/service/payment"
)

// callbackAck is the acknowledgement Daraja expects. Anything else makes the
// processor retry the delivery.
type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// MpesaCallback receives the asynchronous STK push result. It always
// acknowledges with 200: reconciliation problems are ours to log and retry
// internally, never the processor's to redeliver.
// @Summary M-Pesa STK callback
// @Description Receive the asynchronous push result from Daraja
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} callbackAck
// @Router /api/v1/payments/mpesa/callback [post]
func MpesaCallback(svc *paymentsvc.Service) fiber.Handler {
	ack := callbackAck{ResultCode: 0, ResultDesc: "Success"}
	return func(c *fiber.Ctx) error {
		var envelope domainpayment.CallbackEnvelope
		if err := c.BodyParser(&envelope); err != nil {
			log.Errorf("Unparseable mpesa callback: %v", err)
			return c.Status(fiber.StatusOK).JSON(ack)
		}
		if err := svc.HandleCallback(c.Context(), envelope.Body.STKCallback); err != nil {
			log.Errorf("Failed to reconcile mpesa callback: %v", err)
		}
		return c.Status(fiber.StatusOK).JSON(ack)
	}
}
