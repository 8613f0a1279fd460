package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/domain"
	domainsession "github.com/wanjalab/pesaflow/pkg/domain/session"
	"github.com/wanjalab/pesaflow/pkg/middleware"
	sessionsvc "github.com/wanjalab/pesaflow/pkg/service/session"
	"github.com/wanjalab/pesaflow/webapi/common"
)

// Routes registers the QR session endpoints.
func Routes(app *fiber.App, svc *sessionsvc.Service, cfg *config.App) {
	app.Post("/api/v1/qr/sessions", middleware.JwtProtected(cfg.Jwt), CreateSession(svc))
	app.Get("/api/v1/qr/sessions/:id", GetSession(svc))
	app.Post("/api/v1/qr/sessions/:id/consume", middleware.JwtProtected(cfg.Jwt), ConsumeSession(svc))
}

// CreateSession creates a new short-lived QR session.
// @Summary Create a QR session
// @Description Create a short-lived QR session that a counterparty can scan
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session parameters"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /api/v1/qr/sessions [post]
// @Security Bearer
func CreateSession(svc *sessionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateSessionRequest](c)
		if input == nil {
			return err // error response already written
		}
		kind, err := domainsession.ParseKind(input.Kind)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid session kind", err)
		}
		var amount *decimal.Decimal
		if input.Amount != "" {
			d, err := decimal.NewFromString(input.Amount)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
			}
			amount = &d
		}
		sess, err := svc.Create(c.Context(), sessionsvc.CreateInput{
			OwnerPhone: input.OwnerPhone,
			Amount:     amount,
			Kind:       kind,
		})
		if err != nil {
			log.Errorf("Failed to create session: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't create session", err)
		}
		resp := &SessionResponse{
			ID:         sess.ID,
			OwnerPhone: sess.OwnerPhone,
			Kind:       string(sess.Kind),
			CreatedAt:  sess.CreatedAt,
			ExpiresAt:  sess.ExpiresAt,
		}
		if sess.Amount != nil {
			resp.Amount = sess.Amount.String()
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Session created", resp)
	}
}

// GetSession reports a session's validity without consuming it.
// @Summary Check a QR session
// @Description Report whether a session is still valid, without consuming it
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} common.Response
// @Router /api/v1/qr/sessions/{id} [get]
func GetSession(svc *sessionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		read, err := svc.ValidateReadOnly(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return common.ProblemDetailsJSON(c, "Session not found", err)
			}
			// Expired or already-used sessions are reported, not errored:
			// the scanner only needs a yes/no answer here.
			if errors.Is(err, domain.ErrSessionExpired) ||
				errors.Is(err, domain.ErrSessionAlreadyUsed) {
				return common.SuccessResponseJSON(c, fiber.StatusOK, "Session no longer valid",
					SessionStatusResponse{Valid: false})
			}
			log.Errorf("Failed to check session: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't check session", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session valid",
			SessionStatusResponse{Valid: true, Session: toResponse(read)})
	}
}

// ConsumeSession consumes a session so it cannot be used again.
// @Summary Consume a QR session
// @Description Atomically mark a session used; exactly one caller succeeds
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 410 {object} common.ProblemDetails
// @Router /api/v1/qr/sessions/{id}/consume [post]
// @Security Bearer
func ConsumeSession(svc *sessionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		read, err := svc.ValidateAndConsume(c.Context(), c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't consume session", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session consumed", toResponse(read))
	}
}
