package response

import "github.com/gofiber/fiber/v3"

type SemanticResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Page wraps a paginated listing.
type Page struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

const (
	MessageOK                  = "ok"
	MessageCreated             = "created"
	MessageBadRequest          = "bad request"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageRequestTooLarge     = "request entity too large"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageServiceUnavailable  = "service unavailable"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, data interface{}) error {
	st := normalizeStatus(status)
	msg := normalizeMessage(message, st)
	return c.Status(st).JSON(SemanticResponse{Status: st, Message: msg, Data: data})
}

func Error(c fiber.Ctx, status int, message string, data interface{}) error {
	st := normalizeStatus(status)
	msg := normalizeMessage(message, st)
	return c.Status(st).JSON(SemanticResponse{Status: st, Message: msg, Data: data})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessageForStatus(status)
}

func DefaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusCreated:
		return MessageCreated
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusRequestEntityTooLarge:
		return MessageRequestTooLarge
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	case fiber.StatusServiceUnavailable:
		return MessageServiceUnavailable
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
