package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно. Типизированные ошибки
// приложения превращаются в статус и код для клиента, всё остальное
// маскируется как внутренняя ошибка.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		statusCode, code, message := classify(err)

		if logger.Log != nil {
			entry := logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"status": statusCode,
			})
			if statusCode >= http.StatusInternalServerError {
				entry.Error("ошибка обработки запроса")
			} else {
				entry.Warn("запрос отклонён")
			}
		}

		c.JSON(statusCode, gin.H{"error": message, "code": code})
	}
}

func classify(err error) (int, string, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, string(appErr.Code), appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "пользователь не найден"
	case errors.Is(err, repository.ErrBountyNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "баунти не найдено"
	case errors.Is(err, repository.ErrRequestNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "заявка не найдена"
	case errors.Is(err, repository.ErrConversationNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "диалог не найден"
	}

	return http.StatusInternalServerError, string(apperror.ErrCodeInternal), "внутренняя ошибка сервера"
}
