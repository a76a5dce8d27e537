package api

import (
	"errors"
	"net/http"

	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/models"
)

const (
	msgMissingFields  = "Пожалуйста, заполните все поля :)"
	msgInvalidCoords  = "Проверьте корректность координат и повторите попытку"
	msgNoConnection   = "Ошибка подключения: проверьте ваше интернет-соединение."
	msgAPIError       = "Ошибка подключения к API :(. Попробуйте позже."
	msgDataErrorStart = "Ошибка при получении данных о погоде для начальной точки, попробуйте ввести корректные координаты ещё раз"
	msgDataErrorEnd   = "Ошибка при получении данных о погоде для конечной точки, попробуйте ввести корректные координаты ещё раз"
	msgUnexpected     = "Произошла неожиданная ошибка, проверьте подключение к сети и повторите попытку"
)

// userMessage returns the text shown to users for a failed comparison.
func userMessage(err error) string {
	var cerr *compare.Error
	if !errors.As(err, &cerr) {
		return msgUnexpected
	}
	switch cerr.Kind {
	case compare.KindMissingFields:
		return msgMissingFields
	case compare.KindInvalidCoordinates:
		return msgInvalidCoords
	case compare.KindNoConnectivity, compare.KindConnection:
		return msgNoConnection
	case compare.KindAPI:
		return msgAPIError
	case compare.KindData:
		if cerr.Point == models.PointEnd {
			return msgDataErrorEnd
		}
		return msgDataErrorStart
	default:
		return msgUnexpected
	}
}

// statusFor maps a failure kind to the HTTP status used by the JSON API.
func statusFor(kind compare.Kind) int {
	switch kind {
	case compare.KindMissingFields, compare.KindInvalidCoordinates:
		return http.StatusBadRequest
	case compare.KindNoConnectivity:
		return http.StatusServiceUnavailable
	case compare.KindConnection, compare.KindAPI:
		return http.StatusBadGateway
	case compare.KindData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
