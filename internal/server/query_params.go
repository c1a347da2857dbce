package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, newValidationError(key, "invalid_boolean", "must be a boolean")
	}
	return &value, nil
}

func parseDateField(field, raw string) (time.Time, error) {
	value, err := time.Parse(dateOnlyLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, newValidationError(field, "invalid_date", "must be formatted as YYYY-MM-DD")
	}
	return value, nil
}
