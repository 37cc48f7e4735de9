package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"tgnotify/internal/shared/errors"
)

// ParseLimit reads a positive integer query parameter. A missing value yields
// defaultVal and values above maxVal are capped.
func ParseLimit(c *gin.Context, key string, defaultVal, maxVal int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(fmt.Sprintf("%s must be a positive integer", key))
	}
	if n > maxVal {
		n = maxVal
	}
	return n, nil
}
