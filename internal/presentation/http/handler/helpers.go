package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/response"
	"github.com/sangkips/pscafe-console/pkg/apperror"
)

func checkoutVariant(c *gin.Context) (enum.CheckoutVariant, bool) {
	variant, ok := enum.ParseCheckoutVariant(c.Param("variant"))
	if !ok {
		response.NotFound(c, "Unknown checkout "+c.Param("variant"))
		return 0, false
	}
	return variant, true
}

func reportKind(c *gin.Context) (enum.ReportKind, bool) {
	kind, ok := enum.ParseReportKind(c.Param("kind"))
	if !ok {
		response.NotFound(c, "Unknown report "+c.Param("kind"))
		return 0, false
	}
	return kind, true
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 or a plain date in local time. A plain end date
// covers the whole day.
func parseDate(field, value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: field, Message: "use YYYY-MM-DD or RFC 3339"},
		})
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
