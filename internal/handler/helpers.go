package handler

import (
	"errors"
	"net/http"
	"reflect"

	"yardpos/internal/apierror"
	"yardpos/internal/dto"
	"yardpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps service-layer errors onto HTTP responses. The two
// recoverable settlement conditions get distinguished payloads so the UI can
// drive add-funds / adjust-quantity flows from them.
func respondServiceError(c *gin.Context, err error) {
	var fundsErr *service.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		c.JSON(http.StatusConflict, dto.InsufficientFundsResponse{
			Detail:   "insufficient funds in cash register",
			Required: fundsErr.Required,
			Current:  fundsErr.Current,
			Missing:  fundsErr.Missing,
		})
		return
	}
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, dto.InsufficientStockResponse{
			Detail:   "insufficient stock",
			Material: stockErr.Material,
			Have:     stockErr.Have,
			Need:     stockErr.Need,
		})
		return
	}

	var storeErr *service.StoreUnavailableError
	var settleErr *service.SettlementFailedError
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrRegisterNotFound),
		errors.Is(err, service.ErrMaterialNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRegisterAlreadyOpen),
		errors.Is(err, service.ErrRegisterNotOpen),
		errors.Is(err, service.ErrOrderNotOpen):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.As(err, &storeErr):
		c.JSON(http.StatusServiceUnavailable, apierror.New("storage temporarily unavailable"))
	case errors.As(err, &settleErr):
		c.JSON(http.StatusInternalServerError, apierror.New("settlement failed, order remains open"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
