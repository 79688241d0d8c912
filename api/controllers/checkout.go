package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront/api/responses"
	"github.com/storefrontlabs/storefront/api/validators"
	checkoutsvc "github.com/storefrontlabs/storefront/internal/checkout"
	"github.com/storefrontlabs/storefront/pkg/logger"
)

// SelectiveCheckoutRequest names the cart lines to convert. Lines not
// listed stay in the cart.
type SelectiveCheckoutRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" validate:"required,min=1"`
}

// CheckoutPlaceOrder converts the caller's entire cart into an order.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "order placed", order)
	}
}

// CheckoutSelective converts only the named cart lines into an order.
func CheckoutSelective(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SelectiveCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SelectiveCheckout(r.Context(), userID, payload.ProductIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "order placed", order)
	}
}
