package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront/api/responses"
	ordersvc "github.com/storefrontlabs/storefront/internal/orders"
	"github.com/storefrontlabs/storefront/pkg/logger"
)

// OrderHistory returns the caller's orders, newest first, cursor paginated.
func OrderHistory(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.History(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
