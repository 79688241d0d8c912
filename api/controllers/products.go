package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront/api/middleware"
	"github.com/storefrontlabs/storefront/api/responses"
	"github.com/storefrontlabs/storefront/api/validators"
	productsvc "github.com/storefrontlabs/storefront/internal/products"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
	"github.com/storefrontlabs/storefront/pkg/logger"
)

func actorFrom(r *http.Request) productsvc.Actor {
	return productsvc.Actor{
		Email:   middleware.EmailFromContext(r.Context()),
		IsAdmin: middleware.IsAdminFromContext(r.Context()),
	}
}

// ProductCreate adds a product to the catalog. Requires authentication.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productsvc.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), actorFrom(r), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "product created", dto)
	}
}

// ProductList returns one page of active products, newest first. Supports
// limit, cursor, and category_id query parameters. Public.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := productsvc.ListParams{Pagination: page}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid category_id"))
				return
			}
			params.CategoryID = &categoryID
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductGet returns a single product by id. Public.
func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductUpdate applies a partial update. The service allows only the
// creator or an admin.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), actorFrom(r), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "product updated", dto)
	}
}

// ProductDelete removes a product. The service allows only the creator or
// an admin.
func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorFrom(r), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "product deleted", nil)
	}
}
