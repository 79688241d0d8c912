package products

import (
	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

// Actor is the authenticated identity performing a catalog mutation.
type Actor struct {
	Email   string
	IsAdmin bool
}

// Authorize allows admins and the listing's creator to mutate it.
func Authorize(actor Actor, product *models.Product) error {
	if actor.IsAdmin {
		return nil
	}
	if product != nil && actor.Email != "" && actor.Email == product.CreatedBy {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "only admins or the product creator may modify this listing")
}
