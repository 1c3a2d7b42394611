package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/validate"
)

// AddressInput is a new address. Phone must be a mainland mobile number.
type AddressInput struct {
	Receiver string `form:"receiver" validate:"required,max=20"`
	Addr     string `form:"addr" validate:"required,max=256"`
	ZipCode  string `form:"zip_code" validate:"nullable,integer,min=6,max=6"`
	Phone    string `form:"phone" validate:"required,regex=^1[3-9][0-9]{9}$"`
}

type AddressService struct {
	addresses *repositories.AddressRepository
}

func NewAddressService(addresses *repositories.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) Page(ctx context.Context, p *auth.Principal) (views.AddressPage, error) {
	if p == nil {
		return views.AddressPage{}, ErrNotAuthenticated
	}
	list, err := s.addresses.ListByUser(ctx, p.UserID)
	if err != nil {
		return views.AddressPage{}, unavailable(err)
	}

	page := views.AddressPage{Addresses: views.NewAddresses(list)}
	for i := range page.Addresses {
		if page.Addresses[i].IsDefault {
			page.Address = &page.Addresses[i]
			break
		}
	}
	return page, nil
}

// Create stores the address; the user's first address becomes the default.
func (s *AddressService) Create(ctx context.Context, p *auth.Principal, in AddressInput) (views.Address, error) {
	if p == nil {
		return views.Address{}, ErrNotAuthenticated
	}
	in.Receiver = strings.TrimSpace(in.Receiver)
	in.Addr = strings.TrimSpace(in.Addr)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Phone = strings.TrimSpace(in.Phone)

	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return views.Address{}, invalid("Invalid address", errs)
	}

	a := &models.Address{
		UserID:   p.UserID,
		Receiver: in.Receiver,
		Addr:     in.Addr,
		ZipCode:  in.ZipCode,
		Phone:    in.Phone,
	}
	if err := s.addresses.Create(ctx, a); err != nil {
		return views.Address{}, unavailable(err)
	}
	return views.NewAddress(*a), nil
}
