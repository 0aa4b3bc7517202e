package application

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/dto"
)

// record is the plain form of a stored user with every derived field the
// API exposes. Each output DTO keeps only the keys it declares.
func record(u *entity.User) map[string]interface{} {
	full := u.FullName()
	return map[string]interface{}{
		"id":              u.ID,
		"firstName":       u.FirstName,
		"lastName":        u.LastName,
		"fullName":        full,
		"capitalizedName": strings.ToUpper(full),
		"createdAt":       u.CreatedAt,
		"updatedAt":       u.UpdatedAt,
	}
}

func toUserDetails(v *validator.Validate, u *entity.User) (contract.UserDetails, error) {
	return dto.Map[contract.UserDetails](v, record(u))
}

func toUserNameDetails(v *validator.Validate, u *entity.User) (contract.UserNameDetails, error) {
	return dto.Map[contract.UserNameDetails](v, record(u))
}

func mapAll[T any](v *validator.Validate, users []*entity.User, fn func(*validator.Validate, *entity.User) (T, error)) ([]T, error) {
	out := make([]T, 0, len(users))
	for _, u := range users {
		d, err := fn(v, u)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
