// Package vehicle is the vehicle catalogue: the gorm model, its repository and
// the HTTP handlers serving it through the cache coordinator.
package vehicle

import (
	"github.com/KOMKZ/yogan-vehicle-api/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Vehicle is a row of the vehicle table. Brand, model and plate are required.
type Vehicle struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id" msgpack:"id" cbor:"id"`
	Brand string `gorm:"size:100;not null" json:"brand" msgpack:"brand" cbor:"brand"`
	Model string `gorm:"size:100;not null" json:"model" msgpack:"model" cbor:"model"`
	Year  int    `json:"year" msgpack:"year" cbor:"year"`
	Plate string `gorm:"size:20;not null" json:"plate" msgpack:"plate" cbor:"plate"`
	Color string `gorm:"size:50" json:"color" msgpack:"color" cbor:"color"`
}

func (Vehicle) TableName() string {
	return "vehicle"
}

// Validate reports the first missing required field. A nil vehicle is rejected
// with validator.KindNilItem.
func (v *Vehicle) Validate() error {
	if v == nil {
		return validator.NilItem("vehicle")
	}
	return validation.ValidateStruct(v,
		validation.Field(&v.Brand, validation.Required, validator.NotBlank, validation.Length(0, 100)),
		validation.Field(&v.Model, validation.Required, validator.NotBlank, validation.Length(0, 100)),
		validation.Field(&v.Plate, validation.Required, validator.NotBlank, validation.Length(0, 20)),
		validation.Field(&v.Color, validation.Length(0, 50)),
		validation.Field(&v.Year, validation.Min(0)),
	)
}
