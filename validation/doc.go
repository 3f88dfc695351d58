// Package validation checks configuration and request input and reports
// failures as INVALID_INPUT errors from the errors package.
//
// Struct tag validation uses go-playground/validator and names fields by
// their mapstructure key, so messages point at the config path:
//
//	type Options struct {
//	    AppName string `mapstructure:"app_name" validate:"required"`
//	}
//	err := validation.Validate(cfg) // "eureka.app_name: is required"
//
// Programmatic validation collects errors for rules tags cannot express:
//
//	v := validation.New()
//	v.Required("app", app).MaxLength("app", app, 255)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
