package services

import "github.com/go-playground/validator/v10"

// validate is shared by the services for field-level checks (email
// formats and the like); domain formats (NIF, CPE, CUI, postal codes)
// have dedicated validators in the utils package.
var validate = validator.New()
