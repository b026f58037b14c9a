// file: internals/route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/route/details"
)

// SetupRoutes mendaftarkan seluruh route aplikasi.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	BaseRoutes(app, db)
	details.SchoolRoutes(app, db)
}
