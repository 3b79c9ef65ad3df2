package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/handlers"
	authmw "github.com/cipherWizard31/pulse-care/internal/middleware/auth"
	"github.com/cipherWizard31/pulse-care/internal/tokens"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           []byte
	HospitalHandler     *handlers.HospitalHandler
	SuperAdminHandler   *handlers.SuperAdminHandler
	VerificationHandler *handlers.VerificationHandler
	PatientHandler      *handlers.PatientHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/hospitals", d.HospitalHandler.Register)
	api.POST("/hospitals/login", d.HospitalHandler.Login)
	api.POST("/super-admins", d.SuperAdminHandler.Register)
	api.POST("/super-admins/login", d.SuperAdminHandler.Login)

	requireAuth := authmw.RequireAuth(d.JWTSecret)

	hospital := api.Group("/hospitals/profile", requireAuth, authmw.RequireRole(tokens.RoleHospital))
	hospital.GET("", d.HospitalHandler.GetProfile)
	hospital.PUT("", d.HospitalHandler.UpdateProfile)
	hospital.DELETE("", d.HospitalHandler.DeleteProfile)

	admin := api.Group("", requireAuth, authmw.RequireRole(tokens.RoleSuperAdmin))
	admin.GET("/super-admins/profile", d.SuperAdminHandler.GetProfile)
	admin.PUT("/super-admins/profile", d.SuperAdminHandler.UpdateProfile)
	admin.GET("/hospitals/unverified", d.VerificationHandler.ListUnverified)
	admin.GET("/hospitals/approved", d.VerificationHandler.ListApproved)
	admin.POST("/hospitals/approve", d.VerificationHandler.Approve)

	patients := api.Group("/patients", requireAuth)
	patients.GET("", d.PatientHandler.ListPatients)
	patients.GET("/search", d.PatientHandler.SearchPatients)
	patients.GET("/:id", d.PatientHandler.GetPatient)
	patients.POST("", d.PatientHandler.CreatePatient)
	patients.DELETE("/:id", d.PatientHandler.DeletePatient)
	patients.POST("/:id/records", d.PatientHandler.CreateRecord)
	patients.PUT("/:id/records/:recordId", d.PatientHandler.UpdateRecord)
	patients.DELETE("/:id/records/:recordId", d.PatientHandler.DeleteRecord)
}
