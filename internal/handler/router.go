package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

func NewRouter(app *app.App) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(app.Logger))

	healthHandler := NewHealthHandler(app)
	userHandler := NewUserHandler(app)
	auditoriumHandler := NewAuditoriumHandler(app)
	movieHandler := NewMovieHandler(app)
	scheduleHandler := NewScheduleHandler(app)
	ticketHandler := NewTicketHandler(app)
	superTicketHandler := NewSuperTicketHandler(app)
	transactionHandler := NewTransactionHandler(app)

	r.GET("/health", healthHandler.HandleHealth)
	r.POST("/users", userHandler.HandleRegister)
	r.POST("/users/login", userHandler.HandleLogin)

	authed := r.Group("", Authenticate(app.AuthService))
	admin := authed.Group("", RequireAdmin())

	authed.POST("/users/logout", userHandler.HandleLogout)
	authed.PATCH("/users/:id", userHandler.HandleUpdate)
	admin.GET("/users", userHandler.HandleList)
	admin.GET("/users/:id", userHandler.HandleGet)
	admin.PATCH("/users/:id/role", userHandler.HandleChangeRole)
	admin.DELETE("/users/:id", userHandler.HandleDelete)

	authed.GET("/auditoriums", auditoriumHandler.HandleList)
	authed.GET("/auditoriums/:id", auditoriumHandler.HandleGet)
	authed.GET("/auditoriums/:id/schedules/:startDate", auditoriumHandler.HandleSchedule)
	admin.POST("/auditoriums", auditoriumHandler.HandleCreate)
	admin.PATCH("/auditoriums/:id", auditoriumHandler.HandleUpdate)
	admin.DELETE("/auditoriums/:id", auditoriumHandler.HandleDelete)

	authed.GET("/movies", movieHandler.HandleList)
	authed.GET("/movies/:id", movieHandler.HandleGet)
	authed.GET("/movies/:id/schedules/:startDate/:endDate", movieHandler.HandleSchedulesBetween)
	admin.POST("/movies", movieHandler.HandleCreate)
	admin.PATCH("/movies/:id", movieHandler.HandleUpdate)
	admin.DELETE("/movies/:id", movieHandler.HandleDelete)

	authed.GET("/schedules/:id", scheduleHandler.HandleGet)
	authed.GET("/schedules/:id/:endDate", scheduleHandler.HandleBetween)
	admin.GET("/schedules", scheduleHandler.HandleList)
	admin.POST("/schedules", scheduleHandler.HandleCreate)
	admin.PATCH("/schedules/:id", scheduleHandler.HandleUpdate)
	admin.DELETE("/schedules/:id", scheduleHandler.HandleDelete)

	authed.POST("/tickets", ticketHandler.HandlePurchase)
	authed.GET("/tickets/mine", ticketHandler.HandleMine)
	authed.GET("/tickets/:id/validate", ticketHandler.HandleValidate)
	authed.GET("/tickets/:id/qrcode", ticketHandler.HandleQRCode)
	admin.GET("/tickets", ticketHandler.HandleList)
	admin.GET("/tickets/:id", ticketHandler.HandleGet)
	admin.PATCH("/tickets/:id", ticketHandler.HandleUpdate)
	admin.DELETE("/tickets/:id", ticketHandler.HandleDelete)

	authed.POST("/supertickets", superTicketHandler.HandlePurchase)
	authed.GET("/supertickets/mine", superTicketHandler.HandleMine)
	authed.PATCH("/supertickets/:id/bookSchedule", superTicketHandler.HandleBookSchedule)
	authed.GET("/supertickets/:id/validate", superTicketHandler.HandleValidate)
	admin.GET("/supertickets", superTicketHandler.HandleList)
	admin.GET("/supertickets/:id", superTicketHandler.HandleGet)
	admin.PATCH("/supertickets/:id", superTicketHandler.HandleUpdate)
	admin.DELETE("/supertickets/:id", superTicketHandler.HandleDelete)

	authed.POST("/transactions/deposit", transactionHandler.HandleDeposit)
	authed.POST("/transactions/withdraw", transactionHandler.HandleWithdraw)
	authed.GET("/transactions/balance", transactionHandler.HandleBalance)
	authed.GET("/transactions", transactionHandler.HandleMine)
	admin.GET("/transactions/all", transactionHandler.HandleList)

	return r, nil
}
